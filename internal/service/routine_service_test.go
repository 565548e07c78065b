package service

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"glowscan/internal/ai"
	"glowscan/internal/config"
	"glowscan/internal/domain"
	"glowscan/internal/store"
)

const routineReply = "```json\n" + `{
  "skincare": {"morning": ["Cleanser", "SPF 50"], "evening": ["Retinol 0.3%"]},
  "haircare": ["Weekly hair mask"],
  "style": ["Structured jackets"]
}` + "\n```"

func sampleResult() *domain.AnalysisResult {
	return &domain.AnalysisResult{Overall: 7, FacialSymmetry: 8, SkinHealth: 7.5, Style: 6, Assessment: "Good."}
}

func TestGenerate_PromptAndPersist(t *testing.T) {
	st := store.OpenMemory(t)
	completer := &fakeCompleter{reply: routineReply}
	svc := NewRoutineService(completer, withKey(), st, "gpt-4o", zap.NewNop())

	routine, err := svc.Generate(context.Background(), sampleResult())
	require.NoError(t, err)
	assert.Equal(t, domain.StepList{"Cleanser", "SPF 50"}, routine.Skincare.Morning)
	assert.Nil(t, routine.Makeup, "absent section is not an error")

	require.Len(t, completer.requests, 1)
	req := completer.requests[0]
	assert.Equal(t, routineMaxTokens, req.MaxTokens)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, ai.RoleSystem, req.Messages[0].Role)
	assert.Equal(t, routinePersona, req.Messages[0].Text)
	assert.Equal(t, ai.RoleUser, req.Messages[1].Role)
	assert.Empty(t, req.Messages[1].ImageURL)
	assert.Contains(t, req.Messages[1].Text, "Overall: 7, Facial Symmetry: 8, Skin Health: 7.5, Style: 6")
	assert.Contains(t, req.Messages[1].Text, `this assessment: "Good."`)

	stored, err := st.Routine(context.Background())
	require.NoError(t, err)
	assert.Equal(t, routine, stored)
}

func TestGenerate_UnknownScoreInPrompt(t *testing.T) {
	completer := &fakeCompleter{reply: routineReply}
	svc := NewRoutineService(completer, withKey(), store.OpenMemory(t), "gpt-4o", zap.NewNop())

	result := sampleResult()
	result.Style = domain.Score(math.NaN())
	_, err := svc.Generate(context.Background(), result)
	require.NoError(t, err)
	assert.Contains(t, completer.requests[0].Messages[1].Text, "Style: unknown")
}

func TestGenerate_InvalidJSONKeepsPreviousRoutine(t *testing.T) {
	st := store.OpenMemory(t)
	ctx := context.Background()
	previous := &domain.Routine{Makeup: domain.StepList{"Lip balm"}}
	require.NoError(t, st.SaveRoutine(ctx, previous))

	svc := NewRoutineService(&fakeCompleter{reply: "Drink water!"}, withKey(), st, "gpt-4o", zap.NewNop())
	_, err := svc.Generate(ctx, sampleResult())
	require.ErrorIs(t, err, domain.ErrInvalidResponseFormat)

	stored, err := st.Routine(ctx)
	require.NoError(t, err)
	assert.Equal(t, previous, stored)
}

func TestGenerate_MissingCredential(t *testing.T) {
	completer := &fakeCompleter{reply: routineReply}
	svc := NewRoutineService(completer, config.NewResolver(zap.NewNop()), store.OpenMemory(t), "gpt-4o", zap.NewNop())

	_, err := svc.Generate(context.Background(), sampleResult())
	assert.ErrorIs(t, err, domain.ErrMissingCredential)
	assert.Empty(t, completer.requests)
}

func TestGenerateFromLast(t *testing.T) {
	st := store.OpenMemory(t)
	ctx := context.Background()
	completer := &fakeCompleter{reply: routineReply}
	svc := NewRoutineService(completer, withKey(), st, "gpt-4o", zap.NewNop())

	_, err := svc.GenerateFromLast(ctx)
	require.ErrorIs(t, err, domain.ErrNoInputProvided)
	assert.Empty(t, completer.requests)

	require.NoError(t, st.SaveLastResults(ctx, sampleResult()))
	routine, err := svc.GenerateFromLast(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StepList{"Weekly hair mask"}, routine.Haircare)
}
