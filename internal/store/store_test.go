package store

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glowscan/internal/domain"
)

func TestRoutineRoundTrip(t *testing.T) {
	s := OpenMemory(t)
	ctx := context.Background()

	routine := &domain.Routine{
		Skincare: &domain.SkincareRoutine{
			Morning: domain.StepList{"Gentle cleanser", "Vitamin C serum", "SPF 30"},
			Evening: domain.StepList{"Double cleanse", "Niacinamide"},
		},
		Haircare: domain.StepList{"Hair mask on Sundays"},
		Makeup:   domain.StepList{"Light concealer"},
		Style:    domain.StepList{"Navy and olive tones"},
	}
	require.NoError(t, s.SaveRoutine(ctx, routine))

	got, err := s.Routine(ctx)
	require.NoError(t, err)
	assert.Equal(t, routine, got)
}

func TestLastResults_SingleSlot(t *testing.T) {
	s := OpenMemory(t)
	ctx := context.Background()

	first := &domain.AnalysisResult{Overall: 6, FacialSymmetry: 7, SkinHealth: 5, Style: 6, Assessment: "first"}
	second := &domain.AnalysisResult{Overall: 8, FacialSymmetry: 8, SkinHealth: 7.5, Style: 9, Assessment: "second"}
	require.NoError(t, s.SaveLastResults(ctx, first))
	require.NoError(t, s.SaveLastResults(ctx, second))

	got, err := s.LastResults(ctx)
	require.NoError(t, err)
	assert.Equal(t, second, got)

	var rows int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM kv WHERE key = ?`, KeyLastResults).Scan(&rows))
	assert.Equal(t, 1, rows)
}

func TestLastResults_NonFiniteScorePersistsAsNull(t *testing.T) {
	s := OpenMemory(t)
	ctx := context.Background()

	result := &domain.AnalysisResult{Overall: domain.Score(math.NaN()), FacialSymmetry: 8, SkinHealth: 7, Style: 6}
	require.NoError(t, s.SaveLastResults(ctx, result))

	raw, err := s.Get(ctx, KeyLastResults)
	require.NoError(t, err)
	assert.JSONEq(t, `{"overall":null,"facialSymmetry":8,"skinHealth":7,"style":6,"assessment":""}`, raw)

	got, err := s.LastResults(ctx)
	require.NoError(t, err)
	assert.False(t, got.Overall.Finite())
}

func TestMissingKeys(t *testing.T) {
	s := OpenMemory(t)
	ctx := context.Background()

	_, err := s.Routine(ctx)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.LastResults(ctx)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Profile(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	done, err := s.OnboardingComplete(ctx)
	require.NoError(t, err)
	assert.False(t, done)
}

func TestOnboardingFlag(t *testing.T) {
	s := OpenMemory(t)
	ctx := context.Background()

	require.NoError(t, s.CompleteOnboarding(ctx))
	raw, err := s.Get(ctx, KeyOnboarding)
	require.NoError(t, err)
	assert.Equal(t, "true", raw)

	done, err := s.OnboardingComplete(ctx)
	require.NoError(t, err)
	assert.True(t, done)

	require.NoError(t, s.Delete(ctx, KeyOnboarding))
	done, err = s.OnboardingComplete(ctx)
	require.NoError(t, err)
	assert.False(t, done)
}

func TestProfileRoundTrip(t *testing.T) {
	s := OpenMemory(t)
	ctx := context.Background()

	profile := &domain.UserProfile{
		Name:         "Sam",
		SkinType:     "Combination",
		SkinConcerns: []string{"Acne", "Redness"},
		HairType:     "Curly",
		DateCreated:  time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.SaveProfile(ctx, profile))

	got, err := s.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, profile, got)
}

func TestOpenDB_ReopenKeepsDataAndVersion(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "glowscan.db")

	db, err := OpenDB(ctx, path)
	require.NoError(t, err)
	require.NoError(t, New(db, nil).CompleteOnboarding(ctx))
	require.NoError(t, db.Close())

	db, err = OpenDB(ctx, path)
	require.NoError(t, err)
	defer db.Close()

	version, err := SchemaVersion(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, len(migrations), version)

	done, err := New(db, nil).OnboardingComplete(ctx)
	require.NoError(t, err)
	assert.True(t, done)
}
