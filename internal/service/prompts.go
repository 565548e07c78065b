package service

import (
	"fmt"

	"glowscan/internal/domain"
)

const (
	analysisMaxTokens = 1000
	routineMaxTokens  = 1500
)

const analysisPrompt = `Analyze this face for a beauty rating app. Provide the following in JSON format only: ` +
	`1) An overall score from 1-10 (as a number), 2) Facial symmetry score 1-10 (as a number), ` +
	`3) Skin health score 1-10 (as a number), 4) Style score 1-10 (as a number), ` +
	`5) A brief assessment (max 2 sentences). ` +
	`The format should be: {"overall": 7.5, "facialSymmetry": 8, "skinHealth": 7, "style": 6, "assessment": "Your assessment here"}. ` +
	`Only return valid JSON, no other text.`

const routinePersona = "You are a beauty and skincare expert. Create personalized routines based on facial analysis scores."

func routinePrompt(r *domain.AnalysisResult) string {
	return fmt.Sprintf(`Based on these scores: Overall: %s, Facial Symmetry: %s, Skin Health: %s, Style: %s, `+
		`and this assessment: "%s", create a personalized routine with specific product recommendations and daily practices. `+
		`Format as JSON with these sections: skincare (an object with "morning" and "evening" arrays of steps), `+
		`haircare (weekly routine, an array), makeup (if applicable, an array), and style (clothing recommendations, an array). `+
		`Each section should have 3-5 specific, actionable recommendations. Only return valid JSON, no other text.`,
		promptScore(r.Overall), promptScore(r.FacialSymmetry), promptScore(r.SkinHealth), promptScore(r.Style),
		r.Assessment)
}

// promptScore writes a score the way it was received; unknown values say so
// instead of leaking NaN into the prompt.
func promptScore(s domain.Score) string {
	if !s.Finite() {
		return "unknown"
	}
	return fmt.Sprint(float64(s))
}
