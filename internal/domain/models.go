package domain

import (
	"encoding/base64"
	"time"
)

// ImagePayload is a captured photo on its way to an image host.
type ImagePayload struct {
	Data        []byte `json:"-"`
	Base64      string `json:"-"`
	ContentType string `json:"content_type"`
	Filename    string `json:"filename"`
}

// NewImagePayload encodes data once so every host attempt reuses it.
func NewImagePayload(data []byte, filename, contentType string) *ImagePayload {
	return &ImagePayload{
		Data:        data,
		Base64:      base64.StdEncoding.EncodeToString(data),
		ContentType: contentType,
		Filename:    filename,
	}
}

// DataURI is the inline form the secondary host accepts.
func (p *ImagePayload) DataURI() string {
	return "data:image/jpeg;base64," + p.Base64
}

type AnalysisResult struct {
	Overall        Score  `json:"overall"`
	FacialSymmetry Score  `json:"facialSymmetry"`
	SkinHealth     Score  `json:"skinHealth"`
	Style          Score  `json:"style"`
	Assessment     string `json:"assessment"`
}

// Scores returns the four ratings in display order.
func (r *AnalysisResult) Scores() []LabeledScore {
	return []LabeledScore{
		{Label: "Overall", Score: r.Overall},
		{Label: "Facial Symmetry", Score: r.FacialSymmetry},
		{Label: "Skin Health", Score: r.SkinHealth},
		{Label: "Style", Score: r.Style},
	}
}

type LabeledScore struct {
	Label string
	Score Score
}

type SkincareRoutine struct {
	Morning StepList `json:"morning,omitempty"`
	Evening StepList `json:"evening,omitempty"`
}

// Routine sections are all optional; an absent section means nothing to show.
type Routine struct {
	Skincare *SkincareRoutine `json:"skincare,omitempty"`
	Haircare StepList         `json:"haircare,omitempty"`
	Makeup   StepList         `json:"makeup,omitempty"`
	Style    StepList         `json:"style,omitempty"`
}

// SkincareLines flattens morning and evening steps under their headings.
func (r *Routine) SkincareLines() []string {
	if r.Skincare == nil {
		return nil
	}
	var lines []string
	if len(r.Skincare.Morning) > 0 {
		lines = append(lines, "Morning:")
		for _, step := range r.Skincare.Morning {
			lines = append(lines, "• "+step)
		}
	}
	if len(r.Skincare.Evening) > 0 {
		lines = append(lines, "Evening:")
		for _, step := range r.Skincare.Evening {
			lines = append(lines, "• "+step)
		}
	}
	return lines
}

// Empty reports whether the routine has no section with content.
func (r *Routine) Empty() bool {
	return len(r.SkincareLines()) == 0 && len(r.Haircare) == 0 &&
		len(r.Makeup) == 0 && len(r.Style) == 0
}

type UserProfile struct {
	Name         string    `json:"name"`
	SkinType     string    `json:"skinType"`
	SkinConcerns []string  `json:"skinConcerns"`
	HairType     string    `json:"hairType"`
	DateCreated  time.Time `json:"dateCreated"`
}

// HomeState is what the landing view needs to decide where to send the user.
type HomeState struct {
	HasCompletedOnboarding bool `json:"hasCompletedOnboarding"`
	HasPersonalRoutine     bool `json:"hasPersonalRoutine"`
}
