// Package tone extracts the optional tone marker from the head of a model
// completion and classifies it into a fixed five-value scale.
package tone

import (
	"regexp"
	"strconv"
	"strings"
)

// Tone is one of the five sentiment categories the prompt asks for.
type Tone string

// Tone categories, ordered from most positive to most negative.
const (
	Happy      Tone = "Happy"
	Satisfied  Tone = "Satisfied"
	Neutral    Tone = "Neutral"
	Frustrated Tone = "Frustrated"
	Angry      Tone = "Angry"
)

// Default confidence scores used when the marker is absent or incomplete.
const (
	defaultConfidence  = 50
	fallbackConfidence = 75
)

// Result is a tone classification with its confidence score (0-100).
type Result struct {
	Tone       Tone
	Confidence int
}

var (
	// withConfidence matches "TONE: <category> | CONFIDENCE: <score>" at the
	// start of the text.
	withConfidence = regexp.MustCompile(`(?i)^TONE:\s*(Happy|Satisfied|Neutral|Frustrated|Angry)\s*\|\s*CONFIDENCE:\s*(\d+)\s*\n?`)

	// withoutConfidence matches the legacy "TONE: <category>" form.
	withoutConfidence = regexp.MustCompile(`(?i)^TONE:\s*(Happy|Satisfied|Neutral|Frustrated|Angry)\s*\n?`)
)

// Extract pulls a leading tone marker out of raw completion text. It returns
// the classification and the remaining text with the marker line removed.
//
// The patterns form a first-match-wins cascade: the full marker with a
// confidence score, then the legacy marker without one (confidence 75), then
// a Neutral/50 default with the text unchanged. Extract never fails.
func Extract(text string) (Result, string) {
	if m := withConfidence.FindStringSubmatch(text); m != nil {
		confidence, err := strconv.Atoi(m[2])
		if err != nil || confidence > 100 {
			confidence = fallbackConfidence
		}
		return Result{Tone: canonical(m[1]), Confidence: confidence},
			strings.TrimSpace(text[len(m[0]):])
	}

	if m := withoutConfidence.FindStringSubmatch(text); m != nil {
		return Result{Tone: canonical(m[1]), Confidence: fallbackConfidence},
			strings.TrimSpace(text[len(m[0]):])
	}

	return Result{Tone: Neutral, Confidence: defaultConfidence}, text
}

// canonical maps a case-insensitive category capture to its Tone value.
func canonical(category string) Tone {
	switch strings.ToLower(category) {
	case "happy":
		return Happy
	case "satisfied":
		return Satisfied
	case "frustrated":
		return Frustrated
	case "angry":
		return Angry
	default:
		return Neutral
	}
}
