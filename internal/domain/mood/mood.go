// Package mood holds the emotion vocabulary and the emotion to clothing style mapping.
package mood

import "strings"

// Emotion is a discrete facial expression the wizard understands.
type Emotion string

const (
	Happy   Emotion = "happy"
	Neutral Emotion = "neutral"
	Sad     Emotion = "sad"
	Angry   Emotion = "angry"
)

// Style is the clothing mood a recommendation is keyed on.
type Style string

const (
	Active  Style = "Active"
	Minimal Style = "Minimal"
	Cozy    Style = "Cozy"
	Street  Style = "Street"
)

// labelOrder is the order tokens are tested against a classifier label.
var labelOrder = []Emotion{Happy, Neutral, Sad, Angry}

var styles = map[Emotion]Style{
	Happy:   Active,
	Neutral: Minimal,
	Sad:     Cozy,
	Angry:   Street,
}

var displayLabels = map[Emotion]string{
	Happy:   "🙂 Happy",
	Sad:     "😢 Sad",
	Angry:   "😠 Angry",
	Neutral: "😐 Neutral",
}

// Emotions lists the known emotions in label matching order.
func Emotions() []Emotion {
	out := make([]Emotion, len(labelOrder))
	copy(out, labelOrder)
	return out
}

// StyleFor maps an emotion to its style. ok is false for anything outside the vocabulary.
func StyleFor(e Emotion) (Style, bool) {
	s, ok := styles[e]
	return s, ok
}

// ParseEmotion accepts an exact emotion name, ignoring case and surrounding space.
func ParseEmotion(raw string) (Emotion, bool) {
	e := Emotion(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := styles[e]; !ok {
		return "", false
	}
	return e, true
}

// ParseStyle accepts a style name, ignoring case.
func ParseStyle(raw string) (Style, bool) {
	clean := strings.TrimSpace(raw)
	for _, s := range styles {
		if strings.EqualFold(string(s), clean) {
			return s, true
		}
	}
	return "", false
}

// FromLabel resolves a classifier label by case-insensitive substring match.
func FromLabel(label string) (Emotion, bool) {
	lower := strings.ToLower(label)
	for _, e := range labelOrder {
		if strings.Contains(lower, string(e)) {
			return e, true
		}
	}
	return "", false
}

// DisplayLabel is the emoji label used for probability bars. Labels that match no
// emotion render as neutral.
func DisplayLabel(label string) string {
	lower := strings.ToLower(label)
	key := Neutral
	switch {
	case strings.Contains(lower, string(Happy)):
		key = Happy
	case strings.Contains(lower, string(Sad)):
		key = Sad
	case strings.Contains(lower, string(Angry)):
		key = Angry
	}
	return displayLabels[key]
}
