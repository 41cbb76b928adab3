package recommendation

import (
	"strings"

	"github.com/yanqian/moodfit/internal/domain/mood"
	"github.com/yanqian/moodfit/internal/domain/weather"
)

// Gender selects the asset and field variant of a record.
type Gender string

const (
	Male   Gender = "Male"
	Female Gender = "Female"
)

// ParseGender accepts a gender name, ignoring case.
func ParseGender(raw string) (Gender, bool) {
	clean := strings.TrimSpace(raw)
	switch {
	case strings.EqualFold(clean, string(Male)):
		return Male, true
	case strings.EqualFold(clean, string(Female)):
		return Female, true
	}
	return "", false
}

// Override carries the male specific variants of a record. Empty fields keep the base value.
type Override struct {
	Palette     string   `json:"palette,omitempty"`
	Items       []string `json:"items,omitempty"`
	Accessories []string `json:"accessories,omitempty"`
	Description string   `json:"description,omitempty"`
}

// Record is one immutable entry of the outfit table, unique per (Mood, Weather).
type Record struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Mood        mood.Style        `json:"mood"`
	Weather     weather.Condition `json:"weather"`
	Hero        string            `json:"hero"`
	Palette     string            `json:"palette"`
	Items       []string          `json:"items"`
	Accessories []string          `json:"accessories"`
	Description string            `json:"description"`
	Reason      string            `json:"reason,omitempty"`
	Male        *Override         `json:"male,omitempty"`
}

// View is the rendering copy of a record for one gender.
type View struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Mood        mood.Style        `json:"mood"`
	Weather     weather.Condition `json:"weather"`
	Gender      Gender            `json:"gender"`
	Hero        string            `json:"hero"`
	HeroURL     string            `json:"heroUrl,omitempty"`
	Palette     string            `json:"palette"`
	Items       []string          `json:"items"`
	Accessories []string          `json:"accessories"`
	Description string            `json:"description"`
	Reason      string            `json:"reason"`
	Explanation []string          `json:"explanation"`
}
