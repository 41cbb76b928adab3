package recommendation

import (
	"context"
	"fmt"
	"path"
	"slices"

	"github.com/yanqian/moodfit/internal/domain/mood"
	"github.com/yanqian/moodfit/internal/domain/weather"
	apperrors "github.com/yanqian/moodfit/pkg/errors"
)

// Catalog supplies the outfit table once at startup.
type Catalog interface {
	Records(ctx context.Context) ([]Record, error)
}

const (
	maleHeroSuffix = "1"
	defaultReason  = "This recommendation fits your detected mood and weather conditions."
	notFoundNotice = "No matching recommendation found."
)

var explanation = []string{
	"Facial expression recognized using a Teachable Machine model",
	"Weather detected via Open-Meteo API",
	"Gender-based asset selection logic applied",
	"Matched using a mood-to-style mapping system",
}

// Resolver maps (style, weather, gender) to a view over a fixed table.
type Resolver struct {
	records []Record
}

// NewResolver keeps its own copy of records; later changes to the argument are not seen.
func NewResolver(records []Record) *Resolver {
	owned := make([]Record, len(records))
	for i, rec := range records {
		owned[i] = cloneRecord(rec)
	}
	return &Resolver{records: owned}
}

// LoadResolver reads the catalog once.
func LoadResolver(ctx context.Context, catalog Catalog) (*Resolver, error) {
	records, err := catalog.Records(ctx)
	if err != nil {
		return nil, fmt.Errorf("load recommendation catalog: %w", err)
	}
	return NewResolver(records), nil
}

// Len reports the number of records.
func (r *Resolver) Len() int {
	return len(r.records)
}

// Resolve returns the rendering view for the exact (style, weather) pair.
func (r *Resolver) Resolve(style mood.Style, cond weather.Condition, gender Gender) (View, error) {
	for i := range r.records {
		rec := &r.records[i]
		if rec.Mood == style && rec.Weather == cond {
			return viewFor(rec, gender), nil
		}
	}
	return View{}, apperrors.Wrap(apperrors.CodeRecommendationNotFound, notFoundNotice, nil)
}

func viewFor(rec *Record, gender Gender) View {
	view := View{
		ID:          rec.ID,
		Title:       rec.Title,
		Mood:        rec.Mood,
		Weather:     rec.Weather,
		Gender:      gender,
		Hero:        rec.Hero,
		Palette:     rec.Palette,
		Items:       slices.Clone(rec.Items),
		Accessories: slices.Clone(rec.Accessories),
		Description: rec.Description,
		Reason:      rec.Reason,
		Explanation: slices.Clone(explanation),
	}
	if view.Reason == "" {
		view.Reason = defaultReason
	}
	if gender != Male {
		return view
	}

	view.Hero = MaleHero(rec.Hero)
	if o := rec.Male; o != nil {
		if o.Palette != "" {
			view.Palette = o.Palette
		}
		if len(o.Items) > 0 {
			view.Items = slices.Clone(o.Items)
		}
		if len(o.Accessories) > 0 {
			view.Accessories = slices.Clone(o.Accessories)
		}
		if o.Description != "" {
			view.Description = o.Description
		}
	}
	return view
}

// MaleHero inserts the male asset suffix right before the file extension. References
// without an extension are returned unchanged.
func MaleHero(ref string) string {
	ext := path.Ext(ref)
	if ref == "" || ext == "" {
		return ref
	}
	return ref[:len(ref)-len(ext)] + maleHeroSuffix + ext
}

func cloneRecord(rec Record) Record {
	out := rec
	out.Items = slices.Clone(rec.Items)
	out.Accessories = slices.Clone(rec.Accessories)
	if rec.Male != nil {
		o := *rec.Male
		o.Items = slices.Clone(rec.Male.Items)
		o.Accessories = slices.Clone(rec.Male.Accessories)
		out.Male = &o
	}
	return out
}
