package recommendation

import (
	"context"

	"github.com/yanqian/moodfit/internal/domain/mood"
	"github.com/yanqian/moodfit/internal/domain/weather"
)

// DefaultRecords returns a fresh copy of the built-in outfit table.
func DefaultRecords() []Record {
	return []Record{
		{
			ID:          "active_sunny",
			Title:       "Active × Sunny",
			Mood:        mood.Active,
			Weather:     weather.Sunny,
			Hero:        "assets_img/active_sunny.jpg",
			Palette:     "Red / Orange / Yellow",
			Items:       []string{"Cotton T-shirt", "Mini skirt", "Sneakers"},
			Accessories: []string{"Sunglasses", "Cap", "Beaded bracelet"},
			Description: "Bright energy for sunny weather.",
			Male: &Override{
				Palette:     "Red / Black / Brown",
				Items:       []string{"Hoodie", "Bermuda shorts", "Work boots"},
				Accessories: []string{"Bandana", "Belt", "Smartphone"},
			},
		},
		{
			ID:          "active_cloudy",
			Title:       "Active × Cloudy",
			Mood:        mood.Active,
			Weather:     weather.Cloudy,
			Hero:        "assets_img/active_cloudy.jpg",
			Palette:     "Red / Orange / Yellow (toned down)",
			Items:       []string{"T-shirt + cardigan", "Light pants"},
			Accessories: []string{"Bucket hat", "Crossbody bag"},
			Description: "Stay light and energetic on cloudy days.",
			Male: &Override{
				Palette:     "Yellow / Navy / Denim Blue",
				Items:       []string{"Hoodie", "Denim jacket", "Wide denim pants"},
				Accessories: []string{"Glasses", "Wrist watch", "Sneakers"},
			},
		},
		{
			ID:          "active_rainy",
			Title:       "Active × Rainy",
			Mood:        mood.Active,
			Weather:     weather.Rainy,
			Hero:        "assets_img/active_rainy.jpg",
			Palette:     "Bright inner + rain outer",
			Items:       []string{"Rain jacket", "Long pants"},
			Accessories: []string{"Umbrella", "Backpack"},
			Description: "Energy inside, protection outside.",
			Male: &Override{
				Palette:     "Red / Light Blue / Yellow",
				Items:       []string{"Hooded jacket", "Denim pants", "Sneakers"},
				Accessories: []string{"Umbrella", "Cross bag", "Stud belt"},
			},
		},
		{
			ID:          "minimal_sunny",
			Title:       "Minimal × Sunny",
			Mood:        mood.Minimal,
			Weather:     weather.Sunny,
			Hero:        "assets_img/minimal_sunny.jpg",
			Palette:     "Beige / Light Blue / White",
			Items:       []string{"Light blue shirt", "White pants"},
			Accessories: []string{"Leather tote", "Metal watch"},
			Description: "Clean bright minimal look.",
			Male: &Override{
				Palette:     "Black / Dark Gray / Silver",
				Items:       []string{"Leather jacket", "Turtleneck top", "Slacks"},
				Accessories: []string{"Tote bag", "Sunglasses", "Wrist watch"},
			},
		},
		{
			ID:          "minimal_cloudy",
			Title:       "Minimal × Cloudy",
			Mood:        mood.Minimal,
			Weather:     weather.Cloudy,
			Hero:        "assets_img/minimal_cloudy.jpg",
			Palette:     "Soft beige & blue",
			Items:       []string{"Shirt + cardigan", "Chinos"},
			Accessories: []string{"Slim belt", "Minimal sneakers"},
			Description: "Balanced tones for cloudy day stability.",
			Male: &Override{
				Palette:     "Black / Gray / Light Blue",
				Items:       []string{"Long coat", "Hoodie", "Straight jeans"},
				Accessories: []string{"Cap", "Cross bag", "Sneakers"},
			},
		},
		{
			ID:          "minimal_rainy",
			Title:       "Minimal × Rainy",
			Mood:        mood.Minimal,
			Weather:     weather.Rainy,
			Hero:        "assets_img/minimal_rainy.jpg",
			Palette:     "Rain-friendly neutrals",
			Items:       []string{"Beige trench", "Shirt", "Slacks"},
			Accessories: []string{"Tote bag", "Watch"},
			Description: "Keep it clean even in the rain.",
			Male: &Override{
				Palette:     "Black / Dark Gray / Brown",
				Items:       []string{"Knit top", "Slacks", "Sneakers"},
				Accessories: []string{"Umbrella", "Leather shoulder bag", "Minimal shoes"},
			},
		},
		{
			ID:          "cozy_sunny",
			Title:       "Cozy × Sunny",
			Mood:        mood.Cozy,
			Weather:     weather.Sunny,
			Hero:        "assets_img/cozy_sunny.jpg",
			Palette:     "Navy / Black / Gray",
			Items:       []string{"Light knit", "Relaxed pants"},
			Accessories: []string{"Soft scarf", "Canvas bag"},
			Description: "Relaxed cozy vibe with light knit.",
			Male: &Override{
				Palette:     "Blue / White / Light Gray",
				Items:       []string{"Check shirt", "White T-shirt", "Denim pants"},
				Accessories: []string{"Headphones", "Sneakers", "Minimal bracelet"},
			},
		},
		{
			ID:          "cozy_cloudy",
			Title:       "Cozy × Cloudy",
			Mood:        mood.Cozy,
			Weather:     weather.Cloudy,
			Hero:        "assets_img/cozy_cloudy.jpg",
			Palette:     "Warm knit tones",
			Items:       []string{"Knit sweater", "Coat"},
			Accessories: []string{"Scarf", "Warm bag"},
			Description: "Comfort-focused winter-like cozy look.",
			Male: &Override{
				Palette:     "Navy / Gray / Black",
				Items:       []string{"Wool coat", "Hoodie", "Slacks"},
				Accessories: []string{"Knit beanie", "Loafers", "Winter cap"},
			},
		},
		{
			ID:          "cozy_rainy",
			Title:       "Cozy × Rainy",
			Mood:        mood.Cozy,
			Weather:     weather.Rainy,
			Hero:        "assets_img/cozy_rainy.jpg",
			Palette:     "Dark cozy palette",
			Items:       []string{"Hood coat", "Dark jeans"},
			Accessories: []string{"Boots", "Umbrella"},
			Description: "Warm + waterproof = perfect cozy rain outfit.",
			Male: &Override{
				Palette:     "Navy / Black / Brown",
				Items:       []string{"Windbreaker jacket", "Slacks", "Loafers"},
				Accessories: []string{"Umbrella", "Leather belt", "Dress shoes"},
			},
		},
		{
			ID:          "street_sunny",
			Title:       "Street × Sunny",
			Mood:        mood.Street,
			Weather:     weather.Sunny,
			Hero:        "assets_img/street_sunny.jpg",
			Palette:     "Purple / Brown / Green",
			Items:       []string{"Graphic tee", "Cargo shorts"},
			Accessories: []string{"Cap", "Chain"},
			Description: "Cool tones for a sunny street style.",
			Male: &Override{
				Palette:     "Olive / Brown / Black",
				Items:       []string{"Long-sleeve T-shirt", "Cargo pants", "Loafers"},
				Accessories: []string{"Backpack", "Chain necklace", "Headphones"},
			},
		},
		{
			ID:          "street_cloudy",
			Title:       "Street × Cloudy",
			Mood:        mood.Street,
			Weather:     weather.Cloudy,
			Hero:        "assets_img/street_cloudy.jpg",
			Palette:     "Muted street tone",
			Items:       []string{"Oversized hoodie", "Wide pants"},
			Accessories: []string{"Chunky sneakers", "Bag"},
			Description: "Large fit to stand out in gray weather.",
			Male: &Override{
				Palette:     "Khaki / Brown / Dark Green",
				Items:       []string{"Leather jacket", "Cargo pants", "Work boots"},
				Accessories: []string{"Cross bag", "Baseball cap", "Glasses"},
			},
		},
		{
			ID:          "street_rainy",
			Title:       "Street × Rainy",
			Mood:        mood.Street,
			Weather:     weather.Rainy,
			Hero:        "assets_img/street_rainy.jpg",
			Palette:     "Techwear mix",
			Items:       []string{"Rain jacket", "Cargo pants"},
			Accessories: []string{"Bucket hat", "Grip sneakers"},
			Description: "Tech-inspired street rain outfit.",
			Male: &Override{
				Palette:     "Olive / Gray / Black",
				Items:       []string{"Waterproof parka", "Wide pants", "Sneakers"},
				Accessories: []string{"Umbrella", "Cross bag", "Baseball cap"},
			},
		},
	}
}

// StaticCatalog serves a fixed record slice.
type StaticCatalog struct {
	records []Record
}

// NewStaticCatalog builds a catalog over records, or over DefaultRecords when nil.
func NewStaticCatalog(records []Record) *StaticCatalog {
	if records == nil {
		records = DefaultRecords()
	}
	return &StaticCatalog{records: records}
}

// Records implements Catalog.
func (c *StaticCatalog) Records(_ context.Context) ([]Record, error) {
	out := make([]Record, len(c.records))
	for i, rec := range c.records {
		out[i] = cloneRecord(rec)
	}
	return out, nil
}

var _ Catalog = (*StaticCatalog)(nil)
