package catalogrepo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/moodfit/internal/domain/mood"
	"github.com/yanqian/moodfit/internal/domain/recommendation"
	"github.com/yanqian/moodfit/internal/domain/weather"
)

// Schema creates the recommendations table used by PostgresRepository.
const Schema = `
CREATE TABLE IF NOT EXISTS recommendations (
	id               TEXT PRIMARY KEY,
	title            TEXT NOT NULL,
	mood             TEXT NOT NULL,
	weather          TEXT NOT NULL,
	hero             TEXT NOT NULL,
	palette          TEXT NOT NULL,
	items            TEXT[] NOT NULL DEFAULT '{}',
	accessories      TEXT[] NOT NULL DEFAULT '{}',
	description      TEXT NOT NULL,
	reason           TEXT,
	male_palette     TEXT,
	male_items       TEXT[],
	male_accessories TEXT[],
	male_description TEXT,
	UNIQUE (mood, weather)
)`

// PostgresRepository implements recommendation.Catalog using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Records loads the whole table ordered by id.
func (r *PostgresRepository) Records(ctx context.Context) ([]recommendation.Record, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, title, mood, weather, hero, palette, items, accessories, description, reason,
		       male_palette, male_items, male_accessories, male_description
		FROM recommendations
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []recommendation.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Seed creates the table and upserts records in one transaction.
func (r *PostgresRepository) Seed(ctx context.Context, records []recommendation.Record) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("create recommendations table: %w", err)
	}
	batch := &pgx.Batch{}
	for _, rec := range records {
		male := rec.Male
		if male == nil {
			male = &recommendation.Override{}
		}
		batch.Queue(`
			INSERT INTO recommendations (id, title, mood, weather, hero, palette, items, accessories,
				description, reason, male_palette, male_items, male_accessories, male_description)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			ON CONFLICT (id) DO UPDATE SET
				title = EXCLUDED.title, mood = EXCLUDED.mood, weather = EXCLUDED.weather,
				hero = EXCLUDED.hero, palette = EXCLUDED.palette, items = EXCLUDED.items,
				accessories = EXCLUDED.accessories, description = EXCLUDED.description,
				reason = EXCLUDED.reason, male_palette = EXCLUDED.male_palette,
				male_items = EXCLUDED.male_items, male_accessories = EXCLUDED.male_accessories,
				male_description = EXCLUDED.male_description
		`,
			rec.ID, rec.Title, string(rec.Mood), string(rec.Weather), rec.Hero, rec.Palette,
			nonNil(rec.Items), nonNil(rec.Accessories), rec.Description, nullable(rec.Reason),
			nullable(male.Palette), male.Items, male.Accessories, nullable(male.Description),
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert recommendations: %w", err)
	}
	return tx.Commit(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (recommendation.Record, error) {
	var (
		rec             recommendation.Record
		moodValue       string
		weatherValue    string
		reason          *string
		malePalette     *string
		maleItems       []string
		maleAccessories []string
		maleDescription *string
	)
	if err := row.Scan(
		&rec.ID, &rec.Title, &moodValue, &weatherValue, &rec.Hero, &rec.Palette,
		&rec.Items, &rec.Accessories, &rec.Description, &reason,
		&malePalette, &maleItems, &maleAccessories, &maleDescription,
	); err != nil {
		return recommendation.Record{}, err
	}
	rec.Mood = mood.Style(moodValue)
	rec.Weather = weather.Condition(weatherValue)
	rec.Reason = deref(reason)

	male := recommendation.Override{
		Palette:     deref(malePalette),
		Items:       maleItems,
		Accessories: maleAccessories,
		Description: deref(maleDescription),
	}
	if male.Palette != "" || len(male.Items) > 0 || len(male.Accessories) > 0 || male.Description != "" {
		rec.Male = &male
	}
	return rec, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

var _ recommendation.Catalog = (*PostgresRepository)(nil)
