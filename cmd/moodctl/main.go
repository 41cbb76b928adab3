package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/yanqian/moodfit/internal/domain/inference"
	"github.com/yanqian/moodfit/internal/domain/mood"
	"github.com/yanqian/moodfit/internal/domain/recommendation"
	"github.com/yanqian/moodfit/internal/domain/weather"
	"github.com/yanqian/moodfit/internal/infra/catalogrepo"
	"github.com/yanqian/moodfit/internal/infra/classifier"
	"github.com/yanqian/moodfit/internal/infra/config"
	"github.com/yanqian/moodfit/internal/infra/httpx"
	"github.com/yanqian/moodfit/internal/infra/openmeteo"
	"github.com/yanqian/moodfit/internal/infra/weathercache"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var asJSON bool

	root := &cobra.Command{
		Use:           "moodctl",
		Short:         "Operator tools for the moodfit outfit wizard",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&asJSON, "json", false, "print JSON instead of a styled card")

	root.AddCommand(newResolveCmd(&asJSON))
	root.AddCommand(newGradeCmd(&asJSON))
	root.AddCommand(newWeatherCmd(&asJSON))
	root.AddCommand(newClassifyCmd(&asJSON))
	root.AddCommand(newCatalogCmd(&asJSON))
	return root
}

func newResolveCmd(asJSON *bool) *cobra.Command {
	var emotionRaw, styleRaw, weatherRaw, genderRaw string

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Look up the outfit for a mood, weather and gender in the configured catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			style, err := styleFrom(emotionRaw, styleRaw)
			if err != nil {
				return err
			}
			cond, ok := weather.ParseCondition(weatherRaw)
			if !ok {
				return fmt.Errorf("unknown weather %q: want Sunny|Cloudy|Rainy", weatherRaw)
			}
			gender, ok := recommendation.ParseGender(genderRaw)
			if !ok {
				return fmt.Errorf("unknown gender %q: want Male|Female", genderRaw)
			}
			records, err := loadRecords(cmd.Context())
			if err != nil {
				return err
			}
			view, err := recommendation.NewResolver(records).Resolve(style, cond, gender)
			if err != nil {
				return err
			}
			if *asJSON {
				return writeJSON(cmd.OutOrStdout(), view)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), renderView(view))
			return nil
		},
	}
	cmd.Flags().StringVar(&emotionRaw, "emotion", "", "emotion: happy|neutral|sad|angry")
	cmd.Flags().StringVar(&styleRaw, "mood", "", "style: Active|Minimal|Cozy|Street (overrides --emotion)")
	cmd.Flags().StringVar(&weatherRaw, "weather", "", "weather: Sunny|Cloudy|Rainy")
	cmd.Flags().StringVar(&genderRaw, "gender", string(recommendation.Female), "gender: Male|Female")
	_ = cmd.MarkFlagRequired("weather")
	return cmd
}

func styleFrom(emotionRaw, styleRaw string) (mood.Style, error) {
	if styleRaw != "" {
		style, ok := mood.ParseStyle(styleRaw)
		if !ok {
			return "", fmt.Errorf("unknown mood %q: want Active|Minimal|Cozy|Street", styleRaw)
		}
		return style, nil
	}
	emotion, ok := mood.ParseEmotion(emotionRaw)
	if !ok {
		return "", fmt.Errorf("unknown emotion %q: want happy|neutral|sad|angry", emotionRaw)
	}
	style, _ := mood.StyleFor(emotion)
	return style, nil
}

func newGradeCmd(asJSON *bool) *cobra.Command {
	var pm10, pm25, temp float64
	var code int

	cmd := &cobra.Command{
		Use:   "grade",
		Short: "Grade raw weather and dust readings offline",
		RunE: func(cmd *cobra.Command, _ []string) error {
			report := weather.BuildReport(weather.Position{},
				weather.Current{Code: code, TemperatureC: temp},
				weather.Dust{PM10: pm10, PM25: pm25},
				time.Now().UTC())
			if *asJSON {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), renderReport(report))
			return nil
		},
	}
	cmd.Flags().IntVar(&code, "code", 0, "WMO weather code")
	cmd.Flags().Float64Var(&temp, "temp", 20, "temperature in °C")
	cmd.Flags().Float64Var(&pm10, "pm10", 0, "PM10 in µg/m³")
	cmd.Flags().Float64Var(&pm25, "pm25", 0, "PM2.5 in µg/m³")
	return cmd
}

func newWeatherCmd(asJSON *bool) *cobra.Command {
	var lat, lon float64

	cmd := &cobra.Command{
		Use:   "weather",
		Short: "Detect live weather and air quality for a position",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := quietLogger(cmd.ErrOrStderr())
			client := httpx.NewClient(cfg.Weather.Timeout, httpx.RetryConfig{
				MaxAttempts: cfg.Weather.Retry.MaxAttempts,
				BaseBackoff: cfg.Weather.Retry.BaseBackoff,
			}, log)
			svc := weather.NewService(
				weather.Config{Timeout: cfg.Weather.Timeout, CacheTTL: cfg.Weather.CacheTTL},
				openmeteo.NewForecastClient(cfg.Weather.ForecastURL, client),
				openmeteo.NewAirQualityClient(cfg.Weather.AirQualityURL, client),
				weathercache.NewMemoryCache(),
				log,
			)
			report, err := svc.Detect(cmd.Context(), weather.GeoFix{
				Status:   weather.GeoAvailable,
				Position: weather.Position{Latitude: lat, Longitude: lon},
			})
			if err != nil {
				return err
			}
			if *asJSON {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), renderReport(report))
			return nil
		},
	}
	cmd.Flags().Float64Var(&lat, "lat", 37.5665, "latitude")
	cmd.Flags().Float64Var(&lon, "lon", 126.978, "longitude")
	return cmd
}

func newClassifyCmd(asJSON *bool) *cobra.Command {
	var modelURL string

	cmd := &cobra.Command{
		Use:   "classify <image>",
		Short: "Run the hosted emotion model against an image file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if modelURL != "" {
				cfg.Model.BaseURL = modelURL
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			img, _, err := inference.Decode(f, cfg.Capture.MaxFrameSide)
			if err != nil {
				return err
			}

			log := quietLogger(cmd.ErrOrStderr())
			client := httpx.NewClient(cfg.Model.LoadTimeout, httpx.RetryConfig{
				MaxAttempts: cfg.Weather.Retry.MaxAttempts,
				BaseBackoff: cfg.Weather.Retry.BaseBackoff,
			}, log)
			stage := inference.NewStage(inference.Config{
				BaseURL:       cfg.Model.BaseURL,
				TopK:          cfg.Model.TopK,
				LowConfidence: cfg.Model.LowConfidence,
				FrameSize:     cfg.Model.FrameSize,
				LoadTimeout:   cfg.Model.LoadTimeout,
				InferTimeout:  cfg.Model.InferTimeout,
			}, classifier.NewClient(cfg.Model.PredictPath, client), log)
			if err := stage.Load(cmd.Context()); err != nil {
				return err
			}
			result, err := stage.Infer(cmd.Context(), img)
			if err != nil {
				return err
			}
			if *asJSON {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), renderResult(result))
			return nil
		},
	}
	cmd.Flags().StringVar(&modelURL, "model", "", "model base URL (defaults to the configured one)")
	return cmd
}

func newCatalogCmd(asJSON *bool) *cobra.Command {
	catalog := &cobra.Command{Use: "catalog", Short: "Recommendation catalog commands"}

	catalog.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List catalog records (postgres when configured, else the embedded table)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := loadRecords(cmd.Context())
			if err != nil {
				return err
			}
			if *asJSON {
				return writeJSON(cmd.OutOrStdout(), records)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), renderCatalog(records))
			return nil
		},
	})

	catalog.AddCommand(&cobra.Command{
		Use:   "seed",
		Short: "Create the catalog table and upsert the embedded records",
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, closeFn, err := openRepository(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			records := recommendation.DefaultRecords()
			if err := repo.Seed(cmd.Context(), records); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "seeded %d records\n", len(records))
			return nil
		},
	})
	return catalog
}

func loadRecords(ctx context.Context) ([]recommendation.Record, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.Catalog.Postgres.DSN == "" {
		return recommendation.NewStaticCatalog(nil).Records(ctx)
	}
	repo, closeFn, err := openRepository(ctx)
	if err != nil {
		return nil, err
	}
	defer closeFn()
	return repo.Records(ctx)
}

func openRepository(ctx context.Context) (*catalogrepo.PostgresRepository, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if cfg.Catalog.Postgres.DSN == "" {
		return nil, nil, fmt.Errorf("catalog postgres dsn is not configured (set CATALOG_POSTGRES_DSN)")
	}
	pool, err := pgxpool.New(ctx, cfg.Catalog.Postgres.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping postgres: %w", err)
	}
	return catalogrepo.NewPostgresRepository(pool), pool.Close, nil
}

// quietLogger keeps service logs on stderr so command output stays parseable.
func quietLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
