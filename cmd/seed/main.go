package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"FastNotes/internal/config"
	"FastNotes/internal/database"
	"FastNotes/internal/logger"
	"FastNotes/internal/notes"
	"FastNotes/pkg/models"
)

// seedFile is the YAML layout. Notes refer to categories and tags by name.
type seedFile struct {
	Categories []string   `yaml:"categories"`
	Tags       []string   `yaml:"tags"`
	Notes      []seedNote `yaml:"notes"`
}

type seedNote struct {
	models.NoteCreate `yaml:",inline"`
	Category          string   `yaml:"category"`
	TagNames          []string `yaml:"tags"`
}

func main() {
	configFile := flag.StringP("config", "c", os.Getenv("NOTES_CONFIG"), "optional YAML config file")
	dataFile := flag.StringP("file", "f", "seed.yaml", "seed data file")
	flag.Parse()

	if _, err := config.LoadEnv(); err != nil {
		fmt.Fprintln(os.Stderr, "warning:", err)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log)

	if err := run(cfg, *dataFile, log); err != nil {
		log.Fatal().Err(err).Str("file", *dataFile).Msg("seeding failed")
	}
}

func run(cfg *config.Config, dataFile string, log zerolog.Logger) error {
	data, err := readSeed(dataFile)
	if err != nil {
		return err
	}

	ctx := context.Background()
	db, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Warn().Err(err).Msg("closing database")
		}
	}()

	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	svc := notes.NewService(database.NewStore(db, log), cfg.Pagination, log)
	return seed(ctx, svc, data, log)
}

func readSeed(path string) (*seedFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	data := new(seedFile)
	if err := yaml.Unmarshal(raw, data); err != nil {
		return nil, fmt.Errorf("yaml.Unmarshal: %w", err)
	}
	return data, nil
}

// seed is idempotent for categories and tags; notes are always inserted.
func seed(ctx context.Context, svc *notes.Service, data *seedFile, log zerolog.Logger) error {
	for _, name := range data.Categories {
		if _, err := svc.CreateCategory(ctx, models.CategoryCreate{Name: name}); err != nil {
			return fmt.Errorf("category %q: %w", name, err)
		}
	}
	for _, name := range data.Tags {
		if _, err := svc.CreateTag(ctx, models.TagCreate{Name: name}); err != nil {
			return fmt.Errorf("tag %q: %w", name, err)
		}
	}

	for i, n := range data.Notes {
		in := n.NoteCreate

		if n.Category != "" {
			id, err := svc.EnsureCategoryName(ctx, n.Category)
			if err != nil {
				return fmt.Errorf("note %d: %w", i, err)
			}
			in.CategoryID = id
		}
		if len(n.TagNames) > 0 {
			ids, err := svc.EnsureTagNames(ctx, strings.Join(n.TagNames, ","))
			if err != nil {
				return fmt.Errorf("note %d: %w", i, err)
			}
			in.TagIDs = append(in.TagIDs, ids...)
		}

		note, err := svc.CreateNote(ctx, in)
		if err != nil {
			return fmt.Errorf("note %d (%q): %w", i, in.Title, err)
		}
		log.Info().Uint("id", note.ID).Str("title", note.Title).Msg("note seeded")
	}

	log.Info().
		Int("categories", len(data.Categories)).
		Int("tags", len(data.Tags)).
		Int("notes", len(data.Notes)).
		Msg("seed completed")
	return nil
}
