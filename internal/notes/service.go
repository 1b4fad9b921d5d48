package notes

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"FastNotes/internal/config"
	"FastNotes/internal/database"
	"FastNotes/internal/database/models"
	api "FastNotes/pkg/models"
)

// Store is the persistence the service needs. *database.Store satisfies it.
type Store interface {
	Ping(ctx context.Context) error

	EnsureCategory(ctx context.Context, name string) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	EnsureTag(ctx context.Context, name string) (*models.Tag, error)
	ListTags(ctx context.Context) ([]models.Tag, error)

	CreateNote(ctx context.Context, note *models.Note, tagIDs []uint) (*models.Note, error)
	GetNote(ctx context.Context, id uint) (*models.Note, error)
	UpdateNote(ctx context.Context, id uint, changes database.NoteChanges) (*models.Note, error)
	DeleteNote(ctx context.Context, id uint) (bool, error)
	ListNotesWithTotal(ctx context.Context, f database.NoteFilter) ([]models.Note, int64, error)
}

var _ Store = (*database.Store)(nil)

// Service validates input and maps between the API types and the store.
type Service struct {
	store      Store
	pagination config.Pagination
	log        zerolog.Logger
	now        func() time.Time
}

func NewService(store Store, pagination config.Pagination, log zerolog.Logger) *Service {
	return &Service{
		store:      store,
		pagination: pagination,
		log:        log.With().Str("component", "notes").Logger(),
		now:        time.Now,
	}
}

// WithClock returns a copy of the service that checks reminder dates
// against now.
func (s *Service) WithClock(now func() time.Time) *Service {
	clone := *s
	clone.now = now
	return &clone
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) CreateCategory(ctx context.Context, in api.CategoryCreate) (api.Category, error) {
	name := strings.TrimSpace(in.Name)
	if err := check(nameField{Name: name}); err != nil {
		return api.Category{}, err
	}

	category, err := s.store.EnsureCategory(ctx, name)
	if err != nil {
		return api.Category{}, err
	}
	return toCategory(category), nil
}

func (s *Service) ListCategories(ctx context.Context) ([]api.Category, error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]api.Category, 0, len(categories))
	for i := range categories {
		out = append(out, toCategory(&categories[i]))
	}
	return out, nil
}

func (s *Service) CreateTag(ctx context.Context, in api.TagCreate) (api.Tag, error) {
	name := strings.TrimSpace(in.Name)
	if err := check(tagNameField{Name: name}); err != nil {
		return api.Tag{}, err
	}

	tag, err := s.store.EnsureTag(ctx, name)
	if err != nil {
		return api.Tag{}, err
	}
	return toTag(tag), nil
}

func (s *Service) ListTags(ctx context.Context) ([]api.Tag, error) {
	tags, err := s.store.ListTags(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]api.Tag, 0, len(tags))
	for i := range tags {
		out = append(out, toTag(&tags[i]))
	}
	return out, nil
}

// EnsureCategoryName resolves a free-text category name to an id, creating
// the category when it is new. A blank name means no category.
func (s *Service) EnsureCategoryName(ctx context.Context, name string) (*uint, error) {
	if strings.TrimSpace(name) == "" {
		return nil, nil
	}

	category, err := s.CreateCategory(ctx, api.CategoryCreate{Name: name})
	if err != nil {
		return nil, err
	}
	return &category.ID, nil
}

// EnsureTagNames resolves a comma separated list of tag names to ids,
// creating missing tags. Blank entries and repeats are skipped. Every name
// is checked before the first tag is created.
func (s *Service) EnsureTagNames(ctx context.Context, csv string) ([]uint, error) {
	names := splitNames(csv)
	if err := checkTagNames(names); err != nil {
		return nil, err
	}

	ids := []uint{}
	seen := make(map[uint]struct{})
	for _, name := range names {
		tag, err := s.CreateTag(ctx, api.TagCreate{Name: name})
		if err != nil {
			return nil, err
		}
		if _, ok := seen[tag.ID]; ok {
			continue
		}
		seen[tag.ID] = struct{}{}
		ids = append(ids, tag.ID)
	}
	return ids, nil
}

// CheckNames validates a free-text category name and tag list the way
// EnsureCategoryName and EnsureTagNames would, without creating anything.
func (s *Service) CheckNames(category, tagsCSV string) error {
	if name := strings.TrimSpace(category); name != "" {
		if err := check(nameField{Name: name}); err != nil {
			return invalid("category_name", reasonOf(err))
		}
	}
	return checkTagNames(splitNames(tagsCSV))
}

func splitNames(csv string) []string {
	var names []string
	for _, name := range strings.Split(csv, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func checkTagNames(names []string) error {
	for _, name := range names {
		if err := check(tagNameField{Name: name}); err != nil {
			return invalid("tags", reasonOf(err))
		}
	}
	return nil
}
