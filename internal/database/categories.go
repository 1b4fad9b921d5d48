package database

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"FastNotes/internal/database/models"
)

// EnsureCategory returns the category named name, creating it if needed.
// Names match exactly, including case.
func (s *Store) EnsureCategory(ctx context.Context, name string) (*models.Category, error) {
	category := &models.Category{Name: name}
	if err := s.ensureNamed(ctx, category, name); err != nil {
		return nil, s.fail("ensure category", err)
	}
	return category, nil
}

func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&categories).Error; err != nil {
		return nil, s.fail("list categories", err)
	}
	return categories, nil
}

// EnsureTag is the tag counterpart of EnsureCategory.
func (s *Store) EnsureTag(ctx context.Context, name string) (*models.Tag, error) {
	tag := &models.Tag{Name: name}
	if err := s.ensureNamed(ctx, tag, name); err != nil {
		return nil, s.fail("ensure tag", err)
	}
	return tag, nil
}

func (s *Store) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&tags).Error; err != nil {
		return nil, s.fail("list tags", err)
	}
	return tags, nil
}

// ensureNamed loads the row with the given name into dest or inserts dest.
// A unique violation on insert means a concurrent caller won; the row is
// fetched again outside of any transaction.
func (s *Store) ensureNamed(ctx context.Context, dest any, name string) error {
	db := s.db.WithContext(ctx)

	err := db.Where("name = ?", name).First(dest).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	err = db.Create(dest).Error
	if err == nil {
		return nil
	}
	if !isUniqueViolation(err) {
		return err
	}

	s.log.Debug().Str("name", name).Msg("lost get-or-create race, re-fetching")
	return db.Where("name = ?", name).First(dest).Error
}

// lookupCategory fails with a ReferenceError when id does not exist.
func lookupCategory(tx *gorm.DB, id uint) error {
	var count int64
	if err := tx.Model(&models.Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return &ReferenceError{Field: "category_id", IDs: []uint{id}}
	}
	return nil
}

// resolveTags loads the tags for ids, ordered by id. Any id without a row
// fails the whole lookup.
func resolveTags(tx *gorm.DB, ids []uint) ([]models.Tag, error) {
	if len(ids) == 0 {
		return []models.Tag{}, nil
	}

	var tags []models.Tag
	if err := tx.Where("id IN ?", ids).Order("id ASC").Find(&tags).Error; err != nil {
		return nil, err
	}

	found := make(map[uint]struct{}, len(tags))
	for _, t := range tags {
		found[t.ID] = struct{}{}
	}
	var missing []uint
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
			found[id] = struct{}{}
		}
	}
	if len(missing) > 0 {
		return nil, &ReferenceError{Field: "tag_ids", IDs: missing}
	}
	return tags, nil
}
