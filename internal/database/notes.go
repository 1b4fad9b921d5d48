package database

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"FastNotes/internal/database/models"
)

// NoteChanges is a sparse update. Columns holds only the supplied scalar
// columns; a nil value stores NULL. When ReplaceTags is set the tag set
// becomes exactly TagIDs, and an empty TagIDs clears it.
type NoteChanges struct {
	Columns     map[string]any
	ReplaceTags bool
	TagIDs      []uint
}

var updatableColumns = map[string]bool{
	"title":         true,
	"content":       true,
	"is_important":  true,
	"status":        true,
	"priority":      true,
	"reminder_date": true,
	"category_id":   true,
}

func withRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Category").Preload("Tags", func(db *gorm.DB) *gorm.DB {
		return db.Order("tags.id ASC")
	})
}

// CreateNote inserts note and links it to tagIDs. The category and every
// tag must already exist.
func (s *Store) CreateNote(ctx context.Context, note *models.Note, tagIDs []uint) (*models.Note, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if note.CategoryID != nil {
			if err := lookupCategory(tx, *note.CategoryID); err != nil {
				return err
			}
		}
		tags, err := resolveTags(tx, tagIDs)
		if err != nil {
			return err
		}

		now := s.timestamp()
		note.ID = 0
		note.CreatedAt = now
		note.UpdatedAt = now
		note.Category = nil
		note.Tags = tags

		if err := tx.Omit("Category", "Tags.*").Create(note).Error; err != nil {
			return err
		}
		return withRelations(tx).First(note, note.ID).Error
	})
	if err != nil {
		return nil, s.fail("create note", err)
	}
	return note, nil
}

func (s *Store) GetNote(ctx context.Context, id uint) (*models.Note, error) {
	var note models.Note
	err := withRelations(s.db.WithContext(ctx)).First(&note, id).Error
	if err != nil {
		return nil, s.fail("get note", notFound(err))
	}
	return &note, nil
}

// UpdateNote merges changes into the note in one transaction and returns
// the result. updated_at is refreshed even for an empty change set.
func (s *Store) UpdateNote(ctx context.Context, id uint, changes NoteChanges) (*models.Note, error) {
	var note models.Note
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&note, id).Error; err != nil {
			return notFound(err)
		}

		columns := make(map[string]any, len(changes.Columns)+1)
		for column, value := range changes.Columns {
			if !updatableColumns[column] {
				return fmt.Errorf("column %q is not updatable", column)
			}
			columns[column] = value
		}

		if categoryID, ok := columns["category_id"].(uint); ok {
			if err := lookupCategory(tx, categoryID); err != nil {
				return err
			}
		}

		var tags []models.Tag
		if changes.ReplaceTags {
			var err error
			if tags, err = resolveTags(tx, changes.TagIDs); err != nil {
				return err
			}
		}

		columns["updated_at"] = s.nextUpdate(note.UpdatedAt)
		if err := tx.Model(&note).Updates(columns).Error; err != nil {
			return err
		}

		if changes.ReplaceTags {
			association := tx.Model(&note).Association("Tags")
			var err error
			if len(tags) == 0 {
				err = association.Clear()
			} else {
				err = association.Replace(tags)
			}
			if err != nil {
				return err
			}
		}

		note = models.Note{}
		return withRelations(tx).First(&note, id).Error
	})
	if err != nil {
		return nil, s.fail("update note", err)
	}
	return &note, nil
}

// nextUpdate is the updated_at for a write following one at prev. It
// always moves forward, even when the clock has not.
func (s *Store) nextUpdate(prev time.Time) time.Time {
	stamp := s.timestamp()
	if floor := prev.UTC().Truncate(time.Millisecond).Add(time.Millisecond); stamp.Before(floor) {
		return floor
	}
	return stamp
}

// DeleteNote removes the note and its tag links. It reports false when
// there was nothing to delete.
func (s *Store) DeleteNote(ctx context.Context, id uint) (bool, error) {
	var deleted bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM note_tags WHERE note_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Note{}, id)
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, s.fail("delete note", err)
	}
	return deleted, nil
}

// ListNotes returns the matching notes newest first, with category and
// tags loaded.
func (s *Store) ListNotes(ctx context.Context, f NoteFilter) ([]models.Note, error) {
	notes := []models.Note{}
	q := f.page(f.Scope(s.db.WithContext(ctx).Model(&models.Note{})))
	if err := withRelations(q).Find(&notes).Error; err != nil {
		return nil, s.fail("list notes", err)
	}
	return notes, nil
}

// CountNotes counts every note matching f, ignoring Skip and Limit.
func (s *Store) CountNotes(ctx context.Context, f NoteFilter) (int64, error) {
	var total int64
	if err := f.Scope(s.db.WithContext(ctx).Model(&models.Note{})).Count(&total).Error; err != nil {
		return 0, s.fail("count notes", err)
	}
	return total, nil
}

// ListNotesWithTotal runs the list and the count for the same filter.
func (s *Store) ListNotesWithTotal(ctx context.Context, f NoteFilter) ([]models.Note, int64, error) {
	total, err := s.CountNotes(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []models.Note{}, 0, nil
	}
	notes, err := s.ListNotes(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return notes, total, nil
}
