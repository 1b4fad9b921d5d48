package database

import (
	"math"
	"strings"
	"time"

	"gorm.io/gorm"

	api "FastNotes/pkg/models"
)

// NoteFilter is the set of optional predicates for a note listing. Zero
// values mean "no filter". Limit <= 0 means unbounded.
type NoteFilter struct {
	CategoryID *uint
	TagID      *uint
	Status     api.NoteStatus
	Priority   api.NotePriority
	Important  bool
	Before     *time.Time
	Search     string

	Skip  int
	Limit int
}

const likeEscape = "!"

var likeReplacer = strings.NewReplacer(
	likeEscape, likeEscape+likeEscape,
	"%", likeEscape+"%",
	"_", likeEscape+"_",
)

// escapeLike makes s match literally inside a LIKE pattern using '!' as the
// escape character.
func escapeLike(s string) string {
	return likeReplacer.Replace(s)
}

// Scope folds the predicates onto q in a fixed order. It does not apply
// ordering or pagination so it can back both the list and the count.
func (f NoteFilter) Scope(q *gorm.DB) *gorm.DB {
	if f.CategoryID != nil {
		q = q.Where("notes.category_id = ?", *f.CategoryID)
	}

	if f.TagID != nil {
		tagged := q.Session(&gorm.Session{NewDB: true}).
			Table("note_tags").
			Select("note_tags.note_id").
			Where("note_tags.tag_id = ?", *f.TagID)
		q = q.Where("notes.id IN (?)", tagged)
	}

	if f.Status != "" {
		q = q.Where("notes.status = ?", f.Status)
	}

	if f.Priority != "" {
		q = q.Where("notes.priority = ?", f.Priority)
	}

	if f.Important {
		q = q.Where("notes.is_important = ?", true)
	}

	if f.Before != nil {
		q = q.Where("notes.reminder_date IS NOT NULL AND notes.reminder_date <= ?", f.Before.UTC())
	}

	if f.Search != "" {
		// Both sides are folded by the database so they agree on what
		// lower case means.
		pattern := "%" + escapeLike(f.Search) + "%"
		like := " LIKE LOWER(?) ESCAPE '" + likeEscape + "'"
		byTagName := q.Session(&gorm.Session{NewDB: true}).
			Table("note_tags").
			Select("note_tags.note_id").
			Joins("JOIN tags ON tags.id = note_tags.tag_id").
			Where("LOWER(tags.name)"+like, pattern)
		q = q.Where(
			"(LOWER(notes.title)"+like+" OR LOWER(notes.content)"+like+" OR notes.id IN (?))",
			pattern, pattern, byTagName,
		)
	}

	return q
}

// page applies ordering and pagination.
func (f NoteFilter) page(q *gorm.DB) *gorm.DB {
	q = q.Order("notes.created_at DESC").Order("notes.id DESC")

	switch {
	case f.Limit > 0:
		q = q.Limit(f.Limit)
	case f.Skip > 0:
		// OFFSET without LIMIT is not valid everywhere.
		q = q.Limit(math.MaxInt32)
	}
	if f.Skip > 0 {
		q = q.Offset(f.Skip)
	}
	return q
}
