package models

import (
	"time"

	api "FastNotes/pkg/models"
)

type Note struct {
	ID           uint             `gorm:"primaryKey"`
	Title        string           `gorm:"size:200;not null"`
	Content      *string          `gorm:"type:text"`
	IsImportant  bool             `gorm:"not null;default:false;index"`
	Status       api.NoteStatus   `gorm:"size:16;not null;index"`
	Priority     api.NotePriority `gorm:"size:16;not null;index"`
	ReminderDate *time.Time       `gorm:"index"`
	CreatedAt    time.Time        `gorm:"not null;index"`
	UpdatedAt    time.Time        `gorm:"not null"`
	CategoryID   *uint            `gorm:"index"`

	Category *Category `gorm:"foreignKey:CategoryID"`
	Tags     []Tag     `gorm:"many2many:note_tags;"`
}

// TagIDs returns the ids of the loaded tags in order.
func (n *Note) TagIDs() []uint {
	ids := make([]uint, 0, len(n.Tags))
	for _, t := range n.Tags {
		ids = append(ids, t.ID)
	}
	return ids
}
