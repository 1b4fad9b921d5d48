package notes

import (
	"FastNotes/internal/database/models"
	api "FastNotes/pkg/models"
)

func toCategory(c *models.Category) api.Category {
	return api.Category{ID: c.ID, Name: c.Name}
}

func toTag(t *models.Tag) api.Tag {
	return api.Tag{ID: t.ID, Name: t.Name}
}

func toNote(n *models.Note) api.Note {
	out := api.Note{
		ID:          n.ID,
		Title:       n.Title,
		Content:     n.Content,
		IsImportant: n.IsImportant,
		Status:      n.Status,
		Priority:    n.Priority,
		CategoryID:  n.CategoryID,
		TagIDs:      n.TagIDs(),
		CreatedAt:   n.CreatedAt.UTC(),
		UpdatedAt:   n.UpdatedAt.UTC(),
		Tags:        make([]api.Tag, 0, len(n.Tags)),
	}

	if n.ReminderDate != nil {
		t := n.ReminderDate.UTC()
		out.ReminderDate = &t
	}
	if n.Category != nil {
		c := toCategory(n.Category)
		out.Category = &c
	}
	for i := range n.Tags {
		out.Tags = append(out.Tags, toTag(&n.Tags[i]))
	}
	return out
}
