package web

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"FastNotes/internal/notes"
	"FastNotes/pkg/models"
)

// noteForm is the form as typed by the user, kept verbatim so it can be
// shown again after a validation error.
type noteForm struct {
	ID           uint
	Action       string
	Title        string
	Content      string
	Category     string
	Tags         string
	Important    bool
	Status       string
	Priority     string
	ReminderDate string
}

func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "on", "yes", "t":
		return true
	}
	return false
}

func parseNoteForm(c *fiber.Ctx) noteForm {
	return noteForm{
		Title:        c.FormValue("title"),
		Content:      c.FormValue("content"),
		Category:     strings.TrimSpace(c.FormValue("category_name")),
		Tags:         c.FormValue("tags"),
		Important:    truthy(c.FormValue("is_important")),
		Status:       c.FormValue("status", string(models.NoteStatusActive)),
		Priority:     c.FormValue("priority", string(models.NotePriorityMedium)),
		ReminderDate: strings.TrimSpace(c.FormValue("reminder_date")),
	}
}

func formFromNote(note models.Note) noteForm {
	form := noteForm{
		ID:        note.ID,
		Action:    fmt.Sprintf("/notes/%d/edit", note.ID),
		Title:     note.Title,
		Important: note.IsImportant,
		Status:    string(note.Status),
		Priority:  string(note.Priority),
	}
	if note.Content != nil {
		form.Content = *note.Content
	}
	if note.Category != nil {
		form.Category = note.Category.Name
	}
	if note.ReminderDate != nil {
		form.ReminderDate = note.ReminderDate.UTC().Format(reminderLayout)
	}

	names := make([]string, 0, len(note.Tags))
	for _, t := range note.Tags {
		names = append(names, t.Name)
	}
	form.Tags = strings.Join(names, ", ")
	return form
}

func (f noteForm) content() *string {
	if strings.TrimSpace(f.Content) == "" {
		return nil
	}
	return &f.Content
}

func (f noteForm) reminder() (*time.Time, error) {
	if f.ReminderDate == "" {
		return nil, nil
	}
	t, err := models.ParseTimestamp(f.ReminderDate)
	if err != nil {
		return nil, &notes.ValidationError{Field: "reminder_date", Reason: "must be a date and time"}
	}
	return &t, nil
}

func (h *Handler) createInput(ctx context.Context, f noteForm) (models.NoteCreate, error) {
	in := models.NoteCreate{
		Title:       f.Title,
		Content:     f.content(),
		IsImportant: f.Important,
		Status:      models.NoteStatus(f.Status),
		Priority:    models.NotePriority(f.Priority),
	}

	reminder, err := f.reminder()
	if err != nil {
		return in, err
	}
	if reminder != nil {
		in.ReminderDate = &models.Timestamp{Time: *reminder}
	}

	// Resolving names creates rows, so everything is checked first.
	if err := h.svc.CheckNote(in); err != nil {
		return in, err
	}
	if err := h.svc.CheckNames(f.Category, f.Tags); err != nil {
		return in, err
	}
	if in.CategoryID, err = h.svc.EnsureCategoryName(ctx, f.Category); err != nil {
		return in, err
	}
	if in.TagIDs, err = h.svc.EnsureTagNames(ctx, f.Tags); err != nil {
		return in, err
	}
	return in, nil
}

// updateInput sets every field from the form. An unchanged reminder is
// left out so that a note whose reminder has passed can still be edited.
func (h *Handler) updateInput(ctx context.Context, f noteForm, current models.Note) (models.NoteUpdate, error) {
	in := models.NoteUpdate{
		Title:       models.Some(f.Title),
		IsImportant: models.Some(f.Important),
		Status:      models.Some(models.NoteStatus(f.Status)),
		Priority:    models.Some(models.NotePriority(f.Priority)),
	}

	if content := f.content(); content != nil {
		in.Content = models.Some(*content)
	} else {
		in.Content = models.Null[string]()
	}

	reminder, err := f.reminder()
	if err != nil {
		return in, err
	}
	switch {
	case reminder == nil:
		in.ReminderDate = models.Null[models.Timestamp]()
	case current.ReminderDate != nil && current.ReminderDate.UTC().Format(reminderLayout) == f.ReminderDate:
	default:
		in.ReminderDate = models.Some(models.Timestamp{Time: *reminder})
	}

	if err := h.svc.CheckNoteUpdate(in); err != nil {
		return in, err
	}
	if err := h.svc.CheckNames(f.Category, f.Tags); err != nil {
		return in, err
	}

	categoryID, err := h.svc.EnsureCategoryName(ctx, f.Category)
	if err != nil {
		return in, err
	}
	if categoryID != nil {
		in.CategoryID = models.Some(*categoryID)
	} else {
		in.CategoryID = models.Null[uint]()
	}

	tagIDs, err := h.svc.EnsureTagNames(ctx, f.Tags)
	if err != nil {
		return in, err
	}
	in.TagIDs = models.Some(tagIDs)
	return in, nil
}
