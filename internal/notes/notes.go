package notes

import (
	"context"
	"time"

	"FastNotes/internal/database"
	"FastNotes/internal/database/models"
	api "FastNotes/pkg/models"
)

func (s *Service) CreateNote(ctx context.Context, in api.NoteCreate) (api.Note, error) {
	note, err := s.newNote(in)
	if err != nil {
		return api.Note{}, err
	}

	created, err := s.store.CreateNote(ctx, note, in.TagIDs)
	if err != nil {
		return api.Note{}, err
	}

	s.log.Debug().Uint("note_id", created.ID).Msg("note created")
	return toNote(created), nil
}

// CheckNote runs the CreateNote validation without writing anything.
// Category and tag ids are not resolved.
func (s *Service) CheckNote(in api.NoteCreate) error {
	_, err := s.newNote(in)
	return err
}

func (s *Service) newNote(in api.NoteCreate) (*models.Note, error) {
	if in.Status == "" {
		in.Status = api.NoteStatusActive
	}
	if in.Priority == "" {
		in.Priority = api.NotePriorityMedium
	}

	title := trimmed(&in.Title)
	content := trimmed(in.Content)
	if err := check(noteFields{
		Title:    title,
		Content:  content,
		Status:   &in.Status,
		Priority: &in.Priority,
		TagIDs:   in.TagIDs,
	}); err != nil {
		return nil, err
	}

	var reminder *time.Time
	if in.ReminderDate != nil {
		t := in.ReminderDate.UTC()
		if err := checkReminder(t, s.now()); err != nil {
			return nil, err
		}
		reminder = &t
	}

	return &models.Note{
		Title:        *title,
		Content:      content,
		IsImportant:  in.IsImportant,
		Status:       in.Status,
		Priority:     in.Priority,
		ReminderDate: reminder,
		CategoryID:   in.CategoryID,
	}, nil
}

func (s *Service) GetNote(ctx context.Context, id uint) (api.Note, error) {
	note, err := s.store.GetNote(ctx, id)
	if err != nil {
		return api.Note{}, err
	}
	return toNote(note), nil
}

// UpdateNote applies only the fields set in in. An explicit null clears
// content, reminder_date, category_id and tag_ids; it is rejected for the
// other fields.
func (s *Service) UpdateNote(ctx context.Context, id uint, in api.NoteUpdate) (api.Note, error) {
	changes, err := s.noteChanges(in)
	if err != nil {
		return api.Note{}, err
	}

	note, err := s.store.UpdateNote(ctx, id, changes)
	if err != nil {
		return api.Note{}, err
	}
	return toNote(note), nil
}

// CheckNoteUpdate runs the UpdateNote validation without writing anything.
func (s *Service) CheckNoteUpdate(in api.NoteUpdate) error {
	_, err := s.noteChanges(in)
	return err
}

func (s *Service) noteChanges(in api.NoteUpdate) (database.NoteChanges, error) {
	changes := database.NoteChanges{Columns: map[string]any{}}
	var fields noteFields

	if in.Title.Set {
		if in.Title.Null {
			return changes, invalid("title", "must not be null")
		}
		fields.Title = trimmed(&in.Title.Value)
		changes.Columns["title"] = *fields.Title
	}

	if in.Content.Set {
		if in.Content.Null {
			changes.Columns["content"] = nil
		} else {
			fields.Content = trimmed(&in.Content.Value)
			changes.Columns["content"] = *fields.Content
		}
	}

	if in.IsImportant.Set {
		if in.IsImportant.Null {
			return changes, invalid("is_important", "must not be null")
		}
		changes.Columns["is_important"] = in.IsImportant.Value
	}

	if in.Status.Set {
		if in.Status.Null {
			return changes, invalid("status", "must not be null")
		}
		fields.Status = &in.Status.Value
		changes.Columns["status"] = string(in.Status.Value)
	}

	if in.Priority.Set {
		if in.Priority.Null {
			return changes, invalid("priority", "must not be null")
		}
		fields.Priority = &in.Priority.Value
		changes.Columns["priority"] = string(in.Priority.Value)
	}

	if in.ReminderDate.Set {
		if in.ReminderDate.Null {
			changes.Columns["reminder_date"] = nil
		} else {
			t := in.ReminderDate.Value.UTC()
			if err := checkReminder(t, s.now()); err != nil {
				return changes, err
			}
			changes.Columns["reminder_date"] = t
		}
	}

	if in.CategoryID.Set {
		if in.CategoryID.Null {
			changes.Columns["category_id"] = nil
		} else {
			changes.Columns["category_id"] = in.CategoryID.Value
		}
	}

	if in.TagIDs.Set {
		changes.ReplaceTags = true
		if !in.TagIDs.Null {
			fields.TagIDs = in.TagIDs.Value
			changes.TagIDs = in.TagIDs.Value
		}
	}

	if err := check(fields); err != nil {
		return changes, err
	}
	return changes, nil
}

// DeleteNote returns database.ErrNotFound when there was no such note.
func (s *Service) DeleteNote(ctx context.Context, id uint) error {
	deleted, err := s.store.DeleteNote(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return database.ErrNotFound
	}

	s.log.Debug().Uint("note_id", id).Msg("note deleted")
	return nil
}

// ListNotes validates q, applies the pagination defaults and returns one
// page with the total for the whole filter.
func (s *Service) ListNotes(ctx context.Context, q api.NoteQuery) (api.NoteList, error) {
	f, err := s.noteFilter(q)
	if err != nil {
		return api.NoteList{}, err
	}

	items, total, err := s.store.ListNotesWithTotal(ctx, f)
	if err != nil {
		return api.NoteList{}, err
	}

	list := api.NoteList{
		Items: make([]api.Note, 0, len(items)),
		Total: total,
		Skip:  f.Skip,
		Limit: f.Limit,
	}
	for i := range items {
		list.Items = append(list.Items, toNote(&items[i]))
	}
	return list, nil
}

func (s *Service) noteFilter(q api.NoteQuery) (database.NoteFilter, error) {
	f := database.NoteFilter{
		CategoryID: q.CategoryID,
		TagID:      q.TagID,
		Important:  q.Important,
		Search:     q.Search,
		Skip:       q.Skip,
		Limit:      q.Limit,
	}

	if q.Status != "" {
		f.Status = api.NoteStatus(q.Status)
		if !f.Status.Valid() {
			return f, invalid("status", "must be one of: draft, active, done, postponed")
		}
	}
	if q.Priority != "" {
		f.Priority = api.NotePriority(q.Priority)
		if !f.Priority.Valid() {
			return f, invalid("priority", "must be one of: low, medium, high")
		}
	}
	if q.Before != nil {
		before := q.Before.UTC()
		f.Before = &before
	}

	if f.Skip < 0 {
		return f, invalid("skip", "must not be negative")
	}
	switch {
	case f.Limit < 0:
		return f, invalid("limit", "must not be negative")
	case f.Limit == 0:
		f.Limit = s.pagination.DefaultLimit
	case f.Limit > s.pagination.MaxLimit:
		f.Limit = s.pagination.MaxLimit
	}
	return f, nil
}
