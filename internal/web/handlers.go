package web

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"FastNotes/internal/api"
	"FastNotes/internal/database"
	"FastNotes/internal/notes"
	"FastNotes/internal/storage"
	"FastNotes/pkg/models"
)

// NoteService is the JSON service plus the dry-run checks and free-text
// resolvers the forms need. *notes.Service satisfies it.
type NoteService interface {
	api.NoteService
	CheckNote(in models.NoteCreate) error
	CheckNoteUpdate(in models.NoteUpdate) error
	CheckNames(category, tagsCSV string) error
	EnsureCategoryName(ctx context.Context, name string) (*uint, error)
	EnsureTagNames(ctx context.Context, csv string) ([]uint, error)
}

var _ NoteService = (*notes.Service)(nil)

const flashCookie = "flash"

type Handler struct {
	svc     NoteService
	flashes storage.FlashStorage
	tpl     *Templates
	log     zerolog.Logger
}

func NewHandler(svc NoteService, flashes storage.FlashStorage, log zerolog.Logger) *Handler {
	return &Handler{
		svc:     svc,
		flashes: flashes,
		tpl:     MustParseTemplates(),
		log:     log.With().Str("component", "web").Logger(),
	}
}

func (h *Handler) Register(r fiber.Router) {
	r.Get("/notes", h.List)
	r.Get("/notes/create", h.CreateForm)
	r.Post("/notes/create", h.Create)
	r.Get("/notes/:id", h.View)
	r.Get("/notes/:id/edit", h.EditForm)
	r.Post("/notes/:id/edit", h.Edit)
	r.Post("/notes/:id/delete", h.Delete)
}

type listFilter struct {
	Status    string
	Important bool
	Search    string
}

func (f listFilter) url(skip int) string {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.Important {
		q.Set("important", "true")
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if skip > 0 {
		q.Set("skip", strconv.Itoa(skip))
	}
	if len(q) == 0 {
		return "/notes"
	}
	return "/notes?" + q.Encode()
}

// pager describes the page shown by the list. Positions are 1-based.
type pager struct {
	From, To int
	Total    int64
	Prev     string
	Next     string
}

func newPager(f listFilter, list models.NoteList) pager {
	p := pager{Total: list.Total}
	if len(list.Items) > 0 {
		p.From = list.Skip + 1
		p.To = list.Skip + len(list.Items)
	}
	if list.Skip > 0 {
		p.Prev = f.url(max(list.Skip-list.Limit, 0))
	}
	if int64(p.To) < list.Total && len(list.Items) > 0 {
		p.Next = f.url(p.To)
	}
	return p
}

func (h *Handler) List(c *fiber.Ctx) error {
	filter := listFilter{
		Status:    strings.TrimSpace(c.Query("status")),
		Important: truthy(c.Query("important")),
		Search:    strings.TrimSpace(c.Query("search")),
	}
	if !models.NoteStatus(filter.Status).Valid() {
		filter.Status = ""
	}
	skip := max(c.QueryInt("skip"), 0)

	// Limit 0 takes the configured page size.
	list, err := h.svc.ListNotes(c.UserContext(), models.NoteQuery{
		Status:    filter.Status,
		Important: filter.Important,
		Search:    filter.Search,
		Skip:      skip,
	})
	if err != nil {
		return err
	}

	return h.tpl.Render(c, fiber.StatusOK, ViewData{
		Title:           "Notes",
		ContentTemplate: "index",
		Flash:           h.popFlash(c),
		Notes:           list.Items,
		Filter:          filter,
		Pager:           newPager(filter, list),
		Statuses:        models.NoteStatuses,
	})
}

func (h *Handler) View(c *fiber.Ctx) error {
	note, ok, err := h.loadNote(c)
	if !ok {
		return err
	}

	body := ""
	if note.Content != nil {
		body = *note.Content
	}
	html, err := renderMarkdown(body)
	if err != nil {
		return err
	}

	return h.tpl.Render(c, fiber.StatusOK, ViewData{
		Title:           note.Title,
		ContentTemplate: "note_view",
		Flash:           h.popFlash(c),
		Note:            &note,
		Body:            html,
	})
}

func (h *Handler) CreateForm(c *fiber.Ctx) error {
	return h.renderForm(c, fiber.StatusOK, noteForm{
		Action:   "/notes/create",
		Status:   string(models.NoteStatusActive),
		Priority: string(models.NotePriorityMedium),
	}, "")
}

func (h *Handler) Create(c *fiber.Ctx) error {
	form := parseNoteForm(c)
	form.Action = "/notes/create"

	in, err := h.createInput(c.UserContext(), form)
	if err == nil {
		var note models.Note
		note, err = h.svc.CreateNote(c.UserContext(), in)
		if err == nil {
			h.setFlash(c, storage.FlashSuccess, "Note created")
			return c.Redirect(fmt.Sprintf("/notes/%d", note.ID), fiber.StatusSeeOther)
		}
	}
	return h.formError(c, form, err)
}

func (h *Handler) EditForm(c *fiber.Ctx) error {
	note, ok, err := h.loadNote(c)
	if !ok {
		return err
	}
	return h.renderForm(c, fiber.StatusOK, formFromNote(note), "")
}

func (h *Handler) Edit(c *fiber.Ctx) error {
	note, ok, err := h.loadNote(c)
	if !ok {
		return err
	}

	form := parseNoteForm(c)
	form.ID = note.ID
	form.Action = fmt.Sprintf("/notes/%d/edit", note.ID)

	in, err := h.updateInput(c.UserContext(), form, note)
	if err == nil {
		_, err = h.svc.UpdateNote(c.UserContext(), note.ID, in)
		if err == nil {
			h.setFlash(c, storage.FlashSuccess, "Note updated")
			return c.Redirect(fmt.Sprintf("/notes/%d", note.ID), fiber.StatusSeeOther)
		}
	}
	return h.formError(c, form, err)
}

func (h *Handler) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		err = database.ErrNotFound
	} else {
		err = h.svc.DeleteNote(c.UserContext(), uint(id))
	}

	switch {
	case err == nil:
		h.log.Info().Uint64("note_id", id).Msg("note deleted")
		h.setFlash(c, storage.FlashSuccess, "Note deleted")
	case errors.Is(err, database.ErrNotFound):
		h.setFlash(c, storage.FlashError, "Note not found")
	default:
		return err
	}
	return c.Redirect("/notes", fiber.StatusSeeOther)
}

// loadNote fetches the note named by :id. A missing note redirects to the
// list with a flash; ok is false whenever the response is already decided.
func (h *Handler) loadNote(c *fiber.Ctx) (models.Note, bool, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		h.setFlash(c, storage.FlashError, "Note not found")
		return models.Note{}, false, c.Redirect("/notes", fiber.StatusSeeOther)
	}

	note, err := h.svc.GetNote(c.UserContext(), uint(id))
	if errors.Is(err, database.ErrNotFound) {
		h.setFlash(c, storage.FlashError, "Note not found")
		return models.Note{}, false, c.Redirect("/notes", fiber.StatusSeeOther)
	}
	if err != nil {
		return models.Note{}, false, err
	}
	return note, true, nil
}

func (h *Handler) renderForm(c *fiber.Ctx, status int, form noteForm, message string) error {
	ctx := c.UserContext()
	categories, err := h.svc.ListCategories(ctx)
	if err != nil {
		return err
	}
	tags, err := h.svc.ListTags(ctx)
	if err != nil {
		return err
	}

	title := "New note"
	if form.ID != 0 {
		title = "Edit note"
	}
	return h.tpl.Render(c, status, ViewData{
		Title:           title,
		ContentTemplate: "note_form",
		Flash:           h.popFlash(c),
		Form:            form,
		Error:           message,
		Statuses:        models.NoteStatuses,
		Priorities:      models.NotePriorities,
		Categories:      categories,
		Tags:            tags,
	})
}

// formError re-renders the form for caller errors and hands anything else
// to the app error handler.
func (h *Handler) formError(c *fiber.Ctx, form noteForm, err error) error {
	status, detail := api.Status(err)
	if status != fiber.StatusBadRequest {
		return err
	}
	return h.renderForm(c, status, form, detail)
}

func (h *Handler) setFlash(c *fiber.Ctx, kind, message string) {
	key := h.flashes.Put(storage.Flash{Kind: kind, Message: message})
	c.Cookie(&fiber.Cookie{
		Name:     flashCookie,
		Value:    key,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(storage.DefaultTTL),
	})
}

func (h *Handler) popFlash(c *fiber.Ctx) *storage.Flash {
	key := c.Cookies(flashCookie)
	if key == "" {
		return nil
	}
	c.ClearCookie(flashCookie)

	flash, ok := h.flashes.Pop(key)
	if !ok {
		return nil
	}
	return &flash
}
