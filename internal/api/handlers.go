package api

import (
	"context"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"FastNotes/internal/notes"
	"FastNotes/pkg/models"
)

// NoteService is what the JSON handlers call. *notes.Service satisfies it.
type NoteService interface {
	CreateCategory(ctx context.Context, in models.CategoryCreate) (models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateTag(ctx context.Context, in models.TagCreate) (models.Tag, error)
	ListTags(ctx context.Context) ([]models.Tag, error)

	CreateNote(ctx context.Context, in models.NoteCreate) (models.Note, error)
	GetNote(ctx context.Context, id uint) (models.Note, error)
	UpdateNote(ctx context.Context, id uint, in models.NoteUpdate) (models.Note, error)
	DeleteNote(ctx context.Context, id uint) error
	ListNotes(ctx context.Context, q models.NoteQuery) (models.NoteList, error)
}

var _ NoteService = (*notes.Service)(nil)

type Handler struct {
	svc NoteService
	log zerolog.Logger
}

func NewHandler(svc NoteService, log zerolog.Logger) *Handler {
	return &Handler{svc: svc, log: log.With().Str("component", "api").Logger()}
}

// Register mounts the JSON routes on r.
func (h *Handler) Register(r fiber.Router) {
	r.Post("/categories", h.CreateCategory)
	r.Get("/categories", h.ListCategories)

	r.Post("/tags", h.CreateTag)
	r.Get("/tags", h.ListTags)

	r.Post("/notes", h.CreateNote)
	r.Get("/notes", h.ListNotes)
	r.Get("/notes/:id", h.GetNote)
	r.Put("/notes/:id", h.UpdateNote)
	r.Patch("/notes/:id", h.UpdateNote)
	r.Delete("/notes/:id", h.DeleteNote)
}

func (h *Handler) CreateCategory(c *fiber.Ctx) error {
	var in models.CategoryCreate
	if err := decode(c, &in); err != nil {
		return err
	}

	category, err := h.svc.CreateCategory(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.JSON(category)
}

func (h *Handler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.svc.ListCategories(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(categories)
}

func (h *Handler) CreateTag(c *fiber.Ctx) error {
	var in models.TagCreate
	if err := decode(c, &in); err != nil {
		return err
	}

	tag, err := h.svc.CreateTag(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.JSON(tag)
}

func (h *Handler) ListTags(c *fiber.Ctx) error {
	tags, err := h.svc.ListTags(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(tags)
}

func (h *Handler) CreateNote(c *fiber.Ctx) error {
	var in models.NoteCreate
	if err := decode(c, &in); err != nil {
		return err
	}

	note, err := h.svc.CreateNote(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(note)
}

func (h *Handler) ListNotes(c *fiber.Ctx) error {
	q, err := parseNoteQuery(c)
	if err != nil {
		return err
	}

	list, err := h.svc.ListNotes(c.UserContext(), q)
	if err != nil {
		return err
	}
	return c.JSON(list)
}

func (h *Handler) GetNote(c *fiber.Ctx) error {
	id, err := noteID(c)
	if err != nil {
		return err
	}

	note, err := h.svc.GetNote(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(note)
}

func (h *Handler) UpdateNote(c *fiber.Ctx) error {
	id, err := noteID(c)
	if err != nil {
		return err
	}

	var in models.NoteUpdate
	if err := decode(c, &in); err != nil {
		return err
	}

	note, err := h.svc.UpdateNote(c.UserContext(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(note)
}

func (h *Handler) DeleteNote(c *fiber.Ctx) error {
	id, err := noteID(c)
	if err != nil {
		return err
	}

	if err := h.svc.DeleteNote(c.UserContext(), id); err != nil {
		return err
	}

	h.log.Info().Uint("note_id", id).Msg("note deleted")
	return c.JSON(fiber.Map{"message": "Note deleted successfully"})
}

// decode reads a JSON body regardless of the request's Content-Type.
func decode(c *fiber.Ctx, v any) error {
	if len(c.Body()) == 0 {
		return &notes.ValidationError{Reason: "request body is required"}
	}
	if err := c.App().Config().JSONDecoder(c.Body(), v); err != nil {
		return &notes.ValidationError{Reason: "invalid JSON body: " + err.Error()}
	}
	return nil
}

func noteID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, &notes.ValidationError{Field: "id", Reason: "must be a positive integer"}
	}
	return uint(id), nil
}

func parseNoteQuery(c *fiber.Ctx) (models.NoteQuery, error) {
	q := models.NoteQuery{
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
		Search:   strings.TrimSpace(c.Query("search")),
	}

	var err error
	if q.CategoryID, err = optionalID(c, "category_id"); err != nil {
		return q, err
	}
	if q.TagID, err = optionalID(c, "tag_id"); err != nil {
		return q, err
	}

	if raw := c.Query("important"); raw != "" {
		important, err := strconv.ParseBool(raw)
		if err != nil {
			return q, &notes.ValidationError{Field: "important", Reason: "must be a boolean"}
		}
		q.Important = important
	}

	if raw := c.Query("before"); raw != "" {
		before, err := models.ParseTimestamp(raw)
		if err != nil {
			return q, &notes.ValidationError{Field: "before", Reason: "must be a timestamp"}
		}
		q.Before = &before
	}

	if q.Skip, err = queryInt(c, "skip"); err != nil {
		return q, err
	}
	if q.Limit, err = queryInt(c, "limit"); err != nil {
		return q, err
	}
	return q, nil
}

func optionalID(c *fiber.Ctx, key string) (*uint, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, &notes.ValidationError{Field: key, Reason: "must be a positive integer"}
	}
	v := uint(id)
	return &v, nil
}

func queryInt(c *fiber.Ctx, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &notes.ValidationError{Field: key, Reason: "must be an integer"}
	}
	if n < 0 {
		return 0, &notes.ValidationError{Field: key, Reason: "must not be negative"}
	}
	return n, nil
}
