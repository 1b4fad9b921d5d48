package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FastNotes/internal/api/middleware"
	"FastNotes/internal/config"
	"FastNotes/internal/database"
	"FastNotes/internal/notes"
	"FastNotes/internal/storage"
	"FastNotes/pkg/models"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		App: config.App{Name: "FastNotes test"},
		HTTP: config.HTTP{
			ReadTimeout:        time.Second,
			WriteTimeout:       time.Second,
			CORSAllowedOrigins: []string{"*"},
			RateLimitRPS:       1000,
			RateLimitBurst:     1000,
		},
		Database: config.Database{
			Driver:       "sqlite",
			Name:         filepath.Join(t.TempDir(), "notes.db"),
			MaxOpenConns: 1,
		},
		Pagination: config.Pagination{DefaultLimit: 50, MaxLimit: 200},
	}
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	return newTestAppWithConfig(t, testConfig(t))
}

func newTestAppWithConfig(t *testing.T, cfg *config.Config) *fiber.App {
	t.Helper()
	log := zerolog.Nop()

	db, err := database.Open(context.Background(), cfg.Database, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, database.AutoMigrate(db))

	flashes, err := storage.NewMemoryStorage(10, time.Minute)
	require.NoError(t, err)

	svc := notes.NewService(database.NewStore(db, log), cfg.Pagination, log)
	return New(cfg, svc, flashes, log)
}

func do(t *testing.T, app *fiber.App, method, path, body string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

type detail struct {
	Detail string `json:"detail"`
}

func TestNoteLifecycle(t *testing.T) {
	app := newTestApp(t)

	// Arrange
	resp := do(t, app, http.MethodPost, "/api/categories", `{"name":"Work"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	category := decodeBody[models.Category](t, resp)
	assert.Equal(t, models.Category{ID: 1, Name: "Work"}, category)

	// Act: create
	resp = do(t, app, http.MethodPost, "/api/notes", `{"title":"Ship it","category_id":1}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody[models.Note](t, resp)

	assert.Equal(t, "Ship it", created.Title)
	assert.Equal(t, models.NoteStatusActive, created.Status)
	assert.Equal(t, models.NotePriorityMedium, created.Priority)
	assert.False(t, created.IsImportant)
	assert.Empty(t, created.Tags)
	require.NotNil(t, created.Category)
	assert.Equal(t, "Work", created.Category.Name)

	// Act: partial update
	resp = do(t, app, http.MethodPut, "/api/notes/1", `{"is_important":true}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decodeBody[models.Note](t, resp)
	assert.True(t, updated.IsImportant)
	assert.Equal(t, "Ship it", updated.Title)
	assert.Equal(t, created.CategoryID, updated.CategoryID)
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

	// Act: filter
	resp = do(t, app, http.MethodGet, "/api/notes?important=true", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decodeBody[models.NoteList](t, resp)
	require.Len(t, list.Items, 1)
	assert.Equal(t, created.ID, list.Items[0].ID)
	assert.EqualValues(t, 1, list.Total)

	// Act: delete
	resp = do(t, app, http.MethodDelete, "/api/notes/1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	message := decodeBody[map[string]string](t, resp)
	assert.Equal(t, "Note deleted successfully", message["message"])

	// Assert
	resp = do(t, app, http.MethodGet, "/api/notes/1", "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Note not found", decodeBody[detail](t, resp).Detail)

	resp = do(t, app, http.MethodDelete, "/api/notes/1", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPIErrors(t *testing.T) {
	app := newTestApp(t)

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		detail string
	}{
		{"empty title", http.MethodPost, "/api/notes", `{"title":"  "}`, http.StatusBadRequest, "title: must not be empty"},
		{"unknown tag", http.MethodPost, "/api/notes", `{"title":"x","tag_ids":[99]}`, http.StatusBadRequest, "tag_ids: unknown id(s) 99"},
		{"unknown category", http.MethodPost, "/api/notes", `{"title":"x","category_id":5}`, http.StatusBadRequest, "category_id: unknown id(s) 5"},
		{"bad status", http.MethodPost, "/api/notes", `{"title":"x","status":"archived"}`, http.StatusBadRequest, "status: must be one of: draft, active, done, postponed"},
		{"missing body", http.MethodPost, "/api/categories", "", http.StatusBadRequest, "request body is required"},
		{"update missing note", http.MethodPatch, "/api/notes/42", `{"title":"x"}`, http.StatusNotFound, "Note not found"},
		{"null title", http.MethodPatch, "/api/notes/42", `{"title":null}`, http.StatusBadRequest, "title: must not be null"},
		{"non-numeric id", http.MethodGet, "/api/notes/abc", "", http.StatusBadRequest, "id: must be a positive integer"},
		{"negative limit", http.MethodGet, "/api/notes?limit=-1", "", http.StatusBadRequest, "limit: must not be negative"},
		{"bad before", http.MethodGet, "/api/notes?before=tomorrow", "", http.StatusBadRequest, "before: must be a timestamp"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := do(t, app, tc.method, tc.path, tc.body)

			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, tc.detail, decodeBody[detail](t, resp).Detail)
		})
	}
}

func TestListPagination(t *testing.T) {
	app := newTestApp(t)
	for _, title := range []string{"one", "two", "three"} {
		resp := do(t, app, http.MethodPost, "/api/notes", `{"title":"`+title+`"}`)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp := do(t, app, http.MethodGet, "/api/notes?skip=1&limit=1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decodeBody[models.NoteList](t, resp)

	assert.EqualValues(t, 3, list.Total)
	assert.Equal(t, 1, list.Skip)
	assert.Equal(t, 1, list.Limit)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "two", list.Items[0].Title)
}

func TestRootAndHealth(t *testing.T) {
	app := newTestApp(t)

	resp := do(t, app, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, decodeBody[map[string]string](t, resp)["message"], "/notes")

	resp = do(t, app, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decodeBody[map[string]string](t, resp)["status"])
}

func TestRequestIDEcho(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middleware.HeaderRequestID, "abc-123")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", resp.Header.Get(middleware.HeaderRequestID))

	resp = do(t, app, http.MethodGet, "/", "")
	assert.NotEmpty(t, resp.Header.Get(middleware.HeaderRequestID))
}

func postForm(t *testing.T, app *fiber.App, path string, form url.Values) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func getWithCookies(t *testing.T, app *fiber.App, path string, cookies []*http.Cookie) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func readAll(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestWebCreateFlow(t *testing.T) {
	app := newTestApp(t)

	// Arrange
	form := url.Values{
		"title":         {"Groceries"},
		"content":       {"- **milk**\n- eggs"},
		"category_name": {"Home"},
		"tags":          {"shop, weekly, shop"},
		"is_important":  {"on"},
	}

	// Act
	resp := postForm(t, app, "/notes/create", form)

	// Assert
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/notes/1", resp.Header.Get(fiber.HeaderLocation))

	page := readAll(t, getWithCookies(t, app, "/notes/1", resp.Cookies()))
	assert.Contains(t, page, "Note created")
	assert.Contains(t, page, "Groceries")
	assert.Contains(t, page, "<strong>milk</strong>")
	assert.Contains(t, page, "Home")

	apiResp := do(t, app, http.MethodGet, "/api/notes/1", "")
	note := decodeBody[models.Note](t, apiResp)
	assert.True(t, note.IsImportant)
	require.Len(t, note.Tags, 2)
	assert.Equal(t, "shop", note.Tags[0].Name)
	assert.Equal(t, "weekly", note.Tags[1].Name)

	page = readAll(t, getWithCookies(t, app, "/notes/1", nil))
	assert.NotContains(t, page, "Note created", "flash is shown once")
}

func TestWebFormValidation(t *testing.T) {
	app := newTestApp(t)

	resp := postForm(t, app, "/notes/create", url.Values{"title": {""}, "content": {"kept"}})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	page := readAll(t, resp)
	assert.Contains(t, page, "title: must not be empty")
	assert.Contains(t, page, "kept", "typed input is shown again")
}

func TestWebEditAndDelete(t *testing.T) {
	app := newTestApp(t)
	resp := do(t, app, http.MethodPost, "/api/notes", `{"title":"Draft","status":"draft"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = postForm(t, app, "/notes/1/edit", url.Values{
		"title":    {"Final"},
		"status":   {"done"},
		"priority": {"high"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	note := decodeBody[models.Note](t, do(t, app, http.MethodGet, "/api/notes/1", ""))
	assert.Equal(t, "Final", note.Title)
	assert.Equal(t, models.NoteStatusDone, note.Status)
	assert.Equal(t, models.NotePriorityHigh, note.Priority)

	resp = postForm(t, app, "/notes/1/delete", url.Values{})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/notes", resp.Header.Get(fiber.HeaderLocation))

	page := readAll(t, getWithCookies(t, app, "/notes", resp.Cookies()))
	assert.Contains(t, page, "Note deleted")
	assert.Contains(t, page, "No notes found.")

	resp = getWithCookies(t, app, "/notes/1", nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode, "missing note redirects to the list")
}

func TestWebListFilters(t *testing.T) {
	app := newTestApp(t)
	for _, body := range []string{
		`{"title":"Pay rent","is_important":true}`,
		`{"title":"Read book"}`,
	} {
		require.Equal(t, http.StatusCreated, do(t, app, http.MethodPost, "/api/notes", body).StatusCode)
	}

	page := readAll(t, getWithCookies(t, app, "/notes?important=on", nil))
	assert.Contains(t, page, "Pay rent")
	assert.NotContains(t, page, "Read book")

	page = readAll(t, getWithCookies(t, app, "/notes?search=BOOK", nil))
	assert.Contains(t, page, "Read book")
	assert.NotContains(t, page, "Pay rent")
}

func TestWebRejectedFormCreatesNoNamedRows(t *testing.T) {
	app := newTestApp(t)
	resp := do(t, app, http.MethodPost, "/api/notes", `{"title":"Existing"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	cases := []struct {
		name string
		path string
		form url.Values
	}{
		{"create with blank title", "/notes/create", url.Values{
			"title": {"   "}, "category_name": {"Ghost"}, "tags": {"phantom, spook"},
		}},
		{"create with bad reminder", "/notes/create", url.Values{
			"title": {"ok"}, "reminder_date": {"2000-01-01T00:00"}, "category_name": {"Ghost"}, "tags": {"phantom"},
		}},
		{"create with one tag too long", "/notes/create", url.Values{
			"title": {"ok"}, "category_name": {"Ghost"}, "tags": {"phantom, " + strings.Repeat("x", 51)},
		}},
		{"edit with blank title", "/notes/1/edit", url.Values{
			"title": {""}, "category_name": {"Ghost"}, "tags": {"phantom"},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postForm(t, app, tc.path, tc.form)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)

			categories := decodeBody[[]models.Category](t, do(t, app, http.MethodGet, "/api/categories", ""))
			tags := decodeBody[[]models.Tag](t, do(t, app, http.MethodGet, "/api/tags", ""))
			assert.Empty(t, categories)
			assert.Empty(t, tags)
		})
	}
}

func TestWebListPages(t *testing.T) {
	cfg := testConfig(t)
	cfg.Pagination = config.Pagination{DefaultLimit: 2, MaxLimit: 2}
	app := newTestAppWithConfig(t, cfg)
	for _, title := range []string{"first", "second", "third"} {
		require.Equal(t, http.StatusCreated, do(t, app, http.MethodPost, "/api/notes", `{"title":"`+title+`"}`).StatusCode)
	}

	page := readAll(t, getWithCookies(t, app, "/notes", nil))
	assert.Contains(t, page, "third")
	assert.Contains(t, page, "second")
	assert.NotContains(t, page, "first")
	assert.Contains(t, page, "Notes 1 to 2 of 3")
	assert.Contains(t, page, `href="/notes?skip=2"`)

	page = readAll(t, getWithCookies(t, app, "/notes?skip=2", nil))
	assert.Contains(t, page, "first")
	assert.NotContains(t, page, "third")
	assert.Contains(t, page, "Notes 3 to 3 of 3")
	assert.Contains(t, page, `href="/notes">previous`)
	assert.NotContains(t, page, ">next<")
}
