package web

import (
	"bytes"
	"embed"
	"html/template"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/yuin/goldmark"

	"FastNotes/internal/storage"
	"FastNotes/pkg/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var mdRenderer = goldmark.New()

const reminderLayout = "2006-01-02T15:04"

type Templates struct {
	all *template.Template
}

func MustParseTemplates() *Templates {
	t := template.New("").Funcs(template.FuncMap{
		"datetime": func(t *time.Time) string {
			if t == nil {
				return ""
			}
			return t.UTC().Format("2006-01-02 15:04")
		},
		"created": func(t time.Time) string {
			return t.UTC().Format("2006-01-02 15:04")
		},
	})
	t = template.Must(t.ParseFS(templateFS, "templates/*.html"))
	return &Templates{all: t}
}

// ViewData is passed to every page. Pages only read the fields they need.
type ViewData struct {
	Title           string
	ContentTemplate string
	ContentHTML     template.HTML
	Flash           *storage.Flash

	Notes  []models.Note
	Filter listFilter
	Pager  pager

	Note *models.Note
	Body template.HTML

	Form       noteForm
	Error      string
	Statuses   []models.NoteStatus
	Priorities []models.NotePriority
	Categories []models.Category
	Tags       []models.Tag
}

// Render executes data.ContentTemplate inside the base layout.
func (t *Templates) Render(c *fiber.Ctx, status int, data ViewData) error {
	var content bytes.Buffer
	if err := t.all.ExecuteTemplate(&content, data.ContentTemplate, data); err != nil {
		return err
	}
	data.ContentHTML = template.HTML(content.String())

	var page bytes.Buffer
	if err := t.all.ExecuteTemplate(&page, "base", data); err != nil {
		return err
	}

	c.Type("html", "utf-8")
	return c.Status(status).Send(page.Bytes())
}

func renderMarkdown(src string) (template.HTML, error) {
	var b bytes.Buffer
	if err := mdRenderer.Convert([]byte(src), &b); err != nil {
		return "", err
	}
	return template.HTML(b.String()), nil
}
