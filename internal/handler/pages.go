package handler

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/pagescribe/pagescribe/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names.
const (
	pageDashboard     = "dashboard.html"
	pageScrapedEdit   = "scraped_edit.html"
	pagePromptLogEdit = "prompt_log_edit.html"
)

var templateFuncs = template.FuncMap{
	"datetime": func(t time.Time) string {
		return t.UTC().Format("2006-01-02 15:04 UTC")
	},
	"truncate": func(s string, n int) string {
		runes := []rune(s)
		if len(runes) <= n {
			return s
		}
		return string(runes[:n]) + "..."
	},
}

// Pages renders the server-side HTML views.
type Pages struct {
	templates map[string]*template.Template
}

// NewPages parses the embedded templates, each page over the shared layout.
func NewPages() (*Pages, error) {
	pages := &Pages{templates: make(map[string]*template.Template)}
	for _, name := range []string{pageDashboard, pageScrapedEdit, pagePromptLogEdit} {
		t, err := template.New(name).Funcs(templateFuncs).ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		pages.templates[name] = t
	}
	return pages, nil
}

// render executes a page into a buffer first so template errors never
// produce a half-written response.
func (p *Pages) render(w http.ResponseWriter, name string, data any) error {
	t, ok := p.templates[name]
	if !ok {
		return fmt.Errorf("unknown page %s", name)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
	return nil
}

type dashboardPage struct {
	User        *model.User
	ScrapedData []*model.ScrapedRecord
	PromptLogs  []*model.PromptLog
}

type scrapedEditPage struct {
	User   *model.User
	Record *model.ScrapedRecord
}

type promptLogEditPage struct {
	User *model.User
	Log  *model.PromptLog
}
