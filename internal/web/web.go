// Package web holds the embedded page templates and static assets.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/AnshRaj112/serenify-journal/internal/records"
	"github.com/AnshRaj112/serenify-journal/internal/services"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Page is what every template receives.
type Page struct {
	Title    string
	Active   string // nav item to highlight
	Email    string
	LoggedIn bool
	Flashes  []services.Flash
	Data     any
}

// Views holds one parsed template set per page, each combined with the layout.
type Views struct {
	pages map[string]*template.Template
}

func Funcs() template.FuncMap {
	return template.FuncMap{
		"menuClass": func(active, name string) string {
			if active == name {
				return "active"
			}
			return ""
		},
		"formatTimestamp": func(ts string) string {
			t := records.ParseTimestamp(ts)
			if t.IsZero() {
				return ts
			}
			return t.Format("Monday, January 2, 2006 · 15:04")
		},
		"formatDate": func(ts string) string {
			t := records.ParseTimestamp(ts)
			if t.IsZero() {
				return ts
			}
			return t.Format("Jan 2, 2006")
		},
		"year": func() int { return time.Now().Year() },
	}
}

// Parse loads the embedded templates.
func Parse() (*Views, error) {
	return ParseFS(templateFS, "templates")
}

func ParseFS(fsys fs.FS, dir string) (*Views, error) {
	layout, err := fs.ReadFile(fsys, path.Join(dir, "layout.html"))
	if err != nil {
		return nil, fmt.Errorf("web: read layout: %w", err)
	}

	files, err := fs.Glob(fsys, path.Join(dir, "*.html"))
	if err != nil {
		return nil, err
	}

	v := &Views{pages: make(map[string]*template.Template)}
	for _, f := range files {
		name := strings.TrimSuffix(path.Base(f), ".html")
		if name == "layout" {
			continue
		}
		body, err := fs.ReadFile(fsys, f)
		if err != nil {
			return nil, err
		}
		t, err := template.New(name).Funcs(Funcs()).Parse(string(layout))
		if err != nil {
			return nil, fmt.Errorf("web: parse layout for %s: %w", name, err)
		}
		if _, err := t.Parse(string(body)); err != nil {
			return nil, fmt.Errorf("web: parse %s: %w", name, err)
		}
		v.pages[name] = t
	}
	return v, nil
}

// Render executes page into a buffer first so a template error never leaves a
// half-written response.
func (v *Views) Render(w http.ResponseWriter, status int, name string, p Page) error {
	t, ok := v.pages[name]
	if !ok {
		return fmt.Errorf("web: unknown page %q", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", p); err != nil {
		return fmt.Errorf("web: render %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

func (v *Views) Has(name string) bool {
	_, ok := v.pages[name]
	return ok
}

// Static serves the embedded assets; mount it under /static/.
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}
