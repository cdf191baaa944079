package handler

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"sync"
)

// Renderer manages template parsing and rendering with isolated template
// sets. It supports two layouts:
//   - "auth" layout for the login page
//   - "app" layout for authenticated report pages
//
// Templates are organized as:
//   - layouts/auth.html, layouts/app.html - base layouts
//   - components/*.html - reusable fragments (shared across layouts)
//   - pages/auth/*.html - auth pages (use auth layout)
//   - pages/*.html - app pages (use app layout)
type Renderer struct {
	templates map[string]*template.Template
	fsys      fs.FS
	reload    bool
	logger    *slog.Logger

	mu sync.RWMutex
}

// NewRendererFromFS creates a renderer from a template filesystem rooted at
// the directory containing layouts/, components/ and pages/.
func NewRendererFromFS(fsys fs.FS, logger *slog.Logger) (*Renderer, error) {
	r := &Renderer{
		fsys:   fsys,
		logger: logger,
	}
	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

// EnableDevReload re-parses every template on each render so edits show up
// without a restart. Development only.
func (r *Renderer) EnableDevReload() {
	r.reload = true
}

func (r *Renderer) load() error {
	fsys := r.fsys
	templates := make(map[string]*template.Template)

	components, err := fs.Glob(fsys, "components/*.html")
	if err != nil {
		return fmt.Errorf("glob components: %w", err)
	}

	parseLayout := func(name string) (*template.Template, error) {
		files := append([]string{path.Join("layouts", name+".html")}, components...)
		t, err := template.New(name).Funcs(TemplateFuncs()).ParseFS(fsys, files...)
		if err != nil {
			return nil, fmt.Errorf("parse %s layout: %w", name, err)
		}
		return t, nil
	}

	authLayout, err := parseLayout("auth")
	if err != nil {
		return err
	}
	appLayout, err := parseLayout("app")
	if err != nil {
		return err
	}

	addPages := func(layout *template.Template, layoutName, pattern, prefix string) error {
		pages, err := fs.Glob(fsys, pattern)
		if err != nil {
			return fmt.Errorf("glob %s: %w", pattern, err)
		}
		for _, page := range pages {
			t, err := layout.Clone()
			if err != nil {
				return fmt.Errorf("clone %s layout: %w", layoutName, err)
			}
			if t, err = t.ParseFS(fsys, page); err != nil {
				return fmt.Errorf("parse page %s: %w", page, err)
			}
			name := strings.TrimSuffix(path.Base(page), ".html")
			templates[prefix+name] = t
		}
		return nil
	}

	if err := addPages(authLayout, "auth", "pages/auth/*.html", "auth/"); err != nil {
		return err
	}
	if err := addPages(appLayout, "app", "pages/*.html", ""); err != nil {
		return err
	}

	r.mu.Lock()
	r.templates = templates
	r.mu.Unlock()

	r.logger.Info("templates loaded", "count", len(templates))
	return nil
}

// Render renders a template to an io.Writer. The executed template is the
// layout the page was parsed into.
func (r *Renderer) Render(w io.Writer, name string, data interface{}) error {
	if r.reload {
		if err := r.load(); err != nil {
			return err
		}
	}

	r.mu.RLock()
	tmpl, ok := r.templates[name]
	r.mu.RUnlock()

	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	return tmpl.ExecuteTemplate(w, layoutFor(name), data)
}

// RenderHTTP renders a template directly to an http.ResponseWriter,
// buffering first so a template error never produces a half-written page.
func (r *Renderer) RenderHTTP(w http.ResponseWriter, name string, data interface{}) {
	var buf bytes.Buffer
	if err := r.Render(&buf, name, data); err != nil {
		r.logger.Error("template execution failed", "name", name, "error", err)
		http.Error(w, "Template execution failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

func layoutFor(name string) string {
	if strings.HasPrefix(name, "auth/") {
		return "auth"
	}
	return "app"
}
