// Package view renders the HTML pages. Templates are embedded so the binary
// is self-contained; the engine plugs into Fiber's Views interface.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Engine implements fiber.Views over html/template.
type Engine struct {
	tpl *template.Template
}

// funcs are the helpers available to every template.
var funcs = template.FuncMap{
	"date": func(t time.Time) string {
		return t.Format("02/01/2006")
	},
	"datePtr": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format("02/01/2006")
	},
	"truncate": func(s string, n int) string {
		runes := []rune(s)
		if len(runes) <= n {
			return s
		}
		return string(runes[:n]) + "…"
	},
}

// NewEngine parses the embedded templates.
func NewEngine() (*Engine, error) {
	tpl, err := template.New("").Funcs(funcs).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Engine{tpl: tpl}, nil
}

// Load satisfies fiber.Views; parsing already happened in NewEngine.
func (e *Engine) Load() error { return nil }

// Render executes the named template into w.
func (e *Engine) Render(w io.Writer, name string, bind interface{}, layout ...string) error {
	return e.tpl.ExecuteTemplate(w, name+".html", bind)
}
