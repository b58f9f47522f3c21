package view

import (
	"fmt"
	"html/template"
	"io"
	"net/http"
	"time"

	"github.com/odyssey-erp/formcsrf/web"
)

// Engine renders HTML templates.
type Engine struct {
	templates *template.Template
}

// FlashMessage is a one-off notice shown above page content.
type FlashMessage struct {
	Kind    string
	Message string
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	Form        *Form
	Flash       *FlashMessage
	CurrentPath string
	Data        any
}

// NewEngine parses templates at build-time.
func NewEngine() (*Engine, error) {
	funcMap := template.FuncMap{
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02 Jan 2006 15:04")
		},
	}
	tpl, err := template.New("root").Funcs(funcMap).ParseFS(web.Templates, "templates/layouts/*.html", "templates/partials/*.html", "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	return &Engine{templates: tpl}, nil
}

// Render executes a named template with TemplateData.
func (e *Engine) Render(w http.ResponseWriter, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return e.templates.ExecuteTemplate(w, name, data)
}

// Execute writes a named template to w without touching HTTP headers.
func (e *Engine) Execute(w io.Writer, name string, data any) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	return e.templates.ExecuteTemplate(w, name, data)
}
