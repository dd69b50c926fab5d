// Package web renders the server-side HTML pages from templates embedded in
// the binary and serves their static assets.
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

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/audiodesk/errors"
	"github.com/kbukum/audiodesk/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

const layoutFile = "layout.html"

// Renderer writes a named page template with data as the response.
type Renderer interface {
	Render(c *gin.Context, status int, name string, data any) error
}

// TemplateRenderer renders the embedded page templates. Each page is parsed
// together with the shared layout.
type TemplateRenderer struct {
	pages map[string]*template.Template
	log   *logger.Logger
}

var _ Renderer = (*TemplateRenderer)(nil)

// NewTemplateRenderer parses every embedded page.
func NewTemplateRenderer(log *logger.Logger) (*TemplateRenderer, error) {
	return newTemplateRenderer(templateFS, "templates", log)
}

func newTemplateRenderer(fsys fs.FS, dir string, log *logger.Logger) (*TemplateRenderer, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("reading templates: %w", err)
	}

	pages := make(map[string]*template.Template)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == layoutFile || !strings.HasSuffix(name, ".html") {
			continue
		}
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(fsys, path.Join(dir, layoutFile), path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		pages[name] = tmpl
	}
	return &TemplateRenderer{pages: pages, log: log.WithComponent("web")}, nil
}

var funcs = template.FuncMap{
	"join": strings.Join,
}

// Render executes the page into a buffer and writes it only on success, so
// a template failure leaves the response untouched for the error boundary.
func (r *TemplateRenderer) Render(c *gin.Context, status int, name string, data any) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("rendering %s: %w", name, err)
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
	return nil
}

// ErrorView is the data of error.html.
type ErrorView struct {
	Status    int
	Title     string
	Message   string
	RequestID string
}

// ErrorPage renders error.html. Server errors show a generic message so no
// internal detail reaches the page. It satisfies server.ErrorPage.
func (r *TemplateRenderer) ErrorPage(c *gin.Context, status int, err *apperrors.AppError) {
	view := ErrorView{
		Status:    status,
		Title:     http.StatusText(status),
		Message:   err.Message,
		RequestID: c.GetString(logger.FieldRequestID),
	}
	if status >= http.StatusInternalServerError {
		view.Message = "Something went wrong while loading this page. Please try again later."
	}
	if renderErr := r.Render(c, status, "error.html", view); renderErr != nil {
		r.log.Error("Error page failed to render", logger.Fields(logger.FieldError, renderErr.Error()))
		c.String(status, "%d %s", status, view.Title)
	}
}

// RegisterStatic serves the embedded assets under /static.
func RegisterStatic(r gin.IRoutes) error {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return err
	}
	r.StaticFS("/static", http.FS(sub))
	return nil
}
