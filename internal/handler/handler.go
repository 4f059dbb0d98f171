package handler

import (
	"html/template"
	"net/http"
	"sync"

	"github.com/stegportal/portal/internal/config"
	"github.com/stegportal/portal/internal/markdown"
	"github.com/stegportal/portal/internal/registration"
	"github.com/stegportal/portal/internal/session"
)

const accessTokenCookie = "accessToken"

type Handler struct {
	Public        config.Public
	TextProcessor *markdown.TextProcessor
	Forms         *registration.Registry
	Sessions      session.Store // process-wide; scoped per visitor before use
	Pages         map[string]template.HTML

	templatesMu sync.RWMutex
	templates   map[string]*template.Template
}

func New(templates map[string]*template.Template, publicCfg config.Public, textProcessor *markdown.TextProcessor, forms *registration.Registry, sessions session.Store, pages map[string]template.HTML) *Handler {
	return &Handler{
		Public:        publicCfg,
		TextProcessor: textProcessor,
		Forms:         forms,
		Sessions:      sessions,
		Pages:         pages,
		templates:     templates,
	}
}

// SetTemplates swaps the template set, used by the development reloader.
func (h *Handler) SetTemplates(templates map[string]*template.Template) {
	h.templatesMu.Lock()
	h.templates = templates
	h.templatesMu.Unlock()
}

func (h *Handler) getTemplate(name string) (*template.Template, bool) {
	h.templatesMu.RLock()
	defer h.templatesMu.RUnlock()
	tmpl, ok := h.templates[name]
	return tmpl, ok
}

func HealthzHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}
