package handler

import (
	"html/template"
	"net/http"
)

type markdownPage struct {
	Title   string
	Content template.HTML
}

func (h *Handler) HomeGetHandler(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, "home", "STEG", "Home")
}

func (h *Handler) AboutGetHandler(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, "about", "About", "About")
}

func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, page, title, active string) {
	content, ok := h.Pages[page]
	if !ok {
		http.NotFound(w, r)
		return
	}
	common := h.initCommonTemplateData(w, r, active)
	h.renderTemplate(w, r, http.StatusOK, "page.html", markdownPage{Title: title, Content: content}, common)
}
