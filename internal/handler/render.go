package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/stegportal/portal/internal/jwt"
	"github.com/stegportal/portal/internal/logger"
	"github.com/stegportal/portal/internal/middleware"
)

// CommonTemplateData holds fields that every page template uses.
// Available in templates as .Common via the TemplateData wrapper.
type CommonTemplateData struct {
	Error     string
	Success   string
	Info      string
	CSRFToken string
	Active    string // navbar entry to highlight
	SignedIn  bool
	UserName  string
}

// TemplateData wraps page-specific data with common template data.
type TemplateData struct {
	Data   any
	Common CommonTemplateData
}

func (h *Handler) initCommonTemplateData(w http.ResponseWriter, r *http.Request, active string) CommonTemplateData {
	common := CommonTemplateData{
		Error:     h.popFlash(w, r, flashCookieError),
		Success:   h.popFlash(w, r, flashCookieSuccess),
		CSRFToken: middleware.CSRFToken(r),
		Active:    active,
	}

	if c, err := r.Cookie(accessTokenCookie); err == nil && c.Value != "" {
		common.SignedIn = true
		// The token is opaque unless it happens to be a JWT.
		if claims, err := jwt.Peek(c.Value); err == nil && !claims.Expired(time.Now()) {
			common.UserName = claims.DisplayName()
		}
	}
	return common
}

func (h *Handler) renderTemplate(w http.ResponseWriter, r *http.Request, status int, name string, data any, common CommonTemplateData) {
	tmpl, ok := h.getTemplate(name)
	if !ok {
		http.Error(w, fmt.Sprintf("Template %s not found", name), http.StatusInternalServerError)
		return
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, TemplateData{Data: data, Common: common}); err != nil {
		logger.Log.Error("error executing template", "template", name, "error", err)
		http.Error(w, "Internal Server Error rendering template", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
