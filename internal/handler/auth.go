package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/stegportal/portal/internal/logger"
	"github.com/stegportal/portal/internal/middleware"
	"github.com/stegportal/portal/internal/session"
)

const MsgSignInUnavailable = "Sign-in is not available yet. Please try again later."

type signinPage struct {
	Matricule string
}

func (h *Handler) SigninGetHandler(w http.ResponseWriter, r *http.Request) {
	common := h.initCommonTemplateData(w, r, "SignIn")
	h.renderTemplate(w, r, http.StatusOK, "signin.html", signinPage{}, common)
}

// SigninPostHandler records the attempt and shows the form again. The auth
// backend exposes no sign-in endpoint to the portal.
func (h *Handler) SigninPostHandler(w http.ResponseWriter, r *http.Request) {
	matricule := strings.TrimSpace(r.PostFormValue("matricule"))
	logger.Log.Info("sign-in form submitted", "matricule", matricule, "visitor", middleware.VisitorID(r))

	common := h.initCommonTemplateData(w, r, "SignIn")
	common.Info = MsgSignInUnavailable
	h.renderTemplate(w, r, http.StatusOK, "signin.html", signinPage{Matricule: matricule}, common)
}

// SignoutHandler forgets the visitor's token and open form.
func (h *Handler) SignoutHandler(w http.ResponseWriter, r *http.Request) {
	visitorID := middleware.VisitorID(r)
	if visitorID != "" {
		h.Forms.Drop(visitorID)
		err := session.Scoped(h.Sessions, visitorID).Delete(r.Context(), session.TokenKey)
		if err != nil && !errors.Is(err, session.ErrNotFound) {
			logger.Log.Error("deleting session token", "visitor", visitorID, "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Public.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	h.redirectWithFlash(w, r, "/", flashCookieSuccess, "You have been signed out.")
}
