package handler

import (
	"errors"
	"net/http"

	"github.com/stegportal/portal/internal/domain"
	apperrors "github.com/stegportal/portal/internal/errors"
	"github.com/stegportal/portal/internal/logger"
	"github.com/stegportal/portal/internal/middleware"
	"github.com/stegportal/portal/internal/middleware/metrics"
	"github.com/stegportal/portal/internal/registration"
	"github.com/stegportal/portal/internal/validation"
)

const (
	MsgSubmitInFlight = "A registration is already being processed. Please wait."
	MsgFormChanged    = "The form changed while it was being sent. Please submit again."
)

type signupPage struct {
	Candidate      domain.RegistrationRequest
	Errors         validation.Result
	UnitKinds      []domain.UnitKindOption
	UnitLabel      string
	UnitOptions    []domain.UnitOption
	SelectedUnitId domain.UnitId // 0 when nothing is selected
	Submitting     bool
	Completed      bool
}

func newSignupPage(view registration.View) signupPage {
	page := signupPage{
		Candidate:   view.Candidate,
		Errors:      view.Errors,
		UnitKinds:   domain.UnitKinds,
		UnitLabel:   domain.KindLabel(view.Candidate.UnitKind),
		UnitOptions: domain.OptionsFor(view.Candidate.UnitKind),
		Submitting:  view.State == registration.Submitting,
		Completed:   view.State == registration.Succeeded,
	}
	if view.Candidate.UnitId != nil {
		page.SelectedUnitId = *view.Candidate.UnitId
	}
	return page
}

func (h *Handler) form(r *http.Request) *registration.Controller {
	form := h.Forms.Get(middleware.VisitorID(r))
	metrics.SetOpenForms(h.Forms.Len())
	return form
}

// SignupGetHandler shows the visitor's form. A plain GET does not open one.
func (h *Handler) SignupGetHandler(w http.ResponseWriter, r *http.Request) {
	view := registration.View{State: registration.Editing}
	if form, ok := h.Forms.Peek(middleware.VisitorID(r)); ok {
		view = form.Snapshot()
	}

	common := h.initCommonTemplateData(w, r, "SignUp")
	if view.State == registration.Failed {
		common.Error = h.TextProcessor.PlainText(view.Message)
	}
	h.renderTemplate(w, r, http.StatusOK, "signup.html", newSignupPage(view), common)
}

// SignupPostHandler applies the posted fields, validates, and submits.
// Success redirects back to GET /signup, which then shows the confirmation.
func (h *Handler) SignupPostHandler(w http.ResponseWriter, r *http.Request) {
	form := h.form(r)

	fieldErrs, err := applyPostedFields(form, r)
	if err != nil {
		h.handleFormError(w, r, form, err)
		return
	}

	result := form.Validate()
	for field, msg := range fieldErrs {
		result[field] = msg
	}
	if !result.Valid() {
		view := form.Snapshot()
		view.Errors = result
		common := h.initCommonTemplateData(w, r, "SignUp")
		h.renderTemplate(w, r, http.StatusUnprocessableEntity, "signup.html", newSignupPage(view), common)
		return
	}

	outcome, err := form.Submit(r.Context())
	if err != nil {
		h.handleFormError(w, r, form, err)
		return
	}
	metrics.ObserveSignup(outcome.Kind.String())

	if outcome.Succeeded() {
		http.SetCookie(w, &http.Cookie{
			Name:     accessTokenCookie,
			Value:    outcome.Token,
			Path:     "/",
			HttpOnly: true,
			Secure:   h.Public.SecureCookies,
			SameSite: http.SameSiteLaxMode,
		})
		http.Redirect(w, r, "/signup", http.StatusSeeOther)
		return
	}

	failure := h.outcomeError(outcome)
	common := h.initCommonTemplateData(w, r, "SignUp")
	common.Error = failure.Error()
	h.renderTemplate(w, r, apperrors.StatusCode(failure), "signup.html", newSignupPage(form.Snapshot()), common)
}

// SignupUnitHandler changes the unit kind and shows the matching options
// without validating or submitting.
func (h *Handler) SignupUnitHandler(w http.ResponseWriter, r *http.Request) {
	form := h.form(r)

	if _, err := applyPostedFields(form, r); err != nil {
		h.handleFormError(w, r, form, err)
		return
	}

	view := form.Snapshot()
	view.Errors = nil
	common := h.initCommonTemplateData(w, r, "SignUp")
	h.renderTemplate(w, r, http.StatusOK, "signup.html", newSignupPage(view), common)
}

func (h *Handler) handleFormError(w http.ResponseWriter, r *http.Request, form *registration.Controller, err error) {
	var failure error
	switch {
	case errors.Is(err, registration.ErrFormClosed):
		http.Redirect(w, r, "/signup", http.StatusSeeOther)
		return
	case errors.Is(err, registration.ErrSubmitInFlight):
		failure = apperrors.New(http.StatusConflict, MsgSubmitInFlight)
	case errors.Is(err, registration.ErrNotValidated):
		failure = apperrors.New(http.StatusConflict, MsgFormChanged)
	default:
		logger.Log.Error("sign-up form", "visitor", middleware.VisitorID(r), "error", err)
		failure = apperrors.New(http.StatusInternalServerError, registration.MsgRequestError)
	}

	common := h.initCommonTemplateData(w, r, "SignUp")
	common.Error = failure.Error()
	h.renderTemplate(w, r, apperrors.StatusCode(failure), "signup.html", newSignupPage(form.Snapshot()), common)
}

// outcomeError turns a failed outcome into the message and status of the page.
// Backend messages are reduced to plain text.
func (h *Handler) outcomeError(outcome registration.Outcome) error {
	switch outcome.Kind {
	case registration.ServerRejected:
		msg := h.TextProcessor.PlainText(outcome.Message)
		if msg == "" {
			msg = registration.MsgServerError
		}
		return apperrors.New(http.StatusBadRequest, msg)
	case registration.NoResponse:
		return apperrors.New(http.StatusGatewayTimeout, outcome.Message)
	default:
		return apperrors.New(http.StatusInternalServerError, outcome.Message)
	}
}

// applyPostedFields writes every posted field into the form in form order.
// When the posted unit kind replaces a previously selected one, the posted
// unit id belongs to the old catalog and is dropped, leaving the id unset.
// A malformed unit id is cleared and reported as a field error.
func applyPostedFields(form *registration.Controller, r *http.Request) (validation.Result, error) {
	fieldErrs := validation.Result{}
	previousKind := form.Snapshot().Candidate.UnitKind
	kindSwitched := previousKind != "" && domain.UnitKind(r.PostFormValue(string(domain.FieldUnitKind))) != previousKind

	for _, f := range domain.Fields {
		if f == domain.FieldUnitId && kindSwitched {
			continue
		}
		err := form.UpdateField(string(f), r.PostFormValue(string(f)))
		switch {
		case err == nil:
		case errors.Is(err, registration.ErrUnitKindRequired):
		case errors.Is(err, registration.ErrInvalidValue):
			if err := form.UpdateField(string(f), ""); err != nil {
				return fieldErrs, err
			}
			fieldErrs[string(f)] = validation.MsgUnitIdInvalid
		default:
			return fieldErrs, err
		}
	}
	return fieldErrs, nil
}
