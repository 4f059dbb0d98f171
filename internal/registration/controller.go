// Package registration drives one sign-up form: it holds the candidate,
// validates it, and submits it at most once at a time.
package registration

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strconv"
	"sync"

	"github.com/stegportal/portal/internal/api"
	"github.com/stegportal/portal/internal/domain"
	"github.com/stegportal/portal/internal/logger"
	"github.com/stegportal/portal/internal/session"
	"github.com/stegportal/portal/internal/validation"
)

type State int

const (
	Editing State = iota
	Validating
	Submitting
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Editing:
		return "editing"
	case Validating:
		return "validating"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

var (
	ErrUnknownField     = errors.New("unknown form field")
	ErrInvalidValue     = errors.New("invalid field value")
	ErrUnitKindRequired = errors.New("unit kind must be selected before the unit")
	ErrSubmitInFlight   = errors.New("submission already in progress")
	ErrFormClosed       = errors.New("registration already completed")
	ErrNotValidated     = errors.New("candidate has not passed validation")
)

// Transport delivers a candidate to the auth backend and returns its token.
type Transport interface {
	Signup(ctx context.Context, req api.SignupRequest) (string, error)
}

// View is a copy of the controller state for rendering.
type View struct {
	State     State
	Candidate domain.RegistrationRequest
	Errors    validation.Result
	Message   string
}

type Controller struct {
	transport Transport
	sessions  session.Store
	validator *validation.Validator

	mu        sync.Mutex
	state     State
	candidate domain.RegistrationRequest
	errors    validation.Result
	message   string
	validated bool // candidate passed Validate and was not edited since
}

func NewController(transport Transport, sessions session.Store, validator *validation.Validator) *Controller {
	return &Controller{
		transport: transport,
		sessions:  sessions,
		validator: validator,
		state:     Editing,
		errors:    validation.Result{},
	}
}

// UpdateField writes one field. Changing the unit kind drops the unit id in
// the same critical section; the two catalogs share no ids.
func (c *Controller) UpdateField(name, value string) error {
	field, ok := domain.ParseField(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case Submitting:
		return ErrSubmitInFlight
	case Succeeded:
		return ErrFormClosed
	}

	switch field {
	case domain.FieldFullName:
		c.candidate.FullName = value
	case domain.FieldEmail:
		c.candidate.Email = value
	case domain.FieldPassword:
		c.candidate.Password = value
	case domain.FieldUnitKind:
		c.candidate.UnitKind = domain.UnitKind(value)
		c.candidate.UnitId = nil
	case domain.FieldUnitId:
		if c.candidate.UnitKind == "" {
			return ErrUnitKindRequired
		}
		if value == "" {
			c.candidate.UnitId = nil
			break
		}
		id, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: unit id %q", ErrInvalidValue, value)
		}
		c.candidate.UnitId = &id
	}

	c.validated = false
	if c.state == Failed {
		c.state = Editing
	}
	return nil
}

// Validate checks the whole candidate and records the result on the form.
func (c *Controller) Validate() validation.Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Submitting || c.state == Succeeded {
		return c.validator.Validate(c.candidate)
	}

	c.state = Validating
	c.message = ""
	c.errors = c.validator.Validate(c.candidate)
	c.validated = c.errors.Valid()
	c.state = Editing
	return maps.Clone(c.errors)
}

// Submit sends the validated candidate once. It fails fast with
// ErrNotValidated, ErrSubmitInFlight or ErrFormClosed without touching the
// transport. Transport failures are not errors: they come back as an Outcome
// and leave the form in Failed with the candidate intact.
func (c *Controller) Submit(ctx context.Context) (Outcome, error) {
	c.mu.Lock()
	switch {
	case c.state == Submitting:
		c.mu.Unlock()
		return Outcome{}, ErrSubmitInFlight
	case c.state == Succeeded:
		c.mu.Unlock()
		return Outcome{}, ErrFormClosed
	case !c.validated:
		c.mu.Unlock()
		return Outcome{}, ErrNotValidated
	}
	c.state = Submitting
	c.message = ""
	req := c.candidate.Clone()
	c.mu.Unlock()

	outcome := c.send(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	if outcome.Succeeded() {
		c.state = Succeeded
	} else {
		c.state = Failed
		c.message = outcome.Message
	}
	return outcome, nil
}

func (c *Controller) send(ctx context.Context, req api.SignupRequest) Outcome {
	token, err := c.transport.Signup(ctx, req)
	if err != nil {
		outcome := outcomeFromError(err)
		logger.Log.Warn("signup failed", "outcome", outcome.Kind, "error", err)
		return outcome
	}

	if err := c.sessions.Set(ctx, session.TokenKey, token); err != nil {
		logger.Log.Error("storing session token", "error", err)
		return Outcome{Kind: RequestError, Message: MsgRequestError}
	}
	logger.Log.Info("signup succeeded", "unit", req.UnitKind)
	return Outcome{Kind: Success, Token: token}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return View{
		State:     c.state,
		Candidate: c.candidate.Clone(),
		Errors:    maps.Clone(c.errors),
		Message:   c.message,
	}
}
