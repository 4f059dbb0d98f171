package registration

import (
	"errors"

	"github.com/stegportal/portal/internal/apiclient"
)

const (
	MsgServerError  = "Server error. Please try again."
	MsgNoResponse   = "No response from server. Please check your connection."
	MsgRequestError = "Error sending request. Please try again."
)

type OutcomeKind int

const (
	Success OutcomeKind = iota
	ServerRejected
	NoResponse
	RequestError
)

func (k OutcomeKind) String() string {
	switch k {
	case Success:
		return "success"
	case ServerRejected:
		return "server_rejected"
	case NoResponse:
		return "no_response"
	case RequestError:
		return "request_error"
	default:
		return "unknown"
	}
}

// Outcome is the result of one submission attempt. Token is set only for
// Success, Message only for the failures.
type Outcome struct {
	Kind    OutcomeKind
	Token   string
	Message string
}

func (o Outcome) Succeeded() bool {
	return o.Kind == Success
}

// outcomeFromError maps a transport error to the message shown in the form.
func outcomeFromError(err error) Outcome {
	var respErr *apiclient.ResponseError
	switch {
	case errors.As(err, &respErr):
		msg := respErr.Message
		if msg == "" {
			msg = MsgServerError
		}
		return Outcome{Kind: ServerRejected, Message: msg}
	case errors.Is(err, apiclient.ErrNoResponse):
		return Outcome{Kind: NoResponse, Message: MsgNoResponse}
	default:
		return Outcome{Kind: RequestError, Message: MsgRequestError}
	}
}
