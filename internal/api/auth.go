package api

import "github.com/stegportal/portal/internal/domain"

// Request DTOs

// SignupRequest is sent as-is; unitid is encoded as a number or null.
type SignupRequest = domain.RegistrationRequest

// Response DTOs

type SignupResponse struct {
	Token string `json:"token"`
}

// ErrorResponse is the body the auth backend sends with non-2xx statuses.
type ErrorResponse struct {
	Message string `json:"message"`
}
