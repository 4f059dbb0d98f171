package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/stegportal/portal/internal/api"
	"github.com/stegportal/portal/internal/logger"
)

const signupPath = "/api/auth/signup"

// Signup posts the candidate and returns the opaque session token.
// A 2xx answer without a token is reported as a ResponseError.
func (c *APIClient) Signup(ctx context.Context, req api.SignupRequest) (string, error) {
	resp, err := c.do(ctx, http.MethodPost, signupPath, req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		logger.Log.Warn("reading signup response", "status", resp.StatusCode, "error", err)
		return "", &ResponseError{StatusCode: resp.StatusCode}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp api.ErrorResponse
		if err := json.Unmarshal(body, &errResp); err != nil {
			logger.Log.Debug("signup error body is not json", "status", resp.StatusCode)
		}
		return "", &ResponseError{StatusCode: resp.StatusCode, Message: errResp.Message}
	}

	var signupResp api.SignupResponse
	if err := json.Unmarshal(body, &signupResp); err != nil || signupResp.Token == "" {
		logger.Log.Error("signup succeeded without a token", "status", resp.StatusCode, "error", err)
		return "", &ResponseError{StatusCode: resp.StatusCode}
	}
	return signupResp.Token, nil
}
