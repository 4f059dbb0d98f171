package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "plain error", err: errors.New("boom"), want: http.StatusInternalServerError},
		{name: "direct", err: New(http.StatusConflict, "taken"), want: http.StatusConflict},
		{name: "wrapped", err: fmt.Errorf("signup: %w", New(http.StatusTooManyRequests, "slow down")), want: http.StatusTooManyRequests},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusCode(tt.err))
		})
	}
}
