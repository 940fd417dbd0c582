package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"plain", errors.New("boom"), http.StatusInternalServerError},
		{"unauthorized", fmt.Errorf("store: entries: %w", ErrUnauthorized), http.StatusUnauthorized},
		{"not found", ErrNotFound, http.StatusNotFound},
		{"upstream", fmt.Errorf("%w: status 503", ErrUpstream), http.StatusBadGateway},
		{"explicit status wins", New(http.StatusTeapot, "tea", ErrNotFound), http.StatusTeapot},
		{"wrapped app error", fmt.Errorf("outer: %w", New(http.StatusNotFound, "gone", nil)), http.StatusNotFound},
		{"app error without status", &Error{Message: "x", Err: ErrUpstream}, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.err))
		})
	}
}

func TestError(t *testing.T) {
	err := New(http.StatusInternalServerError, "Failed to fetch entries", errors.New("connection refused"))
	assert.Equal(t, "Failed to fetch entries: connection refused", err.Error())
	assert.Equal(t, "Not here", New(http.StatusNotFound, "Not here", nil).Error())

	wrapped := New(http.StatusUnauthorized, "Authentication required", ErrUnauthorized)
	assert.ErrorIs(t, wrapped, ErrUnauthorized)
}
