package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		err    *Error
		status int
	}{
		{Validation("bad"), http.StatusBadRequest},
		{Unauthorized("who"), http.StatusUnauthorized},
		{Forbidden("no"), http.StatusForbidden},
		{NotFound("gone"), http.StatusNotFound},
		{&Error{Message: "?"}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Message, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.Status())
		})
	}
}

func TestAs_UnwrapsChain(t *testing.T) {
	wrapped := fmt.Errorf("create task: %w", Validation("Task title is required"))

	appErr, ok := As(wrapped)
	assert.True(t, ok)
	assert.Equal(t, "Task title is required", appErr.Message)
	assert.True(t, IsKind(wrapped, KindValidation))
	assert.False(t, IsKind(wrapped, KindNotFound))

	_, ok = As(errors.New("boom"))
	assert.False(t, ok)
}

func TestValidation_Details(t *testing.T) {
	err := Validation("Invalid payload", map[string]string{"name": "required"})
	assert.Equal(t, map[string]string{"name": "required"}, err.Details)
	assert.Nil(t, Validation("plain").Details)
}
