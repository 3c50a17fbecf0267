package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithMessageKeepsCodeAndStatus(t *testing.T) {
	custom := ErrForbidden.WithMessage("Role does not permit this")
	assert.Equal(t, "FORBIDDEN", custom.Code)
	assert.Equal(t, http.StatusForbidden, custom.Status)
	assert.Equal(t, "Role does not permit this", custom.Error())

	// Sentinels compare by code, so customized copies still match.
	assert.ErrorIs(t, custom, ErrForbidden)
	assert.NotErrorIs(t, custom, ErrNotFound)
}

func TestWithMessageDoesNotMutateSentinel(t *testing.T) {
	_ = ErrConflict.WithMessage("changed")
	assert.Equal(t, "Resource already exists", ErrConflict.Message)
}

func TestErrorIsThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", ErrSessionExpired.WithMessage("expired"))
	assert.ErrorIs(t, wrapped, ErrSessionExpired)
}

func TestFrom(t *testing.T) {
	assert.Equal(t, ErrNotFound.Code, From(ErrNotFound.WithMessage("Deal not found")).Code)
	assert.Equal(t, ErrInternal, From(errors.New("pq: connection refused")))
	assert.Equal(t, ErrValidation.Code, From(fmt.Errorf("wrap: %w", ErrValidation)).Code)
}
