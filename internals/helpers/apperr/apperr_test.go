package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, fiber.StatusOK},
		{NotFound("session abc"), fiber.StatusNotFound},
		{Conflict("email"), fiber.StatusConflict},
		{ErrInvalidTransition, fiber.StatusConflict},
		{Invalid("is_boursier", "must be a boolean"), fiber.StatusUnprocessableEntity},
		{fmt.Errorf("ask: %w", ErrCorpusUnavailable), fiber.StatusServiceUnavailable},
		{Persistence("save", errors.New("db down")), fiber.StatusInternalServerError},
		{fiber.NewError(fiber.StatusBadRequest, "bad"), fiber.StatusBadRequest},
		{errors.New("boom"), fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Status(tc.err), "%v", tc.err)
	}
}

func TestValidationError(t *testing.T) {
	ve := NewValidation()
	assert.Nil(t, ve.OrNil())

	ve.Add("b", "second").Add("a", "first").Add("a", "again")
	err := ve.OrNil()
	assert.True(t, IsValidation(err))
	assert.Equal(t, "validation failed: a: first, again; b: second", err.Error())

	var target *ValidationError
	assert.True(t, errors.As(fmt.Errorf("wrap: %w", err), &target))
	assert.Len(t, target.Fields["a"], 2)
}

func TestPersistenceKeepsDomainErrors(t *testing.T) {
	nf := NotFound("profile")
	assert.Same(t, nf, Persistence("load", nf))
	assert.Nil(t, Persistence("load", nil))

	cause := errors.New("connection reset")
	err := Persistence("save", cause)
	assert.True(t, IsPersistence(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "persistence: save: connection reset", err.Error())
}

func TestIsHelpers(t *testing.T) {
	assert.True(t, IsNotFound(NotFound("x")))
	assert.True(t, IsConflict(Conflict("x")))
	assert.False(t, IsDomain(errors.New("plain")))
	assert.True(t, IsDomain(ErrCorpusUnavailable))
}
