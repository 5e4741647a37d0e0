package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{Validation, http.StatusBadRequest},
		{Unauthorized, http.StatusUnauthorized},
		{Forbidden, http.StatusForbidden},
		{NotFound, http.StatusNotFound},
		{Conflict, http.StatusConflict},
		{Internal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Status(New(tc.kind, "x")))
	}
}

func TestPlainErrorsAreInternal(t *testing.T) {
	err := errors.New("disk on fire")
	assert.Equal(t, Internal, KindOf(err))
	assert.Equal(t, http.StatusInternalServerError, Status(err))
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("loading profile: %w", New(NotFound, "account not found"))
	assert.True(t, Is(err, NotFound))
	assert.Equal(t, http.StatusNotFound, Status(err))
}
