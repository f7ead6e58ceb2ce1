package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorWrapsUnknown(t *testing.T) {
	err := FromError(fmt.Errorf("boom"))
	assert.Equal(t, ErrInternal.Code, err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
}

func TestCloneMatchesTemplate(t *testing.T) {
	err := fmt.Errorf("lookup: %w", Clone(ErrNotFound, "candidate not found"))
	assert.True(t, stdErrors.Is(err, ErrNotFound))
	assert.False(t, stdErrors.Is(err, ErrConflict))
	assert.Equal(t, "candidate not found", FromError(err).Message)
}

func TestWithDetails(t *testing.T) {
	err := WithDetails(ErrImportBlocked, "", []string{"row 2"})
	assert.Equal(t, []string{"row 2"}, err.Details)
	assert.Nil(t, ErrImportBlocked.Details)
}
