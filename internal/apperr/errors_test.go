package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindUnauthorized, KindOf(Unauthorized()))
	assert.Equal(t, KindBadRequest, KindOf(fmt.Errorf("wrapped, %w", BadRequest("Missing name"))))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestIsMatchesKindAndMessage(t *testing.T) {
	err := fmt.Errorf("upload, %w", BadRequest("Parent not found"))

	assert.True(t, errors.Is(err, BadRequest("Parent not found")))
	assert.True(t, errors.Is(err, &Error{Kind: KindBadRequest}))
	assert.False(t, errors.Is(err, BadRequest("Parent is not a folder")))
	assert.False(t, errors.Is(err, NotFound()))
}

func TestInternalKeepsCause(t *testing.T) {
	err := Internal(ErrStoreUnavailable)

	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Equal(t, "Internal server error", err.Message)
}

func TestStatus(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, Status(KindUnauthorized))
	assert.Equal(t, http.StatusBadRequest, Status(KindBadRequest))
	assert.Equal(t, http.StatusBadRequest, Status(KindConflict))
	assert.Equal(t, http.StatusNotFound, Status(KindNotFound))
	assert.Equal(t, http.StatusInternalServerError, Status(KindInternal))
}
