package errors

import (
	"database/sql"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneKeepsIdentity(t *testing.T) {
	refused := Clone(ErrStateConflict, "You can't submit with pending results.")

	assert.True(t, errors.Is(refused, ErrStateConflict))
	assert.False(t, errors.Is(refused, ErrNotFound))
	assert.Equal(t, http.StatusForbidden, refused.Status)
	assert.Equal(t, "results are not in a state that allows this action", ErrStateConflict.Message)
}

func TestInternalPreservesCause(t *testing.T) {
	err := Internal(sql.ErrConnDone, "failed to load results")

	assert.True(t, errors.Is(err, sql.ErrConnDone))
	assert.Equal(t, http.StatusInternalServerError, FromError(err).Status)
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	appErr := FromError(errors.New("boom"))

	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Nil(t, FromError(nil))
}
