package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, Conflict, KindOf(ErrSelfTransfer))
	assert.Equal(t, Forbidden, KindOf(fmt.Errorf("remove: %w", ErrAdminRemovingOwner)))
	assert.Equal(t, Internal, KindOf(errors.New("connection refused")))
	assert.Equal(t, Kind(""), KindOf(nil))
}

func TestSentinelsSurviveWrapping(t *testing.T) {
	err := fmt.Errorf("transfer: %w", ErrOwnershipChanged)
	assert.ErrorIs(t, err, ErrOwnershipChanged)
	assert.NotErrorIs(t, err, ErrMemberNotFound)
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("deadlock detected")
	err := Wrap(Internal, cause, "delete team")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "delete team: deadlock detected", err.Error())
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatus(ErrTeamNotFound))
	assert.Equal(t, http.StatusConflict, HTTPStatus(ErrScopeEmpty))
	assert.Equal(t, http.StatusForbidden, HTTPStatus(ErrUnassignEmptiesProj))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(ErrInvalidRole))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))
}
