package types

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" Admin ")
	assert.NoError(t, err)
	assert.Equal(t, ROLE_ADMIN, r)

	_, err = ParseRole("superuser")
	assert.Error(t, err)
}

func TestRoleRank(t *testing.T) {
	assert.Greater(t, ROLE_OWNER.Rank(), ROLE_ADMIN.Rank())
	assert.Greater(t, ROLE_ADMIN.Rank(), ROLE_MEMBER.Rank())
	assert.Equal(t, 0, Role("guest").Rank())
	assert.True(t, ROLE_ADMIN.Manager())
	assert.False(t, ROLE_MEMBER.Manager())
}

func TestScope(t *testing.T) {
	id := uuid.New()
	s := TeamScope(id)
	assert.Equal(t, SCOPE_TEAM, s.Type)
	assert.Equal(t, "team:"+id.String(), s.String())

	st, err := ParseScopeType("PROJECT")
	assert.NoError(t, err)
	assert.Equal(t, SCOPE_PROJECT, st)
}
