package types

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Role string

const (
	ROLE_OWNER  Role = "owner"
	ROLE_ADMIN  Role = "admin"
	ROLE_MEMBER Role = "member"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case ROLE_OWNER, ROLE_ADMIN, ROLE_MEMBER:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func (r Role) Valid() bool {
	return r == ROLE_OWNER || r == ROLE_ADMIN || r == ROLE_MEMBER
}

// Rank orders roles by authority; unknown roles rank 0.
func (r Role) Rank() int {
	switch r {
	case ROLE_OWNER:
		return 3
	case ROLE_ADMIN:
		return 2
	case ROLE_MEMBER:
		return 1
	}
	return 0
}

// Manager reports whether the role may manage other members of its scope.
func (r Role) Manager() bool {
	return r == ROLE_OWNER || r == ROLE_ADMIN
}

type ScopeType string

const (
	SCOPE_WORKSPACE ScopeType = "workspace"
	SCOPE_TEAM      ScopeType = "team"
	SCOPE_PROJECT   ScopeType = "project"
)

func ParseScopeType(s string) (ScopeType, error) {
	switch t := ScopeType(strings.ToLower(strings.TrimSpace(s))); t {
	case SCOPE_WORKSPACE, SCOPE_TEAM, SCOPE_PROJECT:
		return t, nil
	}
	return "", fmt.Errorf("unknown scope type %q", s)
}

type Scope struct {
	Type ScopeType `json:"type"`
	ID   uuid.UUID `json:"id"`
}

func WorkspaceScope(id uuid.UUID) Scope { return Scope{Type: SCOPE_WORKSPACE, ID: id} }
func TeamScope(id uuid.UUID) Scope      { return Scope{Type: SCOPE_TEAM, ID: id} }
func ProjectScope(id uuid.UUID) Scope   { return Scope{Type: SCOPE_PROJECT, ID: id} }

func (s Scope) String() string {
	return fmt.Sprintf("%s:%s", s.Type, s.ID)
}
