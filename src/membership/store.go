package membership

import (
	"context"

	"taskhub/src/models"
	"taskhub/src/types"

	"github.com/google/uuid"
)

// Store is the relational store the engine runs against. RunInTransaction commits when fn
// returns nil and rolls back on any error or panic; the error from fn is returned unchanged.
type Store interface {
	RunInTransaction(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the set of reads and writes available inside one transaction. Getters return the
// matching errs.Err*NotFound sentinel when a row is missing. Membership reads lock the rows
// they return until the transaction ends.
type Tx interface {
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User) error
	GetWorkspace(ctx context.Context, id uuid.UUID) (*models.Workspace, error)
	GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error)
	GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error)
	GetWorkspaceMember(ctx context.Context, id uuid.UUID) (*models.WorkspaceMember, error)

	// ListMembers returns the scope's memberships, oldest first.
	ListMembers(ctx context.Context, scope types.Scope) ([]models.Membership, error)
	// FindMemberBySubject returns nil, nil when the subject has no membership in the scope.
	FindMemberBySubject(ctx context.Context, scope types.Scope, subjectID uuid.UUID) (*models.Membership, error)
	CreateMember(ctx context.Context, workspaceID uuid.UUID, m *models.Membership) error
	// SetMemberRole updates the row only while it still holds role from, and returns rows affected.
	SetMemberRole(ctx context.Context, scope types.Scope, id uuid.UUID, from, to types.Role) (int64, error)
	DeleteMembers(ctx context.Context, scope types.Scope, ids ...uuid.UUID) (int64, error)
	DeleteAllMembers(ctx context.Context, scope types.Scope) (int64, error)
	// ListSubjectMemberships returns every team and project membership held by a workspace member.
	ListSubjectMemberships(ctx context.Context, workspaceID, workspaceMemberID uuid.UUID) ([]models.Membership, error)

	HasProjectTeam(ctx context.Context, projectID, teamID uuid.UUID) (bool, error)
	CreateProjectTeam(ctx context.Context, link *models.ProjectTeam) error
	DeleteProjectTeam(ctx context.Context, projectID, teamID uuid.UUID) (int64, error)
	DeleteProjectTeamsForTeam(ctx context.Context, teamID uuid.UUID) (int64, error)
	DeleteProjectTeamsForProject(ctx context.Context, projectID uuid.UUID) (int64, error)
	ListProjectIDsForTeam(ctx context.Context, teamID uuid.UUID) ([]uuid.UUID, error)
	ListTeamIDsForProject(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error)

	CreateWorkspace(ctx context.Context, ws *models.Workspace) error
	CreateTeam(ctx context.Context, team *models.Team) error
	CreateProject(ctx context.Context, project *models.Project) error
	ListTeamIDs(ctx context.Context, workspaceID uuid.UUID) ([]uuid.UUID, error)
	ListProjectIDs(ctx context.Context, workspaceID uuid.UUID) ([]uuid.UUID, error)
	DeleteTeam(ctx context.Context, id uuid.UUID) (int64, error)
	DeleteProject(ctx context.Context, id uuid.UUID) (int64, error)
	DeleteWorkspace(ctx context.Context, id uuid.UUID) (int64, error)

	AppendTrail(ctx context.Context, entry *models.TrailLog) error
}

type Job struct {
	Name    string      `json:"name"`
	Scope   types.Scope `json:"scope"`
	Payload types.JSONB `json:"payload,omitempty"`
}

const (
	JOB_WORKSPACE_CREATED     = "workspace.created"
	JOB_WORKSPACE_DELETED     = "workspace.deleted"
	JOB_TEAM_CREATED          = "team.created"
	JOB_TEAM_DELETED          = "team.deleted"
	JOB_TEAM_ASSIGNED         = "team.assigned"
	JOB_TEAM_UNASSIGNED       = "team.unassigned"
	JOB_PROJECT_CREATED       = "project.created"
	JOB_PROJECT_DELETED       = "project.deleted"
	JOB_MEMBER_ADDED          = "member.added"
	JOB_MEMBER_ROLE_UPDATED   = "member.role_updated"
	JOB_MEMBER_REMOVED        = "member.removed"
	JOB_OWNERSHIP_TRANSFERRED = "ownership.transferred"
	JOB_OWNERSHIP_VIOLATION   = "ownership.violation"
)

// JobEnqueuer hands jobs to an external queue. The engine calls it only after a commit.
type JobEnqueuer interface {
	Enqueue(ctx context.Context, job Job) error
}

// Anomaly is a non-empty scope whose owner count is not exactly one.
type Anomaly struct {
	Scope   types.Scope `json:"scope"`
	Members int64       `json:"members"`
	Owners  int64       `json:"owners"`
}

// Auditor scans committed data for ownership anomalies without taking write locks.
type Auditor interface {
	OwnershipAnomalies(ctx context.Context) ([]Anomaly, error)
}
