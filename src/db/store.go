package db

import (
	"context"
	"errors"
	"fmt"

	"taskhub/src/errs"
	"taskhub/src/membership"
	"taskhub/src/models"
	"taskhub/src/models/scopes"
	"taskhub/src/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store runs membership transactions through gorm, on postgres or an in-memory sqlite database.
type Store struct {
	db *gorm.DB
}

func NewStore(conn *gorm.DB) *Store {
	return &Store{db: conn}
}

func (s *Store) RunInTransaction(ctx context.Context, fn func(tx membership.Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTx{db: tx})
	})
}

type memberTable struct {
	model   any
	scope   string
	subject string
}

func tableFor(t types.ScopeType) (memberTable, error) {
	switch t {
	case types.SCOPE_WORKSPACE:
		return memberTable{&models.WorkspaceMember{}, "workspace_id", "user_id"}, nil
	case types.SCOPE_TEAM:
		return memberTable{&models.TeamMember{}, "team_id", "workspace_member_id"}, nil
	case types.SCOPE_PROJECT:
		return memberTable{&models.ProjectMember{}, "project_id", "workspace_member_id"}, nil
	}
	return memberTable{}, fmt.Errorf("unknown scope type %q", t)
}

func notFound(err error, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

type gormTx struct {
	db *gorm.DB
}

func (t *gormTx) session(ctx context.Context) *gorm.DB {
	return t.db.WithContext(ctx)
}

func (t *gormTx) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := t.session(ctx).Scopes(scopes.WithID(id)).First(&user).Error; err != nil {
		return nil, notFound(err, errs.ErrUserNotFound)
	}
	return &user, nil
}

func (t *gormTx) CreateUser(ctx context.Context, u *models.User) error {
	return t.session(ctx).Create(u).Error
}

func (t *gormTx) GetWorkspace(ctx context.Context, id uuid.UUID) (*models.Workspace, error) {
	var ws models.Workspace
	if err := t.session(ctx).Scopes(scopes.ForUpdate, scopes.WithID(id)).First(&ws).Error; err != nil {
		return nil, notFound(err, errs.ErrWorkspaceNotFound)
	}
	return &ws, nil
}

func (t *gormTx) GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	var team models.Team
	if err := t.session(ctx).Scopes(scopes.ForUpdate, scopes.WithID(id)).First(&team).Error; err != nil {
		return nil, notFound(err, errs.ErrTeamNotFound)
	}
	return &team, nil
}

func (t *gormTx) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	if err := t.session(ctx).Scopes(scopes.ForUpdate, scopes.WithID(id)).First(&project).Error; err != nil {
		return nil, notFound(err, errs.ErrProjectNotFound)
	}
	return &project, nil
}

func (t *gormTx) GetWorkspaceMember(ctx context.Context, id uuid.UUID) (*models.WorkspaceMember, error) {
	var wm models.WorkspaceMember
	if err := t.session(ctx).Scopes(scopes.WithID(id)).First(&wm).Error; err != nil {
		return nil, notFound(err, errs.ErrMemberNotFound)
	}
	return &wm, nil
}

func findMembers(q *gorm.DB, t types.ScopeType) ([]models.Membership, error) {
	out := []models.Membership{}
	switch t {
	case types.SCOPE_WORKSPACE:
		var rows []models.WorkspaceMember
		if err := q.Find(&rows).Error; err != nil {
			return nil, err
		}
		for _, r := range rows {
			out = append(out, r.Membership())
		}
	case types.SCOPE_TEAM:
		var rows []models.TeamMember
		if err := q.Find(&rows).Error; err != nil {
			return nil, err
		}
		for _, r := range rows {
			out = append(out, r.Membership())
		}
	case types.SCOPE_PROJECT:
		var rows []models.ProjectMember
		if err := q.Find(&rows).Error; err != nil {
			return nil, err
		}
		for _, r := range rows {
			out = append(out, r.Membership())
		}
	}
	return out, nil
}

func (t *gormTx) ListMembers(ctx context.Context, scope types.Scope) ([]models.Membership, error) {
	table, err := tableFor(scope.Type)
	if err != nil {
		return nil, err
	}
	q := t.session(ctx).Scopes(scopes.ForUpdate, scopes.OldestFirst).Where(table.scope+" = ?", scope.ID)
	return findMembers(q, scope.Type)
}

func (t *gormTx) FindMemberBySubject(ctx context.Context, scope types.Scope, subjectID uuid.UUID) (*models.Membership, error) {
	table, err := tableFor(scope.Type)
	if err != nil {
		return nil, err
	}
	q := t.session(ctx).Scopes(scopes.ForUpdate).
		Where(table.scope+" = ?", scope.ID).
		Where(table.subject+" = ?", subjectID).
		Limit(1)
	members, err := findMembers(q, scope.Type)
	if err != nil || len(members) == 0 {
		return nil, err
	}
	return &members[0], nil
}

func (t *gormTx) CreateMember(ctx context.Context, workspaceID uuid.UUID, m *models.Membership) error {
	var row any
	switch m.Scope.Type {
	case types.SCOPE_WORKSPACE:
		row = &models.WorkspaceMember{ID: m.ID, UserID: m.SubjectID, WorkspaceID: m.Scope.ID, Role: m.Role, AddedAt: m.AddedAt}
	case types.SCOPE_TEAM:
		row = &models.TeamMember{ID: m.ID, WorkspaceMemberID: m.SubjectID, TeamID: m.Scope.ID, WorkspaceID: workspaceID, Role: m.Role, AddedAt: m.AddedAt}
	case types.SCOPE_PROJECT:
		row = &models.ProjectMember{ID: m.ID, WorkspaceMemberID: m.SubjectID, ProjectID: m.Scope.ID, Role: m.Role, AddedAt: m.AddedAt}
	default:
		return fmt.Errorf("unknown scope type %q", m.Scope.Type)
	}
	return t.session(ctx).Create(row).Error
}

func (t *gormTx) SetMemberRole(ctx context.Context, scope types.Scope, id uuid.UUID, from, to types.Role) (int64, error) {
	table, err := tableFor(scope.Type)
	if err != nil {
		return 0, err
	}
	res := t.session(ctx).Model(table.model).
		Where("id = ?", id).
		Where(table.scope+" = ?", scope.ID).
		Where("role = ?", from).
		Update("role", to)
	return res.RowsAffected, res.Error
}

func (t *gormTx) DeleteMembers(ctx context.Context, scope types.Scope, ids ...uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	table, err := tableFor(scope.Type)
	if err != nil {
		return 0, err
	}
	res := t.session(ctx).Where(table.scope+" = ?", scope.ID).Scopes(scopes.WithIDs(ids...)).Delete(table.model)
	return res.RowsAffected, res.Error
}

func (t *gormTx) DeleteAllMembers(ctx context.Context, scope types.Scope) (int64, error) {
	table, err := tableFor(scope.Type)
	if err != nil {
		return 0, err
	}
	res := t.session(ctx).Where(table.scope+" = ?", scope.ID).Delete(table.model)
	return res.RowsAffected, res.Error
}

func (t *gormTx) ListSubjectMemberships(ctx context.Context, workspaceID, workspaceMemberID uuid.UUID) ([]models.Membership, error) {
	teams, err := findMembers(t.session(ctx).
		Where("workspace_member_id = ?", workspaceMemberID).
		Scopes(scopes.InWorkspace(workspaceID), scopes.OldestFirst), types.SCOPE_TEAM)
	if err != nil {
		return nil, err
	}
	projects, err := findMembers(t.session(ctx).Model(&models.ProjectMember{}).
		Joins("JOIN projects ON projects.id = project_members.project_id").
		Where("project_members.workspace_member_id = ?", workspaceMemberID).
		Where("projects.workspace_id = ?", workspaceID).
		Order("project_members.added_at asc"), types.SCOPE_PROJECT)
	if err != nil {
		return nil, err
	}
	return append(teams, projects...), nil
}

func (t *gormTx) HasProjectTeam(ctx context.Context, projectID, teamID uuid.UUID) (bool, error) {
	var links []models.ProjectTeam
	err := t.session(ctx).Scopes(scopes.ForUpdate).
		Where("project_id = ? AND team_id = ?", projectID, teamID).
		Limit(1).
		Find(&links).Error
	return len(links) > 0, err
}

func (t *gormTx) CreateProjectTeam(ctx context.Context, link *models.ProjectTeam) error {
	return t.session(ctx).Create(link).Error
}

func (t *gormTx) DeleteProjectTeam(ctx context.Context, projectID, teamID uuid.UUID) (int64, error) {
	res := t.session(ctx).Where("project_id = ? AND team_id = ?", projectID, teamID).Delete(&models.ProjectTeam{})
	return res.RowsAffected, res.Error
}

func (t *gormTx) DeleteProjectTeamsForTeam(ctx context.Context, teamID uuid.UUID) (int64, error) {
	res := t.session(ctx).Where("team_id = ?", teamID).Delete(&models.ProjectTeam{})
	return res.RowsAffected, res.Error
}

func (t *gormTx) DeleteProjectTeamsForProject(ctx context.Context, projectID uuid.UUID) (int64, error) {
	res := t.session(ctx).Where("project_id = ?", projectID).Delete(&models.ProjectTeam{})
	return res.RowsAffected, res.Error
}

func (t *gormTx) ListProjectIDsForTeam(ctx context.Context, teamID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := t.session(ctx).Model(&models.ProjectTeam{}).Where("team_id = ?", teamID).Order("project_id").Pluck("project_id", &ids).Error
	return ids, err
}

func (t *gormTx) ListTeamIDsForProject(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	err := t.session(ctx).Model(&models.ProjectTeam{}).Where("project_id = ?", projectID).Order("team_id").Pluck("team_id", &ids).Error
	return ids, err
}

func (t *gormTx) CreateWorkspace(ctx context.Context, ws *models.Workspace) error {
	return t.session(ctx).Create(ws).Error
}

func (t *gormTx) CreateTeam(ctx context.Context, team *models.Team) error {
	return t.session(ctx).Create(team).Error
}

func (t *gormTx) CreateProject(ctx context.Context, project *models.Project) error {
	return t.session(ctx).Create(project).Error
}

func (t *gormTx) ListTeamIDs(ctx context.Context, workspaceID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := t.session(ctx).Model(&models.Team{}).Scopes(scopes.InWorkspace(workspaceID)).Order("id").Pluck("id", &ids).Error
	return ids, err
}

func (t *gormTx) ListProjectIDs(ctx context.Context, workspaceID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := t.session(ctx).Model(&models.Project{}).Scopes(scopes.InWorkspace(workspaceID)).Order("id").Pluck("id", &ids).Error
	return ids, err
}

func (t *gormTx) DeleteTeam(ctx context.Context, id uuid.UUID) (int64, error) {
	res := t.session(ctx).Scopes(scopes.WithID(id)).Delete(&models.Team{})
	return res.RowsAffected, res.Error
}

func (t *gormTx) DeleteProject(ctx context.Context, id uuid.UUID) (int64, error) {
	res := t.session(ctx).Scopes(scopes.WithID(id)).Delete(&models.Project{})
	return res.RowsAffected, res.Error
}

func (t *gormTx) DeleteWorkspace(ctx context.Context, id uuid.UUID) (int64, error) {
	res := t.session(ctx).Scopes(scopes.WithID(id)).Delete(&models.Workspace{})
	return res.RowsAffected, res.Error
}

func (t *gormTx) AppendTrail(ctx context.Context, entry *models.TrailLog) error {
	return t.session(ctx).Create(entry).Error
}

type anomalyRow struct {
	ScopeID uuid.UUID
	Members int64
	Owners  int64
}

// OwnershipAnomalies groups every membership table by scope and reports the groups whose owner
// count is not exactly one. It reads committed data and takes no locks.
func (s *Store) OwnershipAnomalies(ctx context.Context) ([]membership.Anomaly, error) {
	var out []membership.Anomaly
	for _, scopeType := range []types.ScopeType{types.SCOPE_WORKSPACE, types.SCOPE_TEAM, types.SCOPE_PROJECT} {
		table, _ := tableFor(scopeType)
		var rows []anomalyRow
		err := s.db.WithContext(ctx).Model(table.model).
			Select(table.scope+" AS scope_id, COUNT(*) AS members, COUNT(*) FILTER (WHERE role = ?) AS owners", types.ROLE_OWNER).
			Group(table.scope).
			Having("COUNT(*) FILTER (WHERE role = ?) <> 1", types.ROLE_OWNER).
			Scan(&rows).Error
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			out = append(out, membership.Anomaly{
				Scope:   types.Scope{Type: scopeType, ID: r.ScopeID},
				Members: r.Members,
				Owners:  r.Owners,
			})
		}
	}
	return out, nil
}
