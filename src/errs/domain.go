package errs

var (
	ErrWorkspaceNotFound   = New(NotFound, "workspace not found")
	ErrTeamNotFound        = New(NotFound, "team not found")
	ErrProjectNotFound     = New(NotFound, "project not found")
	ErrUserNotFound        = New(NotFound, "user not found")
	ErrMemberNotFound      = New(NotFound, "member not found")
	ErrAssignmentNotFound  = New(NotFound, "team is not assigned to this project")
	ErrOwnershipChanged    = New(NotFound, "membership changed while transferring ownership")
	ErrAlreadyMember       = New(Conflict, "already a member")
	ErrAlreadyAssigned     = New(Conflict, "team is already assigned to this project")
	ErrSelfTransfer        = New(Conflict, "cannot transfer ownership to the current owner")
	ErrRoleUnchanged       = New(Conflict, "member already has this role")
	ErrScopeEmpty          = New(Conflict, "no members")
	ErrNotOwner            = New(Forbidden, "only the owner can perform this action")
	ErrNotManager          = New(Forbidden, "only an owner or admin can perform this action")
	ErrAdminRemovingOwner  = New(Forbidden, "an admin cannot remove the owner")
	ErrOwnerViaTransfer    = New(Forbidden, "ownership can only change through a transfer")
	ErrOwnerRoleLocked     = New(Forbidden, "the owner's role can only change through a transfer")
	ErrWorkspaceMismatch   = New(Forbidden, "member does not belong to this workspace")
	ErrUnassignEmptiesProj = New(Forbidden, "unassigning this team would remove every project member")
	ErrInvalidRole         = New(Invalid, "invalid role")
)
