package authz

// Action is a gated operation on a project.
type Action string

const (
	ActionView   Action = "view"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
	// ActionViewMembers covers reading the collaborator and invitation
	// lists; any collaborator may do this.
	ActionViewMembers Action = "view_members"
	// ActionManageMembers covers inviting, role changes and removal;
	// only owner and admin may do this. The view/manage asymmetry is
	// deliberate.
	ActionManageMembers Action = "manage_members"
)

// policy is the single permission table. Roles absent from a row are
// denied.
var policy = map[Action]map[Role]bool{
	ActionView: {
		RoleOwner:       true,
		RoleAdmin:       true,
		RoleContributor: true,
		RoleViewer:      true,
	},
	ActionEdit: {
		RoleOwner:       true,
		RoleAdmin:       true,
		RoleContributor: true,
	},
	ActionDelete: {
		RoleOwner: true,
		RoleAdmin: true,
	},
	ActionViewMembers: {
		RoleOwner:       true,
		RoleAdmin:       true,
		RoleContributor: true,
		RoleViewer:      true,
	},
	ActionManageMembers: {
		RoleOwner: true,
		RoleAdmin: true,
	},
}

// Can reports whether a role is allowed to perform an action.
func Can(role Role, action Action) bool {
	return policy[action][role]
}
