package vocab

// Action is something a user may see or do.
type Action string

const (
	ActionViewDashboard       Action = "view_dashboard"
	ActionViewMaterials       Action = "view_materials"
	ActionEditMaterials       Action = "edit_materials"
	ActionDispense            Action = "dispense"
	ActionViewUsers           Action = "view_users"
	ActionManageUsers         Action = "manage_users"
	ActionViewRequests        Action = "view_requests"
	ActionCreateRequest       Action = "create_request"
	ActionApproveRequest      Action = "approve_request"
	ActionViewNarcoticJournal Action = "view_narcotic_journal"
	ActionViewReports         Action = "view_reports"
)

type actionSet map[Action]struct{}

func setOf(actions ...Action) actionSet {
	s := make(actionSet, len(actions))
	for _, a := range actions {
		s[a] = struct{}{}
	}
	return s
}

var capabilities = map[Role]actionSet{
	RoleAdmin: setOf(
		ActionViewDashboard, ActionViewMaterials, ActionEditMaterials, ActionDispense,
		ActionViewUsers, ActionManageUsers,
		ActionViewRequests, ActionCreateRequest, ActionApproveRequest,
		ActionViewNarcoticJournal, ActionViewReports,
	),
	RoleHeadNurse: setOf(
		ActionViewDashboard, ActionViewMaterials, ActionEditMaterials, ActionDispense,
		ActionViewUsers,
		ActionViewRequests, ActionCreateRequest,
		ActionViewNarcoticJournal, ActionViewReports,
	),
	RoleStaff: setOf(
		ActionViewDashboard, ActionViewMaterials, ActionDispense,
	),
}

// Can reports whether the role is allowed to perform the action.
// Unknown roles can do nothing.
func (r Role) Can(a Action) bool {
	set, ok := capabilities[r]
	if !ok {
		return false
	}
	_, ok = set[a]
	return ok
}
