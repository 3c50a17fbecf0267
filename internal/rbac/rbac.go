// Package rbac holds the static role and permission policy for workspace
// members. The table is fixed policy, not configuration: it is built once
// at init and never mutated.
package rbac

type Role string

const (
	RoleOwner   Role = "OWNER"
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleAgent   Role = "AGENT"
	RoleViewer  Role = "VIEWER"
)

// Roles lists all roles in descending order of privilege. The ordering is
// informal; the permission table below is authoritative.
var Roles = []Role{RoleOwner, RoleAdmin, RoleManager, RoleAgent, RoleViewer}

func IsValidRole(r Role) bool {
	for _, role := range Roles {
		if role == r {
			return true
		}
	}
	return false
}

// Action is one gated capability. The namespace is flat; the dotted
// names are a readability convention, not a hierarchy.
type Action string

const (
	ActionClientUpdateName Action = "client.update.name"
	ActionClientUpdateAll  Action = "client.update.all"
	ActionClientDelete     Action = "client.delete"
	ActionDealUpdateStage  Action = "deal.update.stage"
	ActionDealUpdateAmount Action = "deal.update.amount"
	ActionDealUpdateAll    Action = "deal.update.all"
	ActionDealDelete       Action = "deal.delete"
	ActionChecklistUpdate  Action = "checklist.update"
	ActionTaskUpdateAll    Action = "task.update.all"
	ActionTaskDelete       Action = "task.delete"
)

// Actions lists every action in the permission table.
var Actions = []Action{
	ActionClientUpdateName,
	ActionClientUpdateAll,
	ActionClientDelete,
	ActionDealUpdateStage,
	ActionDealUpdateAmount,
	ActionDealUpdateAll,
	ActionDealDelete,
	ActionChecklistUpdate,
	ActionTaskUpdateAll,
	ActionTaskDelete,
}

var permissions = map[Role]map[Action]bool{
	RoleOwner:   allActions(),
	RoleAdmin:   allActions(),
	RoleManager: {
		ActionClientUpdateName: true,
		ActionClientUpdateAll:  true,
		ActionDealUpdateStage:  true,
		ActionDealUpdateAmount: true,
		ActionDealUpdateAll:    true,
		ActionChecklistUpdate:  true,
		ActionTaskUpdateAll:    true,
	},
	RoleAgent: {
		ActionClientUpdateName: true,
		ActionDealUpdateStage:  true,
		ActionDealUpdateAmount: true,
		ActionChecklistUpdate:  true,
		ActionTaskUpdateAll:    true,
	},
	RoleViewer: {},
}

func allActions() map[Action]bool {
	set := make(map[Action]bool, len(Actions))
	for _, a := range Actions {
		set[a] = true
	}
	return set
}

// Can reports whether role may perform action. Unknown roles and unknown
// actions fail closed.
func Can(role Role, action Action) bool {
	set, ok := permissions[role]
	if !ok {
		return false
	}
	return set[action]
}
