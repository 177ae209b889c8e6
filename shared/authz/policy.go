package authz

import (
	"github.com/renta-rw/renta-backend/shared/models"
)

// Resource names an API surface the policy gates.
type Resource string

const (
	ResProperty         Resource = "property"
	ResUnit             Resource = "unit"
	ResTenant           Resource = "tenant"
	ResPayment          Resource = "payment"
	ResMaintenance      Resource = "maintenance"
	ResManager          Resource = "manager"
	ResDocument         Resource = "document"
	ResNotification     Resource = "notification"
	ResCommissionRule   Resource = "commission_rule"
	ResAgentApplication Resource = "agent_application"
	ResAgentTransaction Resource = "agent_transaction"
	ResCommission       Resource = "commission"
	ResAuditLog         Resource = "audit_log"
	ResUser             Resource = "user"
)

// Action is a coarse verb; capability flags refine it per property for
// manager-role callers.
type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

type actionSet map[Action]bool

func acts(as ...Action) actionSet {
	s := make(actionSet, len(as))
	for _, a := range as {
		s[a] = true
	}
	return s
}

var crud = acts(ActionRead, ActionCreate, ActionUpdate, ActionDelete)

// policyTable is the single source of truth for role-level access. Scope
// membership and manager capability flags are checked separately, after
// this gate.
var policyTable = map[models.Role]map[Resource]actionSet{
	models.RoleOwner: {
		ResProperty:         crud,
		ResUnit:             crud,
		ResTenant:           crud,
		ResPayment:          acts(ActionRead, ActionCreate),
		ResMaintenance:      crud,
		ResManager:          crud,
		ResDocument:         crud,
		ResNotification:     acts(ActionRead, ActionUpdate),
		ResAgentTransaction: acts(ActionRead),
		ResCommission:       acts(ActionRead, ActionUpdate),
	},
	models.RoleAgency: {
		ResProperty:         crud,
		ResUnit:             crud,
		ResTenant:           crud,
		ResPayment:          acts(ActionRead, ActionCreate),
		ResMaintenance:      crud,
		ResManager:          crud,
		ResDocument:         crud,
		ResNotification:     acts(ActionRead, ActionUpdate),
		ResAgentTransaction: acts(ActionRead),
		ResCommission:       acts(ActionRead, ActionUpdate),
	},
	models.RoleManager: {
		ResProperty:     acts(ActionRead, ActionUpdate),
		ResUnit:         acts(ActionRead, ActionCreate, ActionUpdate),
		ResTenant:       acts(ActionRead, ActionCreate, ActionUpdate),
		ResPayment:      acts(ActionRead, ActionCreate),
		ResMaintenance:  acts(ActionRead, ActionCreate, ActionUpdate),
		ResManager:      acts(ActionRead, ActionUpdate),
		ResDocument:     acts(ActionRead, ActionCreate),
		ResNotification: acts(ActionRead, ActionUpdate),
	},
	models.RoleTenant: {
		ResTenant:       acts(ActionRead),
		ResUnit:         acts(ActionRead),
		ResPayment:      acts(ActionRead),
		ResMaintenance:  acts(ActionRead, ActionCreate),
		ResDocument:     acts(ActionRead, ActionUpdate),
		ResNotification: acts(ActionRead, ActionUpdate),
	},
	models.RoleMaintenance: {
		ResMaintenance:  acts(ActionRead, ActionUpdate),
		ResNotification: acts(ActionRead, ActionUpdate),
	},
	models.RoleAgent: {
		ResProperty:         acts(ActionCreate),
		ResTenant:           acts(ActionCreate),
		ResAgentTransaction: acts(ActionRead, ActionCreate),
		ResCommission:       acts(ActionRead),
		ResNotification:     acts(ActionRead, ActionUpdate),
	},
}

// Allow is the one authorization policy function: given (role, resource,
// action) it returns allow or deny. super_admin bypasses the table.
func Allow(role models.Role, resource Resource, action Action) bool {
	if role == models.RoleSuperAdmin {
		return true
	}
	perms, ok := policyTable[role]
	if !ok {
		return false
	}
	set, ok := perms[resource]
	if !ok {
		return false
	}
	return set[action]
}
