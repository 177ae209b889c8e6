package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/renta-rw/renta-backend/shared/models"
)

func TestSuperAdminBypassesTable(t *testing.T) {
	assert.True(t, Allow(models.RoleSuperAdmin, ResAuditLog, ActionDelete))
	assert.True(t, Allow(models.RoleSuperAdmin, ResCommissionRule, ActionCreate))
	assert.True(t, Allow(models.RoleSuperAdmin, Resource("anything"), Action("whatever")))
}

func TestPolicyTable(t *testing.T) {
	cases := []struct {
		role     models.Role
		resource Resource
		action   Action
		want     bool
	}{
		{models.RoleOwner, ResProperty, ActionDelete, true},
		{models.RoleOwner, ResPayment, ActionDelete, false},
		{models.RoleOwner, ResCommissionRule, ActionRead, false},
		{models.RoleOwner, ResAuditLog, ActionRead, false},

		{models.RoleAgency, ResProperty, ActionCreate, true},
		{models.RoleAgency, ResManager, ActionCreate, true},

		{models.RoleManager, ResProperty, ActionDelete, false},
		{models.RoleManager, ResProperty, ActionUpdate, true},
		{models.RoleManager, ResManager, ActionDelete, false},
		{models.RoleManager, ResPayment, ActionCreate, true},

		{models.RoleTenant, ResPayment, ActionCreate, false},
		{models.RoleTenant, ResMaintenance, ActionCreate, true},
		{models.RoleTenant, ResProperty, ActionRead, false},
		{models.RoleTenant, ResDocument, ActionUpdate, true},

		{models.RoleMaintenance, ResMaintenance, ActionUpdate, true},
		{models.RoleMaintenance, ResMaintenance, ActionCreate, false},
		{models.RoleMaintenance, ResPayment, ActionRead, false},

		{models.RoleAgent, ResProperty, ActionCreate, true},
		{models.RoleAgent, ResProperty, ActionRead, false},
		{models.RoleAgent, ResTenant, ActionCreate, true},
		{models.RoleAgent, ResCommission, ActionRead, true},
		{models.RoleAgent, ResCommission, ActionUpdate, false},
	}

	for _, tc := range cases {
		got := Allow(tc.role, tc.resource, tc.action)
		assert.Equal(t, tc.want, got, "%s %s %s", tc.role, tc.action, tc.resource)
	}
}

func TestUnknownRoleIsDenied(t *testing.T) {
	assert.False(t, Allow(models.Role("intern"), ResProperty, ActionRead))
}
