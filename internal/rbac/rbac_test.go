package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOwnerAndAdminHoldEveryAction(t *testing.T) {
	for _, role := range []Role{RoleOwner, RoleAdmin} {
		for _, action := range Actions {
			assert.True(t, Can(role, action), "%s should be allowed %s", role, action)
		}
	}
}

func TestManagerPermissions(t *testing.T) {
	allowed := []Action{
		ActionClientUpdateName,
		ActionClientUpdateAll,
		ActionDealUpdateStage,
		ActionDealUpdateAmount,
		ActionDealUpdateAll,
		ActionChecklistUpdate,
		ActionTaskUpdateAll,
	}
	for _, action := range allowed {
		assert.True(t, Can(RoleManager, action), "MANAGER should be allowed %s", action)
	}

	assert.False(t, Can(RoleManager, ActionClientDelete))
	assert.False(t, Can(RoleManager, ActionDealDelete))
	assert.False(t, Can(RoleManager, ActionTaskDelete))
}

func TestAgentPermissions(t *testing.T) {
	allowed := []Action{
		ActionClientUpdateName,
		ActionDealUpdateStage,
		ActionDealUpdateAmount,
		ActionChecklistUpdate,
		ActionTaskUpdateAll,
	}
	for _, action := range allowed {
		assert.True(t, Can(RoleAgent, action), "AGENT should be allowed %s", action)
	}

	denied := []Action{
		ActionClientUpdateAll,
		ActionClientDelete,
		ActionDealUpdateAll,
		ActionDealDelete,
		ActionTaskDelete,
	}
	for _, action := range denied {
		assert.False(t, Can(RoleAgent, action), "AGENT should be denied %s", action)
	}
}

func TestViewerHasNoActions(t *testing.T) {
	for _, action := range Actions {
		assert.False(t, Can(RoleViewer, action), "VIEWER should be denied %s", action)
	}
}

func TestCanFailsClosed(t *testing.T) {
	assert.False(t, Can(Role("SUPERUSER"), ActionDealUpdateAll))
	assert.False(t, Can(RoleOwner, Action("deal.update.everything")))
	assert.False(t, Can(Role(""), Action("")))
}

func TestIsValidRole(t *testing.T) {
	for _, role := range Roles {
		assert.True(t, IsValidRole(role))
	}
	assert.False(t, IsValidRole(Role("owner")))
	assert.False(t, IsValidRole(Role("")))
}
