package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bigjbird1/vowswap/internal/model"
)

func TestCan(t *testing.T) {
	tests := []struct {
		role model.Role
		cap  Capability
		want bool
	}{
		{model.RoleAdmin, Moderate, true},
		{model.RoleModerator, Moderate, true},
		{model.RoleSeller, Moderate, false},
		{model.RoleCustomer, Moderate, false},
		{model.RoleAdmin, ManagePromotions, true},
		{model.RoleSeller, ManagePromotions, true},
		{model.RoleModerator, ManagePromotions, false},
		{model.RoleCustomer, ManagePromotions, false},
		{model.RoleAdmin, RedeemForOthers, true},
		{model.RoleSeller, RedeemForOthers, false},
		{model.Role(""), Moderate, false},
		{model.RoleAdmin, Capability("unknown"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+string(tt.cap), func(t *testing.T) {
			assert.Equal(t, tt.want, Can(tt.role, tt.cap))
		})
	}
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole(model.RoleCustomer))
	assert.False(t, ValidRole(model.Role("OWNER")))
}
