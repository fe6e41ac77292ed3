// Package rbac описывает права ролей независимо от механизма аутентификации.
package rbac

import (
	"github.com/samber/lo"

	"github.com/bigjbird1/vowswap/internal/model"
)

// Capability — именованное право, выдаваемое набору ролей.
type Capability string

const (
	// Moderate — просмотр жалоб и применение действий модерации.
	Moderate Capability = "moderate"
	// ManagePromotions — создание и просмотр акций и купонов.
	ManagePromotions Capability = "manage_promotions"
	// RedeemForOthers — проверка и погашение купона от имени другого пользователя.
	RedeemForOthers Capability = "redeem_for_others"
)

var capabilities = map[Capability][]model.Role{
	Moderate:         {model.RoleAdmin, model.RoleModerator},
	ManagePromotions: {model.RoleAdmin, model.RoleSeller},
	RedeemForOthers:  {model.RoleAdmin},
}

// Can сообщает, обладает ли роль указанным правом.
func Can(role model.Role, c Capability) bool {
	return lo.Contains(capabilities[c], role)
}

// ValidRole сообщает, является ли роль известной.
func ValidRole(role model.Role) bool {
	return lo.Contains([]model.Role{model.RoleAdmin, model.RoleModerator, model.RoleSeller, model.RoleCustomer}, role)
}
