// Package authz maps operator roles to the capabilities they grant.
package authz

import "github.com/ManuelReschke/SubDesk/app/models"

type Permission string

const (
	ManageSubscriptions Permission = "subscriptions:manage"
	ViewCustomers       Permission = "customers:view"
	ManageCustomers     Permission = "customers:manage"
	ManageContent       Permission = "content:manage"
	ManageUsers         Permission = "users:manage"
	ViewOwnAccount      Permission = "account:view"
)

var table = map[models.Role][]Permission{
	models.RoleAdmin: {
		ManageSubscriptions,
		ViewCustomers,
		ManageCustomers,
		ManageContent,
		ManageUsers,
		ViewOwnAccount,
	},
	models.RoleUser: {
		ViewOwnAccount,
	},
}

// Can reports whether role grants p. Unknown roles grant nothing.
func Can(role models.Role, p Permission) bool {
	for _, granted := range table[role] {
		if granted == p {
			return true
		}
	}
	return false
}

// Permissions lists what role grants.
func Permissions(role models.Role) []Permission {
	return append([]Permission(nil), table[role]...)
}
