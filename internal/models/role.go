package models

import "strings"

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleCustomer Role = "CUSTOMER"
)

// IsAdmin reports whether the raw role claim names the admin role.
func IsAdmin(role string) bool {
	return strings.EqualFold(strings.TrimSpace(role), string(RoleAdmin))
}
