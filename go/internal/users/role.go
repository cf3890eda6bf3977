package users

import (
	"strings"

	"github.com/mcdev12/gooseclicker/go/internal/models"
)

// reservedRoles maps lower-cased usernames to the role they get on first sight.
var reservedRoles = map[string]models.Role{
	"admin":  models.RoleAdmin,
	"никита": models.RoleSpecial,
}

// DeriveRole is deterministic and case-insensitive.
func DeriveRole(username string) models.Role {
	if role, ok := reservedRoles[strings.ToLower(strings.TrimSpace(username))]; ok {
		return role
	}
	return models.RoleStandard
}
