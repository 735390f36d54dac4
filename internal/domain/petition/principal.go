package petition

import (
	"fmt"
	"strings"
)

// Role is an application role. The three-role model comes straight from the
// registry's operating manual: administrators run the custody lifecycle,
// data-entry clerks type adhesion lines, auditors read analytics.
type Role string

const (
	RoleAdmin     Role = "administrador"
	RoleDataEntry Role = "digitador"
	RoleAuditor   Role = "auditor"
)

var Roles = []Role{RoleAdmin, RoleDataEntry, RoleAuditor}

func ValidRole(r Role) bool {
	for _, v := range Roles {
		if v == r {
			return true
		}
	}
	return false
}

// Principal is the caller's identity, resolved by the transport layer and
// passed explicitly into every operation.
type Principal struct {
	Subject string
	Role    Role
}

// Authorizer is the role-check collaborator. Implementations return
// ErrUnauthorized for an anonymous principal and ErrForbidden (wrapped with
// the permitted role list) when the role is not allowed.
type Authorizer interface {
	Require(principal Principal, allowed ...Role) error
}

// AccessDeniedMessage is the human-readable text surfaced in result shapes
// when a role check fails.
func AccessDeniedMessage(allowed []Role) string {
	names := make([]string, len(allowed))
	for i, r := range allowed {
		names[i] = string(r)
	}
	return fmt.Sprintf("access denied (requires one of: %s)", strings.Join(names, ", "))
}
