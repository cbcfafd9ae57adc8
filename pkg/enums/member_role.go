package enums

import (
	"fmt"
	"strings"
)

// MemberRole is the ARES position a member holds within a group.
type MemberRole string

const (
	// MemberRoleEC is the Emergency Coordinator.
	MemberRoleEC MemberRole = "EC"
	// MemberRoleAEC is an Assistant Emergency Coordinator.
	MemberRoleAEC    MemberRole = "AEC"
	MemberRoleAdmin  MemberRole = "Admin"
	MemberRolePIO    MemberRole = "PIO"
	MemberRoleMember MemberRole = "Member"
)

var validMemberRoles = []MemberRole{
	MemberRoleEC,
	MemberRoleAEC,
	MemberRoleAdmin,
	MemberRolePIO,
	MemberRoleMember,
}

var adminCapableRoles = map[MemberRole]struct{}{
	MemberRoleEC:    {},
	MemberRoleAEC:   {},
	MemberRoleAdmin: {},
}

// String implements fmt.Stringer.
func (m MemberRole) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MemberRole.
func (m MemberRole) IsValid() bool {
	for _, candidate := range validMemberRoles {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMemberRole converts raw input into a MemberRole. Matching ignores case.
func ParseMemberRole(value string) (MemberRole, error) {
	trimmed := strings.TrimSpace(value)
	for _, candidate := range validMemberRoles {
		if strings.EqualFold(string(candidate), trimmed) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid member role %q", value)
}

// IsAdminCapable reports whether any of the roles may create, edit or delete alerts.
func IsAdminCapable(roles []MemberRole) bool {
	for _, role := range roles {
		if _, ok := adminCapableRoles[role]; ok {
			return true
		}
	}
	return false
}
