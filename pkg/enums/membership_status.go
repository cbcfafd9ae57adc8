package enums

import (
	"fmt"
	"strings"
)

// MembershipStatus tracks a roster entry. Only approved members count toward a group's population.
type MembershipStatus string

const (
	MembershipStatusPending  MembershipStatus = "pending"
	MembershipStatusApproved MembershipStatus = "approved"
	MembershipStatusInactive MembershipStatus = "inactive"
)

var membershipStatuses = map[MembershipStatus]bool{
	MembershipStatusPending:  false,
	MembershipStatusApproved: true,
	MembershipStatusInactive: false,
}

func (m MembershipStatus) IsValid() bool {
	_, ok := membershipStatuses[m]
	return ok
}

// CountsTowardRoster reports whether members in this status are expected to acknowledge alerts.
func (m MembershipStatus) CountsTowardRoster() bool {
	return membershipStatuses[m]
}

// ParseMembershipStatus accepts any casing.
func ParseMembershipStatus(value string) (MembershipStatus, error) {
	status := MembershipStatus(strings.ToLower(strings.TrimSpace(value)))
	if !status.IsValid() {
		return "", fmt.Errorf("invalid membership status %q", value)
	}
	return status, nil
}
