package models

import "fmt"

// Group is a set of students in one course with a single leader.
type Group struct {
	ID        string   `json:"id"`
	CourseID  string   `json:"courseId"`
	Name      string   `json:"name"`
	LeaderID  string   `json:"leaderId"`
	MemberIDs []string `json:"memberIds"`
}

// HasMember reports whether userID belongs to the group.
func (g Group) HasMember(userID string) bool {
	return containsString(g.MemberIDs, userID)
}

// IsLeader reports whether userID leads the group.
func (g Group) IsLeader(userID string) bool {
	return g.LeaderID != "" && g.LeaderID == userID
}

// CheckInvariants verifies that the leader is a member.
func (g Group) CheckInvariants() error {
	if !g.HasMember(g.LeaderID) {
		return fmt.Errorf("group %s: leader %q is not a member", g.ID, g.LeaderID)
	}
	return nil
}

// FindGroup returns the group with the given id.
func FindGroup(groups []Group, id string) (Group, bool) {
	for _, g := range groups {
		if g.ID == id {
			return g, true
		}
	}
	return Group{}, false
}
