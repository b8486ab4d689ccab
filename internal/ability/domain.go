// Package ability implements the profile permission model: a static
// role-to-grant table and a per-request Ability answering whether the
// current account may perform an action on a subject type.
package ability

// Role is the permission level a member holds on a profile.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleWrite Role = "WRITE"
	RoleRead  Role = "READ"
)

// Action is an operation an account can attempt.
type Action string

const (
	ActionManage Action = "manage"
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionInvite Action = "invite"
)

// Subject is a resource type an action applies to.
type Subject string

const (
	SubjectProfile       Subject = "Profile"
	SubjectTransaction   Subject = "Transaction"
	SubjectCategory      Subject = "Category"
	SubjectEvent         Subject = "Event"
	SubjectProfileMember Subject = "ProfileMember"
	SubjectAll           Subject = "all"
)

// Grant pairs an allowed action with the subject it applies to.
type Grant struct {
	Action  Action  `json:"action"`
	Subject Subject `json:"subject"`
}

// ParseRole maps a stored permission string to a Role. Unknown values
// return false so callers fall back to the empty grant set.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleWrite:
		return RoleWrite, true
	case RoleRead:
		return RoleRead, true
	}
	return "", false
}
