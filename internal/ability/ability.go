package ability

// Ability is an immutable permission-check object built from one role's
// grant set. The zero value denies everything.
type Ability struct {
	grants map[Grant]struct{}
}

// New builds an Ability for the given role.
func New(role Role) Ability {
	grants := grantTable[role]
	set := make(map[Grant]struct{}, len(grants))
	for _, g := range grants {
		set[g] = struct{}{}
	}
	return Ability{grants: set}
}

// Empty returns the deny-everything Ability used when the caller holds no
// membership on the profile (not a member, or invitation still pending).
func Empty() Ability {
	return Ability{}
}

// Can reports whether the action is allowed on the subject. Three match
// rules are evaluated in order, first match wins:
//
//  1. the exact (action, subject) grant
//  2. (manage, subject) covering every action on that subject
//  3. (action, all) or (manage, all) covering every subject
//
// The table currently holds no negative rules, so a miss on all three
// means deny.
func (a Ability) Can(action Action, subject Subject) bool {
	if len(a.grants) == 0 {
		return false
	}
	if _, ok := a.grants[Grant{Action: action, Subject: subject}]; ok {
		return true
	}
	if _, ok := a.grants[Grant{Action: ActionManage, Subject: subject}]; ok {
		return true
	}
	if _, ok := a.grants[Grant{Action: action, Subject: SubjectAll}]; ok {
		return true
	}
	_, ok := a.grants[Grant{Action: ActionManage, Subject: SubjectAll}]
	return ok
}
