package ability

// grantTable is the total, static role-to-grant mapping. ADMIN holds a
// single manage-all grant; every other capability it has is derived from
// the escalation rules in Ability.Can rather than listed here.
var grantTable = map[Role][]Grant{
	RoleAdmin: {
		{Action: ActionManage, Subject: SubjectAll},
	},
	RoleWrite: {
		{Action: ActionRead, Subject: SubjectProfile},
		{Action: ActionRead, Subject: SubjectProfileMember},
		{Action: ActionCreate, Subject: SubjectTransaction},
		{Action: ActionRead, Subject: SubjectTransaction},
		{Action: ActionUpdate, Subject: SubjectTransaction},
		{Action: ActionDelete, Subject: SubjectTransaction},
		{Action: ActionCreate, Subject: SubjectCategory},
		{Action: ActionRead, Subject: SubjectCategory},
		{Action: ActionUpdate, Subject: SubjectCategory},
		{Action: ActionDelete, Subject: SubjectCategory},
		{Action: ActionCreate, Subject: SubjectEvent},
		{Action: ActionRead, Subject: SubjectEvent},
		{Action: ActionUpdate, Subject: SubjectEvent},
		{Action: ActionDelete, Subject: SubjectEvent},
	},
	RoleRead: {
		{Action: ActionRead, Subject: SubjectProfile},
		{Action: ActionRead, Subject: SubjectProfileMember},
		{Action: ActionRead, Subject: SubjectTransaction},
		{Action: ActionRead, Subject: SubjectCategory},
		{Action: ActionRead, Subject: SubjectEvent},
	},
}

// Grants returns the static grant set for a role. Unknown roles yield an
// empty set, which denies everything.
func Grants(role Role) []Grant {
	grants := grantTable[role]
	out := make([]Grant, len(grants))
	copy(out, grants)
	return out
}
