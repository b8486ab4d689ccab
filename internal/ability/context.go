package ability

import "context"

type abilityContextKey struct{}

// Membership captures the caller's resolved role on the active profile.
type Membership struct {
	ProfileID int64
	AccountID int64
	Role      Role
	Ability   Ability
}

// ContextWithMembership stores the resolved membership in context.
func ContextWithMembership(ctx context.Context, m Membership) context.Context {
	return context.WithValue(ctx, abilityContextKey{}, m)
}

// MembershipFromContext extracts the resolved membership placed by the guard.
func MembershipFromContext(ctx context.Context) (Membership, bool) {
	m, ok := ctx.Value(abilityContextKey{}).(Membership)
	return m, ok
}
