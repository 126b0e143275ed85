package auth

// Role is the closed set of account roles on the platform. Routes declare
// which of these may pass; there is deliberately no free-form role string
// anywhere downstream of token verification.
type Role string

const (
	RoleGuardian  Role = "guardian"
	RoleDependent Role = "dependent"
)

func (r Role) Valid() bool {
	switch r {
	case RoleGuardian, RoleDependent:
		return true
	}
	return false
}

// Identity is the authenticated subject attached to a request after the
// authenticator accepts it. It is immutable for the lifetime of the
// request and never persisted.
type Identity struct {
	SubjectID string
	Role      Role

	// GuardianID is the owning guardian, set for dependent identities.
	GuardianID string

	// DependentID equals SubjectID whenever Role is RoleDependent. A
	// guardian identity never carries one; the ownership guard attaches
	// the verified child id to the request context instead, scoped to
	// that request only.
	DependentID string

	// TokenID is the jti of the presented token, kept for revocation
	// checks.
	TokenID string
}

type contextKey struct{ name string }

var identityCtxKey = &contextKey{"identity"}
