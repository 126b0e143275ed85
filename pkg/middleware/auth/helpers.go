package auth

import "context"

// GetIdentity returns the identity attached by the authenticator, if any.
func GetIdentity(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityCtxKey).(Identity)
	return id, ok
}

// WithIdentity attaches an identity directly. Used by tests and by
// trusted in-process callers that bypass the HTTP layer.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey, id)
}

func IsAuthenticated(ctx context.Context) bool {
	id, ok := GetIdentity(ctx)
	return ok && id.SubjectID != ""
}

var identitySlotKey = &contextKey{"identitySlot"}

// WithIdentitySlot pre-allocates a slot an outer middleware can read back
// after an inner authenticator ran. Context values only flow inward, so
// outer middleware cannot see the identity the authenticator attaches;
// the slot closes that gap for the access log and request counters.
// Idempotent: nested callers share the outermost slot.
func WithIdentitySlot(ctx context.Context) context.Context {
	if _, ok := ctx.Value(identitySlotKey).(*Identity); ok {
		return ctx
	}
	return context.WithValue(ctx, identitySlotKey, &Identity{})
}

// IdentityFromSlot reads the slot, falling back to the regular context
// identity.
func IdentityFromSlot(ctx context.Context) (Identity, bool) {
	if slot, ok := ctx.Value(identitySlotKey).(*Identity); ok && slot.SubjectID != "" {
		return *slot, true
	}
	return GetIdentity(ctx)
}

func fillIdentitySlot(ctx context.Context, id Identity) {
	if slot, ok := ctx.Value(identitySlotKey).(*Identity); ok {
		*slot = id
	}
}
