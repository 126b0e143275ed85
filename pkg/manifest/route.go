package manifest

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// Scope selects which ownership guard wraps a route, beyond the role
// check.
const (
	ScopeNone     = ""         // role check only
	ScopeGuardian = "guardian" // relationship verifier: guardian must own the targeted child
	ScopeSelf     = "self"     // self-access guard: dependent acts on itself only
)

var validRoles = map[string]struct{}{
	"guardian":  {},
	"dependent": {},
}

// Route describes a single HTTP route and the policy gating it.
type Route struct {
	Path    string `toml:"path"`
	Method  string `toml:"method"`
	Guard   Guard  `toml:"guard"`
	Policy  Policy `toml:"policy"`
	Handler HSpec  `toml:"handler"`
}

type Guard struct {
	// Public skips the authenticator entirely. Meant for pre-auth
	// endpoints (login, PIN entry) that still want rate limiting.
	Public     bool     `toml:"public"`
	Roles      []string `toml:"roles"`
	Scope      string   `toml:"scope"`
	ChildParam string   `toml:"child_param"` // defaults to "childId"
}

type Policy struct {
	TimeoutMS int        `toml:"timeout_ms"`
	RateLimit *RateLimit `toml:"rate_limit"`
}

// RateLimit marks a credential-adjacent route for throttling.
type RateLimit struct {
	MaxAttempts   int `toml:"max_attempts"`
	WindowSeconds int `toml:"window_seconds"`
}

type HSpec struct {
	Name string `toml:"name"`
}

// normalize path/method
func (r *Route) normalize() error {
	if r.Path == "" {
		return errors.New("path is required")
	}
	if !strings.HasPrefix(r.Path, "/") {
		r.Path = "/" + r.Path
	}
	if r.Path != "/" {
		r.Path = path.Clean(r.Path)
	}
	r.Method = strings.ToUpper(strings.TrimSpace(r.Method))
	if r.Method == "" {
		r.Method = "GET"
	}
	r.Guard.Scope = strings.ToLower(strings.TrimSpace(r.Guard.Scope))
	return nil
}

// validate fields that are independent of global state.
func (r *Route) validate() error {
	if strings.TrimSpace(r.Handler.Name) == "" {
		return fmt.Errorf("route %s: handler.name is required", r.Path)
	}

	// roles and scopes need an identity; a public route has none
	if r.Guard.Public && (len(r.Guard.Roles) > 0 || r.Guard.Scope != ScopeNone) {
		return fmt.Errorf("route %s: a public route cannot declare roles or a scope", r.Path)
	}

	for _, role := range r.Guard.Roles {
		if _, ok := validRoles[role]; !ok {
			return fmt.Errorf("route %s: unknown role %q", r.Path, role)
		}
	}

	switch r.Guard.Scope {
	case ScopeNone:
	case ScopeGuardian:
		// an ownership check makes no sense on a dependent-only route
		for _, role := range r.Guard.Roles {
			if role == "dependent" {
				return fmt.Errorf("route %s: guardian scope cannot admit dependent role", r.Path)
			}
		}
	case ScopeSelf:
		for _, role := range r.Guard.Roles {
			if role == "guardian" {
				return fmt.Errorf("route %s: self scope cannot admit guardian role", r.Path)
			}
		}
	default:
		return fmt.Errorf("route %s: unknown scope %q", r.Path, r.Guard.Scope)
	}

	if r.Policy.TimeoutMS < 0 {
		return fmt.Errorf("route %s: policy.timeout_ms must be >= 0", r.Path)
	}
	if rl := r.Policy.RateLimit; rl != nil {
		if rl.MaxAttempts <= 0 {
			return fmt.Errorf("route %s: rate_limit.max_attempts must be > 0", r.Path)
		}
		if rl.WindowSeconds <= 0 {
			return fmt.Errorf("route %s: rate_limit.window_seconds must be > 0", r.Path)
		}
	}
	return nil
}
