package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoToken means the request carried no bearer token at all.
	// Distinct from ErrInvalidToken: the two map to different HTTP
	// outcomes and different audit reasons.
	ErrNoToken = errors.New("no bearer token")

	// ErrInvalidToken covers malformed, expired and badly-signed tokens.
	ErrInvalidToken = errors.New("invalid token")

	// ErrRevokedToken means the token verified but its id is on the
	// revocation list.
	ErrRevokedToken = errors.New("token revoked")
)

// Claims carried by a platform access token.
type Claims struct {
	jwt.RegisteredClaims
	Role       string `json:"role"`
	GuardianID string `json:"guardianId,omitempty"`
}

// Verifier validates bearer tokens into identities. It is pure: no store
// access, no side effects, so it can run before any suspension point.
type Verifier struct {
	secret   []byte
	issuer   string
	audience string
	leeway   time.Duration
}

type VerifierConfig struct {
	Secret   []byte
	Issuer   string
	Audience string
	Leeway   time.Duration
}

func NewVerifier(cfg VerifierConfig) *Verifier {
	return &Verifier{
		secret:   cfg.Secret,
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		leeway:   cfg.Leeway,
	}
}

// Verify parses and validates raw. An empty token yields ErrNoToken;
// every other failure collapses to ErrInvalidToken so callers cannot
// leak which check tripped.
func (v *Verifier) Verify(raw string) (Identity, error) {
	if raw == "" {
		return Identity{}, ErrNoToken
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
	)

	var claims Claims
	tok, err := parser.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil || !tok.Valid {
		return Identity{}, ErrInvalidToken
	}

	if v.issuer != "" && claims.Issuer != v.issuer {
		return Identity{}, ErrInvalidToken
	}
	if v.audience != "" {
		found := false
		for _, a := range claims.Audience {
			if a == v.audience {
				found = true
				break
			}
		}
		if !found {
			return Identity{}, ErrInvalidToken
		}
	}

	if claims.Subject == "" {
		return Identity{}, ErrInvalidToken
	}
	role := Role(claims.Role)
	if !role.Valid() {
		return Identity{}, ErrInvalidToken
	}

	id := Identity{
		SubjectID:  claims.Subject,
		Role:       role,
		GuardianID: claims.GuardianID,
		TokenID:    claims.ID,
	}
	if role == RoleDependent {
		// a dependent always acts as itself
		id.DependentID = claims.Subject
	}
	return id, nil
}
