package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func signToken(t *testing.T, secret []byte, claims Claims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)
	return raw
}

func testClaims(sub string, role Role) Claims {
	now := time.Now()
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti-" + sub,
			Subject:   sub,
			Issuer:    "lumenlearn",
			Audience:  jwt.ClaimStrings{"learning-api"},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(10 * time.Minute)),
		},
		Role: string(role),
	}
}

func newTestVerifier() *Verifier {
	return NewVerifier(VerifierConfig{
		Secret:   testSecret,
		Issuer:   "lumenlearn",
		Audience: "learning-api",
		Leeway:   time.Minute,
	})
}

func TestVerifyGuardianToken(t *testing.T) {
	v := newTestVerifier()
	raw := signToken(t, testSecret, testClaims("g1", RoleGuardian))

	id, err := v.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "g1", id.SubjectID)
	assert.Equal(t, RoleGuardian, id.Role)
	assert.Empty(t, id.DependentID, "guardians never carry a dependent id off the token")
	assert.Equal(t, "jti-g1", id.TokenID)
}

func TestVerifyDependentToken(t *testing.T) {
	v := newTestVerifier()
	claims := testClaims("d1", RoleDependent)
	claims.GuardianID = "g1"
	raw := signToken(t, testSecret, claims)

	id, err := v.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "d1", id.SubjectID)
	assert.Equal(t, RoleDependent, id.Role)
	assert.Equal(t, "d1", id.DependentID, "a dependent always acts as itself")
	assert.Equal(t, "g1", id.GuardianID)
}

func TestVerifyNoToken(t *testing.T) {
	v := newTestVerifier()
	_, err := v.Verify("")
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestVerifyRejections(t *testing.T) {
	v := newTestVerifier()
	now := time.Now()

	expired := testClaims("g1", RoleGuardian)
	expired.IssuedAt = jwt.NewNumericDate(now.Add(-2 * time.Hour))
	expired.ExpiresAt = jwt.NewNumericDate(now.Add(-1 * time.Hour))

	badIssuer := testClaims("g1", RoleGuardian)
	badIssuer.Issuer = "someone-else"

	badRole := testClaims("g1", "admin")

	noSubject := testClaims("", RoleGuardian)

	// a token minted without exp must not validate forever
	noExpiry := testClaims("g1", RoleGuardian)
	noExpiry.ExpiresAt = nil

	tests := []struct {
		name string
		raw  string
	}{
		{"garbage", "not.a.jwt"},
		{"wrong secret", signToken(t, []byte("other-secret"), testClaims("g1", RoleGuardian))},
		{"expired", signToken(t, testSecret, expired)},
		{"missing expiry", signToken(t, testSecret, noExpiry)},
		{"bad issuer", signToken(t, testSecret, badIssuer)},
		{"role outside the closed set", signToken(t, testSecret, badRole)},
		{"missing subject", signToken(t, testSecret, noSubject)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(tt.raw)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestVerifyRejectsUnexpectedSigningMethod(t *testing.T) {
	v := newTestVerifier()

	// alg=none style tokens must never pass
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, testClaims("g1", RoleGuardian)).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = v.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
