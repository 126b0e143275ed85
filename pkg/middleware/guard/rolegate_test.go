package guard

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenlearn/authcore/pkg/audit"
	"github.com/lumenlearn/authcore/pkg/httpx"
	"github.com/lumenlearn/authcore/pkg/middleware/auth"
)

func TestRoleGateRequiresIdentity(t *testing.T) {
	g, sink := guardSetup(&fakeChecker{})

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	rec := serve(t, g.RequireRole(auth.RoleGuardian), "/api/dashboard", req, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, httpx.CodeAuthenticationRequired, responseCode(t, rec))

	e, ok := sink.last()
	require.True(t, ok)
	assert.Equal(t, audit.OutcomeDeny, e.Outcome)
}

func TestRoleGateDeniesWrongRole(t *testing.T) {
	g, sink := guardSetup(&fakeChecker{})

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	rec := serve(t, g.RequireRole(auth.RoleGuardian), "/api/dashboard", req, dependentID("d1"))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, httpx.CodeInsufficientPermissions, responseCode(t, rec))

	e, _ := sink.last()
	assert.Equal(t, "dependent", e.Role, "the actual role is captured")
	assert.Contains(t, e.Reason, "guardian", "the required set is captured")
}

func TestRoleGateAllowsMatch(t *testing.T) {
	g, sink := guardSetup(&fakeChecker{})

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	rec := serve(t, g.RequireRole(auth.RoleGuardian, auth.RoleDependent), "/api/dashboard", req, dependentID("d1"))

	assert.Equal(t, http.StatusOK, rec.Code)

	e, ok := sink.last()
	require.True(t, ok)
	assert.Equal(t, audit.TypeAuthorizationSuccess, e.Type)
	assert.Equal(t, audit.OutcomeAllow, e.Outcome)
	assert.Equal(t, 1, sink.count(), "one event per decision")
}
