package guard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lumenlearn/authcore/pkg/audit"
	"github.com/lumenlearn/authcore/pkg/httpx"
	"github.com/lumenlearn/authcore/pkg/middleware/auth"
)

type captureSink struct {
	mu     sync.Mutex
	events []audit.Event
}

func (c *captureSink) Record(e audit.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func (c *captureSink) last() (audit.Event, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.events) == 0 {
		return audit.Event{}, false
	}
	return c.events[len(c.events)-1], true
}

func (c *captureSink) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

type fakeChecker struct {
	owns map[string]bool // "guardianID/dependentID" -> owns
	err  error
}

func (f *fakeChecker) VerifyGuardianOfDependent(_ context.Context, guardianID, dependentID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.owns[guardianID+"/"+dependentID], nil
}

func guardSetup(checker RelationshipChecker) (*Middleware, *captureSink) {
	sink := &captureSink{}
	return New(checker, sink, zap.NewNop()), sink
}

// serve mounts the middleware on a chi route so URL params resolve, runs
// the request as the given identity, and reports the response.
func serve(t *testing.T, mw func(http.Handler) http.Handler, pattern string, req *http.Request, id *auth.Identity) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	r.Method(req.Method, pattern, handler)

	if id != nil {
		req = req.WithContext(auth.WithIdentity(req.Context(), *id))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func newChiServer(pattern string, h http.Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Handle(pattern, h)
	return r
}

func responseCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body httpx.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Code
}

func guardianID(sub string) *auth.Identity {
	return &auth.Identity{SubjectID: sub, Role: auth.RoleGuardian}
}

func dependentID(sub string) *auth.Identity {
	return &auth.Identity{SubjectID: sub, Role: auth.RoleDependent, DependentID: sub}
}
