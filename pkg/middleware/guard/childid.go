package guard

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// bodies larger than this are not searched for a child id
const maxBodyPeek = 1 << 20

// childID resolves the dependent id a request targets, in precedence
// order: path parameter, JSON body field, query parameter.
func childID(r *http.Request, param string) string {
	if v := chi.URLParam(r, param); v != "" {
		return v
	}
	if v := childIDFromBody(r, param); v != "" {
		return v
	}
	return r.URL.Query().Get(param)
}

// selfTargetID is the narrower variant used by the self-access guard:
// dependent endpoints never pass the target via query string.
func selfTargetID(r *http.Request, param string) string {
	if v := chi.URLParam(r, param); v != "" {
		return v
	}
	return childIDFromBody(r, param)
}

// childIDFromBody peeks at a JSON body for the id field and restores
// r.Body so the handler can still read it. The prefix read here is
// stitched back in front of whatever remains, so a body past the peek
// limit reaches the handler intact; net/http closes the original body.
func childIDFromBody(r *http.Request, param string) string {
	if r.Body == nil || r.Body == http.NoBody {
		return ""
	}
	b, err := io.ReadAll(io.LimitReader(r.Body, maxBodyPeek))
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(b), r.Body), r.Body}
	if err != nil || len(b) == 0 {
		return ""
	}

	var payload map[string]any
	if err := json.Unmarshal(b, &payload); err != nil {
		return ""
	}
	if s, ok := payload[param].(string); ok {
		return s
	}
	return ""
}
