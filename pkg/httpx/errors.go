package httpx

import (
	"encoding/json"
	"net/http"
	"time"

	chimd "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// Stable error codes returned by the authorization pipeline. The status
// code and the string code together are part of the API contract; client
// surfaces translate the message, never the code.
const (
	CodeNoToken                 = "NO_TOKEN"
	CodeInvalidToken            = "INVALID_TOKEN"
	CodeRevokedToken            = "REVOKED_TOKEN"
	CodeAuthenticationRequired  = "AUTHENTICATION_REQUIRED"
	CodeInsufficientPermissions = "INSUFFICIENT_PERMISSIONS"
	CodeMissingChildID          = "MISSING_CHILD_ID"
	CodeParentChildMismatch     = "PARENT_CHILD_MISMATCH"
	CodeAuthorizationError      = "AUTHORIZATION_ERROR"
	CodeUnauthorizedAccess      = "UNAUTHORIZED_ACCESS"
	CodeRateLimitExceeded       = "RATE_LIMIT_EXCEEDED"
)

// ErrorBody is the JSON shape of every rejection.
type ErrorBody struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"requestId"`
}

// WriteError emits the structured rejection body. The request id comes
// from the chi RequestID middleware when present; gates mounted outside a
// chi stack still get a usable id.
func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	rid := chimd.GetReqID(r.Context())
	if rid == "" {
		rid = uuid.NewString()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorBody{
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC(),
		RequestID: rid,
	})
}
