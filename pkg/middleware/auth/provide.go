package auth

import (
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/lumenlearn/authcore/pkg/audit"
	"github.com/lumenlearn/authcore/pkg/store"
)

// ProvideVerifier wires verifier defaults from env.
func ProvideVerifier() *Verifier {
	leeway := 60 * time.Second
	if v := strings.TrimSpace(os.Getenv("AUTH_TOKEN_LEEWAY_SECONDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			leeway = time.Duration(n) * time.Second
		}
	}

	return NewVerifier(VerifierConfig{
		Secret:   []byte(os.Getenv("AUTH_TOKEN_SECRET")),
		Issuer:   strings.TrimSpace(os.Getenv("AUTH_TOKEN_ISSUER")),
		Audience: strings.TrimSpace(os.Getenv("AUTH_TOKEN_AUDIENCE")),
		Leeway:   leeway,
	})
}

func ProvideAuthentication(v *Verifier, revocations store.RevocationStore, sink audit.Sink, log *zap.Logger) *Middleware {
	return New(v, revocations, sink, log)
}

var Module = fx.Options(
	fx.Provide(ProvideVerifier),
	fx.Provide(ProvideAuthentication),
)
