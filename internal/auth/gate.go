package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/koji-portfolio/portfolio-backend/internal/auth/domain"
)

type Mode string

const (
	ModeSharedSecret Mode = "shared_secret"
	ModeProvider     Mode = "provider"
)

// IdentityProvider validates a bearer credential issued by an external
// identity service. Implementations return an error wrapping
// ErrUnauthenticated for a bad credential and ErrProviderUnavailable when the
// service cannot be reached.
type IdentityProvider interface {
	Name() string
	Verify(ctx context.Context, token string) (*domain.Principal, error)
}

// Gate decides whether a request may use the admin API. Its mode is fixed
// when it is built and never changes at request time.
type Gate struct {
	mode       Mode
	provider   IdentityProvider
	adminEmail string
	secret     []byte
}

// NewProviderGate delegates credential checks to provider. When adminEmail
// is set only that identity is accepted; otherwise the principal needs the
// admin role.
func NewProviderGate(provider IdentityProvider, adminEmail string) *Gate {
	return &Gate{
		mode:       ModeProvider,
		provider:   provider,
		adminEmail: strings.TrimSpace(adminEmail),
	}
}

// NewSharedSecretGate compares the bearer credential with secret.
func NewSharedSecretGate(secret string) *Gate {
	return &Gate{
		mode:   ModeSharedSecret,
		secret: []byte(secret),
	}
}

// GenerateSecret returns 32 random bytes, hex encoded.
func GenerateSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate admin token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func (g *Gate) Mode() Mode { return g.mode }

// ProviderName is empty in shared-secret mode.
func (g *Gate) ProviderName() string {
	if g.provider == nil {
		return ""
	}
	return g.provider.Name()
}

// Authorize checks the raw Authorization header value. In shared-secret mode
// a match returns a nil principal.
func (g *Gate) Authorize(ctx context.Context, header string) (*domain.Principal, error) {
	token, ok := BearerToken(header)
	if !ok {
		return nil, fmt.Errorf("%w: missing bearer token", ErrUnauthenticated)
	}

	if g.mode == ModeSharedSecret {
		if subtle.ConstantTimeCompare([]byte(token), g.secret) != 1 {
			return nil, fmt.Errorf("%w: invalid token", ErrUnauthenticated)
		}
		return nil, nil
	}

	p, err := g.provider.Verify(ctx, token)
	if err != nil {
		return nil, err
	}

	if g.adminEmail != "" {
		if !p.HasEmail(g.adminEmail) {
			return nil, fmt.Errorf("%w: %s is not the admin account", ErrForbidden, p.Email)
		}
		return p, nil
	}
	if !p.IsAdmin() {
		return nil, fmt.Errorf("%w: role %q is not admin", ErrForbidden, p.Role)
	}
	return p, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header value. Only the single space after the scheme is consumed; the
// token itself is returned byte-for-byte.
func BearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return header[len(prefix):], true
}

// roleFrom returns the first string "role" entry among the metadata maps.
func roleFrom(sources ...map[string]any) string {
	for _, m := range sources {
		if role, ok := m["role"].(string); ok && role != "" {
			return role
		}
	}
	return ""
}
