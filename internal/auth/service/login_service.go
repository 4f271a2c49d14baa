package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/koji-portfolio/portfolio-backend/internal/auth"
)

// LoginService exchanges the configured admin username and password for the
// shared admin token. It is only meaningful in shared-secret mode.
type LoginService struct {
	username     string
	passwordHash []byte
	token        string
}

// NewLoginService prepares the password check. password may be given as a
// bcrypt hash ("$2a$..." etc.) or in plain text, which is hashed here so the
// plain value is not kept in memory. Empty username or password disables
// login.
func NewLoginService(username, password, token string, bcryptCost int) (*LoginService, error) {
	s := &LoginService{
		username: strings.TrimSpace(username),
		token:    token,
	}
	if s.username == "" || password == "" || token == "" {
		return s, nil
	}

	if strings.HasPrefix(password, "$2") {
		if _, err := bcrypt.Cost([]byte(password)); err != nil {
			return nil, fmt.Errorf("ADMIN_PASSWORD looks like a bcrypt hash but is invalid: %w", err)
		}
		s.passwordHash = []byte(password)
		return s, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	s.passwordHash = hash
	return s, nil
}

// Enabled reports whether username and password were configured.
func (s *LoginService) Enabled() bool {
	return len(s.passwordHash) > 0
}

// Login returns the admin token when the credentials match.
func (s *LoginService) Login(ctx context.Context, username, password string) (string, error) {
	if !s.Enabled() {
		return "", auth.ErrLoginDisabled
	}

	userOK := subtle.ConstantTimeCompare([]byte(strings.TrimSpace(username)), []byte(s.username)) == 1
	// always run the hash comparison so timing does not reveal the username
	passErr := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password))
	if !userOK || passErr != nil {
		zerolog.Ctx(ctx).Warn().Str("username", username).Msg("admin login failed")
		return "", fmt.Errorf("%w: invalid credentials", auth.ErrUnauthenticated)
	}

	zerolog.Ctx(ctx).Info().Str("username", username).Msg("admin login succeeded")
	return s.token, nil
}
