package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/koji-portfolio/portfolio-backend/internal/auth/domain"
)

// SupabaseJWTProvider verifies Supabase access tokens locally with the
// project's JWT secret instead of calling the auth server.
type SupabaseJWTProvider struct {
	secret []byte
}

func NewSupabaseJWTProvider(secret string) *SupabaseJWTProvider {
	return &SupabaseJWTProvider{secret: []byte(secret)}
}

func (p *SupabaseJWTProvider) Name() string { return "supabase-jwt" }

func (p *SupabaseJWTProvider) Verify(ctx context.Context, tokenString string) (*domain.Principal, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return p.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid claims", ErrUnauthenticated)
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrUnauthenticated)
	}

	email, _ := claims["email"].(string)
	appMeta, _ := claims["app_metadata"].(map[string]any)
	userMeta, _ := claims["user_metadata"].(map[string]any)

	return &domain.Principal{
		UID:      sub,
		Email:    email,
		Role:     roleFrom(appMeta, userMeta),
		Provider: p.Name(),
	}, nil
}
