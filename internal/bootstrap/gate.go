package bootstrap

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/koji-portfolio/portfolio-backend/config"
	"github.com/koji-portfolio/portfolio-backend/internal/auth"
	authhttp "github.com/koji-portfolio/portfolio-backend/internal/auth/http"
)

// AuthSetup is everything the router needs from the auth configuration.
type AuthSetup struct {
	Gate *auth.Gate
	// Token is the shared secret; empty in provider mode.
	Token    string
	Supabase *authhttp.SupabaseClientInfo
}

// BuildGate fixes the authorization mode for the life of the process.
func BuildGate(ctx context.Context, cfg *config.AuthConfig) (*AuthSetup, error) {
	logger := zerolog.Ctx(ctx)

	switch cfg.Provider {
	case config.ProviderSupabase:
		var provider auth.IdentityProvider
		if cfg.SupabaseJWTSecret != "" {
			provider = auth.NewSupabaseJWTProvider(cfg.SupabaseJWTSecret)
		} else {
			provider = auth.NewSupabaseProvider(cfg.SupabaseURL, cfg.SupabaseAnonKey, nil)
		}
		logger.Info().Str("provider", provider.Name()).Str("admin_email", cfg.AdminEmail).Msg("admin auth delegated to supabase")

		var info *authhttp.SupabaseClientInfo
		if cfg.SupabaseAnonKey != "" {
			info = &authhttp.SupabaseClientInfo{URL: cfg.SupabaseURL, AnonKey: cfg.SupabaseAnonKey}
		}
		return &AuthSetup{
			Gate:     auth.NewProviderGate(provider, cfg.AdminEmail),
			Supabase: info,
		}, nil

	case config.ProviderFirebase:
		client, err := auth.InitializeFirebase(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			return nil, err
		}
		logger.Info().Str("admin_email", cfg.AdminEmail).Msg("admin auth delegated to firebase")
		return &AuthSetup{
			Gate: auth.NewProviderGate(auth.NewFirebaseProvider(client), cfg.AdminEmail),
		}, nil

	case config.ProviderNone:
		token := cfg.AdminToken
		if token == "" {
			generated, err := auth.GenerateSecret()
			if err != nil {
				return nil, err
			}
			token = generated
			logger.Warn().
				Str("admin_token", token).
				Msg("ADMIN_TOKEN not set; generated one that is valid until this process exits")
		}
		return &AuthSetup{
			Gate:  auth.NewSharedSecretGate(token),
			Token: token,
		}, nil

	default:
		return nil, fmt.Errorf("unknown auth provider %q", cfg.Provider)
	}
}
