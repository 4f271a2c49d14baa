package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/koji-portfolio/portfolio-backend/config"
	"github.com/koji-portfolio/portfolio-backend/internal/auth"
	"github.com/koji-portfolio/portfolio-backend/internal/logging"
)

type options struct {
	username string
	password string
	provider string
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "createadmin",
		Short: "Create the admin account at the configured identity provider",
		Long: `Creates a confirmed account carrying the admin role at Supabase
(SUPABASE_URL + SUPABASE_SERVICE_ROLE_KEY) or Firebase
(FIREBASE_CREDENTIALS_PATH). A username without "@" becomes
<username>@example.com.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.username, "username", "u", envOr("CREATE_ADMIN_USERNAME", "admin"), "admin username or email")
	cmd.Flags().StringVarP(&opts.password, "password", "p", os.Getenv("CREATE_ADMIN_PASSWORD"), "admin password")
	cmd.Flags().StringVar(&opts.provider, "provider", "", "supabase or firebase (defaults to AUTH_PROVIDER)")

	return cmd
}

func run(ctx context.Context, opts *options) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.Setup(cfg.App.LogLevel, cfg.App.Environment)
	ctx, cancel := context.WithTimeout(logger.WithContext(ctx), 30*time.Second)
	defer cancel()

	if opts.password == "" {
		return fmt.Errorf("a password is required (--password or CREATE_ADMIN_PASSWORD)")
	}
	username := strings.TrimSpace(opts.username)
	email := adminEmail(username)

	provider := opts.provider
	if provider == "" {
		provider = cfg.Auth.Provider
	}

	var uid string
	switch provider {
	case config.ProviderSupabase:
		if cfg.Auth.SupabaseURL == "" || cfg.Auth.SupabaseServiceRoleKey == "" {
			return fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY are required")
		}
		uid, err = auth.NewSupabaseAdmin(cfg.Auth.SupabaseURL, cfg.Auth.SupabaseServiceRoleKey, nil).
			CreateAdminUser(ctx, email, username, opts.password)
	case config.ProviderFirebase:
		client, ferr := auth.InitializeFirebase(ctx, cfg.Auth.FirebaseCredentialsPath)
		if ferr != nil {
			return ferr
		}
		uid, err = auth.CreateFirebaseAdmin(ctx, client, email, username, opts.password)
	default:
		return fmt.Errorf("no identity provider configured; set AUTH_PROVIDER or --provider")
	}
	if err != nil {
		return err
	}

	zerolog.Ctx(ctx).Info().
		Str("provider", provider).
		Str("email", email).
		Str("uid", uid).
		Msg("admin user ready; sign in at /admin with this email")
	return nil
}

// adminEmail turns a bare username into an address the providers accept.
func adminEmail(username string) string {
	username = strings.TrimSpace(username)
	if strings.Contains(username, "@") {
		return username
	}
	return username + "@example.com"
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
