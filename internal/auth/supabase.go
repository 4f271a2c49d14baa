package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/koji-portfolio/portfolio-backend/internal/auth/domain"
)

const defaultSupabaseTimeout = 10 * time.Second

type supabaseUser struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	AppMetadata  map[string]any `json:"app_metadata"`
	UserMetadata map[string]any `json:"user_metadata"`
}

// SupabaseProvider validates access tokens by asking the Supabase auth
// server who they belong to.
type SupabaseProvider struct {
	baseURL string
	anonKey string
	client  *http.Client
}

// NewSupabaseProvider builds a provider for the project at baseURL. A nil
// client gets a default one with a timeout.
func NewSupabaseProvider(baseURL, anonKey string, client *http.Client) *SupabaseProvider {
	if client == nil {
		client = &http.Client{Timeout: defaultSupabaseTimeout}
	}
	return &SupabaseProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		client:  client,
	}
}

func (p *SupabaseProvider) Name() string { return "supabase" }

func (p *SupabaseProvider) Verify(ctx context.Context, token string) (*domain.Principal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrProviderUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", p.anonKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, fmt.Errorf("%w: supabase rejected token (status %d)", ErrUnauthenticated, resp.StatusCode)
	default:
		return nil, fmt.Errorf("%w: supabase returned status %d", ErrProviderUnavailable, resp.StatusCode)
	}

	var u supabaseUser
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, fmt.Errorf("%w: decode user: %w", ErrProviderUnavailable, err)
	}
	if u.ID == "" {
		return nil, fmt.Errorf("%w: token has no user", ErrUnauthenticated)
	}

	return &domain.Principal{
		UID:      u.ID,
		Email:    u.Email,
		Role:     roleFrom(u.AppMetadata, u.UserMetadata),
		Provider: p.Name(),
	}, nil
}

// SupabaseAdmin calls the service-role admin endpoints of the auth server.
type SupabaseAdmin struct {
	baseURL        string
	serviceRoleKey string
	client         *http.Client
}

func NewSupabaseAdmin(baseURL, serviceRoleKey string, client *http.Client) *SupabaseAdmin {
	if client == nil {
		client = &http.Client{Timeout: defaultSupabaseTimeout}
	}
	return &SupabaseAdmin{
		baseURL:        strings.TrimRight(baseURL, "/"),
		serviceRoleKey: serviceRoleKey,
		client:         client,
	}
}

type createUserReq struct {
	Email        string         `json:"email"`
	Password     string         `json:"password"`
	EmailConfirm bool           `json:"email_confirm"`
	UserMetadata map[string]any `json:"user_metadata"`
}

// CreateAdminUser creates a confirmed user whose metadata carries the admin
// role and the username it was requested under, and returns its id.
func (a *SupabaseAdmin) CreateAdminUser(ctx context.Context, email, username, password string) (string, error) {
	metadata := map[string]any{"role": domain.AdminRole}
	if username != "" {
		metadata["username"] = username
	}
	body, err := json.Marshal(createUserReq{
		Email:        email,
		Password:     password,
		EmailConfirm: true,
		UserMetadata: metadata,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/auth/v1/admin/users", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", a.serviceRoleKey)
	req.Header.Set("Authorization", "Bearer "+a.serviceRoleKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("supabase admin create user failed (status %d): %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var u supabaseUser
	if err := json.Unmarshal(raw, &u); err != nil {
		return "", fmt.Errorf("failed to decode created user: %w", err)
	}
	return u.ID, nil
}
