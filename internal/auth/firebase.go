package auth

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/koji-portfolio/portfolio-backend/internal/auth/domain"
)

// InitializeFirebase initializes the Firebase Admin SDK and returns an Auth client
func InitializeFirebase(ctx context.Context, credentialsPath string) (*fbauth.Client, error) {
	if credentialsPath == "" {
		return nil, fmt.Errorf("FIREBASE_CREDENTIALS_PATH is required")
	}

	opt := option.WithCredentialsFile(credentialsPath)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Auth client: %w", err)
	}

	return authClient, nil
}

// idTokenVerifier is the part of *fbauth.Client the provider needs.
type idTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// FirebaseProvider validates Firebase ID tokens. The role comes from the
// "role" custom claim.
type FirebaseProvider struct {
	client idTokenVerifier
}

func NewFirebaseProvider(client idTokenVerifier) *FirebaseProvider {
	return &FirebaseProvider{client: client}
}

func (p *FirebaseProvider) Name() string { return "firebase" }

func (p *FirebaseProvider) Verify(ctx context.Context, token string) (*domain.Principal, error) {
	decoded, err := p.client.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	email, _ := decoded.Claims["email"].(string)
	role, _ := decoded.Claims["role"].(string)

	return &domain.Principal{
		UID:      decoded.UID,
		Email:    email,
		Role:     role,
		Provider: p.Name(),
	}, nil
}

// CreateFirebaseAdmin creates (or reuses) the account for email and sets the
// admin role and username claims on it. It returns the account uid.
func CreateFirebaseAdmin(ctx context.Context, client *fbauth.Client, email, username, password string) (string, error) {
	params := (&fbauth.UserToCreate{}).
		Email(email).
		Password(password).
		EmailVerified(true)
	if username != "" {
		params = params.DisplayName(username)
	}

	var uid string
	user, err := client.CreateUser(ctx, params)
	switch {
	case err == nil:
		uid = user.UID
	case fbauth.IsEmailAlreadyExists(err):
		existing, getErr := client.GetUserByEmail(ctx, email)
		if getErr != nil {
			return "", fmt.Errorf("failed to look up existing user: %w", getErr)
		}
		uid = existing.UID
	default:
		return "", fmt.Errorf("failed to create user: %w", err)
	}

	claims := map[string]interface{}{"role": domain.AdminRole}
	if username != "" {
		claims["username"] = username
	}
	if err := client.SetCustomUserClaims(ctx, uid, claims); err != nil {
		return "", fmt.Errorf("failed to set admin claim: %w", err)
	}
	return uid, nil
}
