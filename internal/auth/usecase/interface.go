package usecase

import (
	"context"

	authdomain "storymail-backend/internal/auth/domain"
	authdto "storymail-backend/internal/auth/dto"
)

// AuthUsecase defines the authentication business logic. Identity is fully
// delegated to Auth0: we validate its RS256 tokens against the tenant JWKS
// and drive its authorization-code flow; no local credentials exist.
type AuthUsecase interface {
	// ValidateToken verifies signature, audience and issuer of a bearer token
	// and returns the verified claim set.
	ValidateToken(tokenString string) (*authdomain.Claims, error)
	// BuildAuthorizeURL returns the Auth0 /authorize URL. The optional
	// frontendRedirect is carried through the state parameter.
	BuildAuthorizeURL(callbackURL, frontendRedirect string) string
	// ExchangeCode trades an authorization code for tokens.
	ExchangeCode(ctx context.Context, code, callbackURL string) (*authdto.TokenResponse, error)
	// BuildLogoutURL returns the Auth0 /v2/logout URL.
	BuildLogoutURL(returnTo string) string
	// UpsertUser creates or refreshes the local user for a verified claim set.
	UpsertUser(claims *authdomain.Claims) (*authdomain.User, error)
}
