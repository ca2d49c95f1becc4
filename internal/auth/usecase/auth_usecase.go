package usecase

import (
	"context"
	"errors"
	"log"
	"net/url"
	"sync"
	"time"

	authdomain "storymail-backend/internal/auth/domain"
	authdto "storymail-backend/internal/auth/dto"
	"storymail-backend/internal/auth/repository"
	"storymail-backend/pkg/config"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// authUsecase implements AuthUsecase interface
type authUsecase struct {
	userRepo repository.UserRepository
	config   *config.Config
	baseURL  string // https://<tenant domain>

	mu   sync.Mutex
	jwks *keyfunc.JWKS
}

// NewAuthUsecase creates a new instance of authUsecase
func NewAuthUsecase(userRepo repository.UserRepository, cfg *config.Config) AuthUsecase {
	return &authUsecase{
		userRepo: userRepo,
		config:   cfg,
		baseURL:  "https://" + cfg.Auth0Domain,
	}
}

func (u *authUsecase) ValidateToken(tokenString string) (*authdomain.Claims, error) {
	kf, err := u.keyfunc()
	if err != nil {
		return nil, err
	}

	token, err := jwt.Parse(tokenString, kf,
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithAudience(u.config.Auth0ClientID),
		jwt.WithIssuer(u.baseURL+"/"),
	)
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, errors.New("invalid token claims")
	}

	return &authdomain.Claims{
		Subject: sub,
		Name:    claimString(claims, "name"),
		Email:   claimString(claims, "email"),
		Picture: claimString(claims, "picture"),
	}, nil
}

// keyfunc lazily fetches the tenant JWKS; keyfunc keeps it refreshed in the
// background afterwards.
func (u *authUsecase) keyfunc() (jwt.Keyfunc, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.jwks == nil {
		jwks, err := keyfunc.Get(u.baseURL+"/.well-known/jwks.json", keyfunc.Options{
			RefreshInterval: time.Hour,
			RefreshErrorHandler: func(err error) {
				log.Printf("[Auth] JWKS refresh error: %v", err)
			},
		})
		if err != nil {
			return nil, err
		}
		u.jwks = jwks
	}
	return u.jwks.Keyfunc, nil
}

func (u *authUsecase) oauthConfig(callbackURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     u.config.Auth0ClientID,
		ClientSecret: u.config.Auth0ClientSecret,
		RedirectURL:  callbackURL,
		Scopes:       []string{"openid", "profile", "email"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  u.baseURL + "/authorize",
			TokenURL: u.baseURL + "/oauth/token",
		},
	}
}

func (u *authUsecase) BuildAuthorizeURL(callbackURL, frontendRedirect string) string {
	state := ""
	if frontendRedirect != "" {
		state = url.Values{"redirect": {frontendRedirect}}.Encode()
	}
	return u.oauthConfig(callbackURL).AuthCodeURL(state,
		oauth2.SetAuthURLParam("audience", u.config.Auth0Audience))
}

func (u *authUsecase) ExchangeCode(ctx context.Context, code, callbackURL string) (*authdto.TokenResponse, error) {
	token, err := u.oauthConfig(callbackURL).Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	resp := &authdto.TokenResponse{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
	}
	if idToken, ok := token.Extra("id_token").(string); ok {
		resp.IDToken = idToken
	}
	if expiresIn, ok := token.Extra("expires_in").(float64); ok {
		resp.ExpiresIn = int64(expiresIn)
	} else if !token.Expiry.IsZero() {
		resp.ExpiresIn = int64(time.Until(token.Expiry).Seconds())
	}
	return resp, nil
}

func (u *authUsecase) BuildLogoutURL(returnTo string) string {
	query := url.Values{
		"client_id": {u.config.Auth0ClientID},
		"returnTo":  {returnTo},
	}
	return u.baseURL + "/v2/logout?" + query.Encode()
}

func (u *authUsecase) UpsertUser(claims *authdomain.Claims) (*authdomain.User, error) {
	return u.userRepo.UpsertByAuth0ID(claims)
}

func claimString(claims jwt.MapClaims, key string) string {
	if value, ok := claims[key].(string); ok {
		return value
	}
	return ""
}
