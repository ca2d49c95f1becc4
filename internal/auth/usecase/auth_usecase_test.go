package usecase

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"storymail-backend/pkg/config"
)

func newAuthUsecase() *authUsecase {
	cfg := &config.Config{
		Auth0Domain:       "tenant.auth0.com",
		Auth0ClientID:     "client-123",
		Auth0ClientSecret: "secret-456",
		Auth0Audience:     "https://storymail.app/api",
	}
	return NewAuthUsecase(nil, cfg).(*authUsecase)
}

func TestBuildAuthorizeURL(t *testing.T) {
	uc := newAuthUsecase()

	raw := uc.BuildAuthorizeURL("https://app.example.com/api/auth/callback", "https://app.example.com/inbox")
	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, "tenant.auth0.com", parsed.Host)
	require.Equal(t, "/authorize", parsed.Path)

	q := parsed.Query()
	require.Equal(t, "client-123", q.Get("client_id"))
	require.Equal(t, "code", q.Get("response_type"))
	require.Equal(t, "https://app.example.com/api/auth/callback", q.Get("redirect_uri"))
	require.Equal(t, "openid profile email", q.Get("scope"))
	require.Equal(t, "https://storymail.app/api", q.Get("audience"))

	// the frontend destination rides through Auth0 inside state
	state, err := url.ParseQuery(q.Get("state"))
	require.NoError(t, err)
	require.Equal(t, "https://app.example.com/inbox", state.Get("redirect"))
}

func TestBuildAuthorizeURLWithoutRedirect(t *testing.T) {
	uc := newAuthUsecase()

	raw := uc.BuildAuthorizeURL("https://app.example.com/api/auth/callback", "")
	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	require.Empty(t, parsed.Query().Get("state"))
}

func TestBuildLogoutURL(t *testing.T) {
	uc := newAuthUsecase()

	raw := uc.BuildLogoutURL("https://app.example.com/")
	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, "/v2/logout", parsed.Path)
	require.Equal(t, "client-123", parsed.Query().Get("client_id"))
	require.Equal(t, "https://app.example.com/", parsed.Query().Get("returnTo"))
}

func TestExchangeCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/oauth/token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		require.Equal(t, "the-code", r.PostForm.Get("code"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"access_token": "at-1",
			"id_token": "idt-1",
			"refresh_token": "rt-1",
			"token_type": "Bearer",
			"expires_in": 86400
		}`))
	}))
	defer srv.Close()

	uc := newAuthUsecase()
	uc.baseURL = srv.URL

	resp, err := uc.ExchangeCode(context.Background(), "the-code", "https://app.example.com/api/auth/callback")
	require.NoError(t, err)
	require.Equal(t, "at-1", resp.AccessToken)
	require.Equal(t, "idt-1", resp.IDToken)
	require.Equal(t, "rt-1", resp.RefreshToken)
	require.Equal(t, "Bearer", resp.TokenType)
	require.EqualValues(t, 86400, resp.ExpiresIn)
}

func TestExchangeCodeUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid authorization code"}`))
	}))
	defer srv.Close()

	uc := newAuthUsecase()
	uc.baseURL = srv.URL

	_, err := uc.ExchangeCode(context.Background(), "stale-code", "https://app.example.com/api/auth/callback")
	require.Error(t, err)

	var retrieveErr *oauth2.RetrieveError
	require.ErrorAs(t, err, &retrieveErr)
	require.Equal(t, http.StatusForbidden, retrieveErr.Response.StatusCode)
}
