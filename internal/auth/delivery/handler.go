package delivery

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"strconv"

	authdomain "storymail-backend/internal/auth/domain"
	authdto "storymail-backend/internal/auth/dto"
	"storymail-backend/internal/auth/usecase"
	"storymail-backend/pkg/config"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
)

type AuthHandler struct {
	authUsecase usecase.AuthUsecase
	config      *config.Config
}

func NewAuthHandler(authUsecase usecase.AuthUsecase, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		config:      cfg,
	}
}

// GET /api/auth/login
// Login returns the Auth0 authorization URL. An optional redirect_uri query
// parameter is carried through the state parameter.
func (h *AuthHandler) Login(c *gin.Context) {
	frontendRedirect := c.Query("redirect_uri")
	authURL := h.authUsecase.BuildAuthorizeURL(callbackURL(c), frontendRedirect)
	c.JSON(http.StatusOK, gin.H{"auth_url": authURL})
}

// GET /api/auth/callback
// Callback handles the browser redirect back from Auth0: it exchanges the
// code and forwards tokens to the frontend in a URL fragment.
func (h *AuthHandler) Callback(c *gin.Context) {
	frontendURL := h.config.FrontendURL + "/dashboard"

	if redirect := parseStateRedirect(c.Query("state")); redirect != "" {
		log.Printf("[Auth] Callback state redirect: %s", redirect)
	}

	if errParam := c.Query("error"); errParam != "" {
		query := url.Values{
			"error":             {errParam},
			"error_description": {c.Query("error_description")},
		}
		c.Redirect(http.StatusFound, frontendURL+"?"+query.Encode())
		return
	}

	code := c.Query("code")
	if code == "" {
		query := url.Values{
			"error":             {"no_code"},
			"error_description": {"No authorization code received"},
		}
		c.Redirect(http.StatusFound, frontendURL+"?"+query.Encode())
		return
	}

	tokens, err := h.authUsecase.ExchangeCode(c.Request.Context(), code, callbackURL(c))
	if err != nil {
		log.Printf("[Auth] Failed to exchange code: %v", err)
		query := url.Values{
			"error":             {"token_exchange_failed"},
			"error_description": {"Failed to exchange code for tokens"},
		}
		c.Redirect(http.StatusFound, frontendURL+"?"+query.Encode())
		return
	}

	fragment := url.Values{
		"access_token":  {tokens.AccessToken},
		"id_token":      {tokens.IDToken},
		"refresh_token": {tokens.RefreshToken},
		"expires_in":    {formatInt(tokens.ExpiresIn)},
	}
	c.Redirect(http.StatusFound, frontendURL+"#auth_result="+url.QueryEscape(fragment.Encode()))
}

// POST /api/auth/callback
// CallbackExchange trades an authorization code for tokens and returns them
// directly. The token exchange is the purpose of the call, so an upstream
// failure propagates with its status.
func (h *AuthHandler) CallbackExchange(c *gin.Context) {
	var req authdto.CallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing code or redirect_uri"})
		return
	}

	tokens, err := h.authUsecase.ExchangeCode(c.Request.Context(), req.Code, req.RedirectURI)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			c.Data(retrieveErr.Response.StatusCode, "application/json", retrieveErr.Body)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, tokens)
}

// POST /api/auth/logout
// Logout returns the Auth0 logout URL.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req authdto.LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing returnTo parameter"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"logout_url": h.authUsecase.BuildLogoutURL(req.ReturnTo)})
}

// GET /api/auth/user
// UserInfo returns the verified profile for the bearer token and upserts
// the local user record.
func (h *AuthHandler) UserInfo(c *gin.Context) {
	claims := CurrentClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	if _, err := h.authUsecase.UpsertUser(claims); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, authdto.UserInfoResponse{
		ID:      claims.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
		Picture: claims.Picture,
	})
}

// CurrentClaims extracts the verified claims set by AuthMiddleware.
func CurrentClaims(c *gin.Context) *authdomain.Claims {
	value, exists := c.Get("claims")
	if !exists {
		return nil
	}
	claims, ok := value.(*authdomain.Claims)
	if !ok {
		return nil
	}
	return claims
}

// callbackURL derives the Auth0 callback from the incoming request, the
// same way the frontend reached us.
func callbackURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host + "/api/auth/callback"
}

func parseStateRedirect(state string) string {
	if state == "" {
		return ""
	}
	values, err := url.ParseQuery(state)
	if err != nil {
		log.Printf("[Auth] Error parsing state parameter: %v", err)
		return ""
	}
	return values.Get("redirect")
}

func formatInt(n int64) string {
	return strconv.FormatInt(n, 10)
}
