package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/openvote/voting-system/internal/core/domain"
	"github.com/openvote/voting-system/internal/core/ports"
)

const refreshCookieName = "refresh_token"

// AuthHandler exposes the session lifecycle over HTTP. The refresh token
// travels as an httpOnly cookie; only the access token appears in bodies.
type AuthHandler struct {
	sessions      ports.SessionService
	verifier      ports.IdentityVerifier
	refreshTTL    time.Duration
	secureCookies bool
}

func NewAuthHandler(sessions ports.SessionService, verifier ports.IdentityVerifier, refreshTTL time.Duration, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		sessions:      sessions,
		verifier:      verifier,
		refreshTTL:    refreshTTL,
		secureCookies: secureCookies,
	}
}

type registerRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type googleRequest struct {
	Credential string `json:"credential" validate:"required"`
}

type authResponse struct {
	AccessToken string       `json:"access_token"`
	User        *domain.User `json:"user,omitempty"`
}

// Register creates a new local account and opens a session.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	result, err := h.sessions.Register(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.setRefreshCookie(c, result.Tokens.RefreshToken)
	return c.JSON(http.StatusCreated, authResponse{
		AccessToken: result.Tokens.AccessToken,
		User:        result.User,
	})
}

// Login authenticates with email and password.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      401   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	result, err := h.sessions.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.setRefreshCookie(c, result.Tokens.RefreshToken)
	return c.JSON(http.StatusOK, authResponse{
		AccessToken: result.Tokens.AccessToken,
		User:        result.User,
	})
}

// Google signs in with a Google ID token, linking an existing local account
// by verified email when one exists.
//
// @Summary      Google sign-in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      googleRequest  true  "Google ID token"
// @Success      200   {object}  authResponse
// @Failure      401   {object}  map[string]string
// @Router       /auth/google [post]
func (h *AuthHandler) Google(c echo.Context) error {
	var req googleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	email, err := h.verifier.VerifyIDToken(c.Request().Context(), req.Credential)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid google credential")
	}

	result, err := h.sessions.LoginWithGoogle(c.Request().Context(), email)
	if err != nil {
		return err
	}

	h.setRefreshCookie(c, result.Tokens.RefreshToken)
	return c.JSON(http.StatusOK, authResponse{
		AccessToken: result.Tokens.AccessToken,
		User:        result.User,
	})
}

// Refresh exchanges the refresh cookie for a new token pair. The presented
// token is consumed; the rotated one replaces the cookie.
//
// @Summary      Refresh the session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  authResponse
// @Failure      401  {object}  map[string]string
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	cookie, err := c.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "no refresh token provided")
	}

	result, err := h.sessions.Refresh(c.Request().Context(), cookie.Value)
	if err != nil {
		return err
	}

	h.setRefreshCookie(c, result.Tokens.RefreshToken)
	return c.JSON(http.StatusOK, authResponse{AccessToken: result.Tokens.AccessToken})
}

// Logout revokes the current session. Revoking an already-consumed token is
// success; the client ends up logged out either way.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	cookie, err := c.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "no refresh token provided")
	}

	if err := h.sessions.Logout(c.Request().Context(), cookie.Value); err != nil {
		return err
	}

	h.clearRefreshCookie(c)
	return c.JSON(http.StatusOK, map[string]string{"message": "logout successful"})
}

func (h *AuthHandler) setRefreshCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/auth",
		MaxAge:   int(h.refreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/auth",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}
