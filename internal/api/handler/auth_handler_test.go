package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/openvote/voting-system/internal/core/domain"
	"github.com/openvote/voting-system/internal/core/ports"
)

type stubSessionService struct {
	registerFn func(ctx context.Context, email, password string) (*ports.AuthResult, error)
	loginFn    func(ctx context.Context, email, password string) (*ports.AuthResult, error)
	refreshFn  func(ctx context.Context, refreshToken string) (*ports.AuthResult, error)
	logoutFn   func(ctx context.Context, refreshToken string) error
	googleFn   func(ctx context.Context, verifiedEmail string) (*ports.AuthResult, error)
}

func (s *stubSessionService) Register(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	return s.registerFn(ctx, email, password)
}

func (s *stubSessionService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubSessionService) Refresh(ctx context.Context, refreshToken string) (*ports.AuthResult, error) {
	return s.refreshFn(ctx, refreshToken)
}

func (s *stubSessionService) Logout(ctx context.Context, refreshToken string) error {
	return s.logoutFn(ctx, refreshToken)
}

func (s *stubSessionService) LoginWithGoogle(ctx context.Context, verifiedEmail string) (*ports.AuthResult, error) {
	return s.googleFn(ctx, verifiedEmail)
}

type stubVerifier struct {
	email string
	err   error
}

func (v *stubVerifier) VerifyIDToken(context.Context, string) (string, error) {
	return v.email, v.err
}

func authResult(userID, email string) *ports.AuthResult {
	return &ports.AuthResult{
		User: &domain.User{ID: userID, Email: email, Provider: domain.ProviderLocal},
		Tokens: domain.TokenPair{
			AccessToken:  "access-" + userID,
			RefreshToken: "refresh-" + userID,
		},
	}
}

func newAuthContext(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func refreshCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == refreshCookieName {
			return c
		}
	}
	return nil
}

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubSessionService{
		registerFn: func(_ context.Context, email, password string) (*ports.AuthResult, error) {
			if email != "alice@example.com" || password != "s3cretpass" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return authResult("user_1", email), nil
		},
	}
	h := NewAuthHandler(stub, nil, 720*time.Hour, false)

	c, rec := newAuthContext(http.MethodPost, "/auth/register", `{"email":"alice@example.com","password":"s3cretpass"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["access_token"] != "access-user_1" {
		t.Fatalf("expected access token in body, got %v", resp["access_token"])
	}
	if _, leaked := resp["refresh_token"]; leaked {
		t.Fatalf("refresh token must not appear in the body")
	}

	cookie := refreshCookie(rec)
	if cookie == nil {
		t.Fatalf("expected refresh cookie to be set")
	}
	if cookie.Value != "refresh-user_1" || !cookie.HttpOnly || cookie.Path != "/auth" {
		t.Fatalf("unexpected cookie attributes: %+v", cookie)
	}
}

func TestAuthHandler_Register_InvalidPayload(t *testing.T) {
	stub := &stubSessionService{
		registerFn: func(context.Context, string, string) (*ports.AuthResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewAuthHandler(stub, nil, time.Hour, false)

	c, _ := newAuthContext(http.MethodPost, "/auth/register", "not-json")
	err := h.Register(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestAuthHandler_Register_ShortPassword(t *testing.T) {
	stub := &stubSessionService{
		registerFn: func(context.Context, string, string) (*ports.AuthResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewAuthHandler(stub, nil, time.Hour, false)

	c, _ := newAuthContext(http.MethodPost, "/auth/register", `{"email":"alice@example.com","password":"short"}`)
	err := h.Register(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}
}

func TestAuthHandler_Register_DuplicateEmailPassesThrough(t *testing.T) {
	stub := &stubSessionService{
		registerFn: func(context.Context, string, string) (*ports.AuthResult, error) {
			return nil, domain.ErrUserExists
		},
	}
	h := NewAuthHandler(stub, nil, time.Hour, false)

	c, _ := newAuthContext(http.MethodPost, "/auth/register", `{"email":"alice@example.com","password":"s3cretpass"}`)
	if err := h.Register(c); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists to pass through, got %v", err)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	stub := &stubSessionService{
		loginFn: func(_ context.Context, email, password string) (*ports.AuthResult, error) {
			return authResult("user_1", email), nil
		},
	}
	h := NewAuthHandler(stub, nil, time.Hour, false)

	c, rec := newAuthContext(http.MethodPost, "/auth/login", `{"email":"alice@example.com","password":"s3cretpass"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if refreshCookie(rec) == nil {
		t.Fatalf("expected refresh cookie to be set")
	}
}

func TestAuthHandler_Login_InvalidCredentialsPassesThrough(t *testing.T) {
	stub := &stubSessionService{
		loginFn: func(context.Context, string, string) (*ports.AuthResult, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(stub, nil, time.Hour, false)

	c, _ := newAuthContext(http.MethodPost, "/auth/login", `{"email":"alice@example.com","password":"wrong"}`)
	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials to pass through, got %v", err)
	}
}

func TestAuthHandler_Google_Success(t *testing.T) {
	stub := &stubSessionService{
		googleFn: func(_ context.Context, verifiedEmail string) (*ports.AuthResult, error) {
			if verifiedEmail != "alice@example.com" {
				t.Fatalf("unexpected verified email: %s", verifiedEmail)
			}
			return authResult("user_1", verifiedEmail), nil
		},
	}
	verifier := &stubVerifier{email: "alice@example.com"}
	h := NewAuthHandler(stub, verifier, time.Hour, false)

	c, rec := newAuthContext(http.MethodPost, "/auth/google", `{"credential":"google-id-token"}`)
	if err := h.Google(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthHandler_Google_BadCredential(t *testing.T) {
	stub := &stubSessionService{
		googleFn: func(context.Context, string) (*ports.AuthResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	verifier := &stubVerifier{err: errors.New("invalid signature")}
	h := NewAuthHandler(stub, verifier, time.Hour, false)

	c, _ := newAuthContext(http.MethodPost, "/auth/google", `{"credential":"forged"}`)
	err := h.Google(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestAuthHandler_Refresh_RotatesCookie(t *testing.T) {
	stub := &stubSessionService{
		refreshFn: func(_ context.Context, refreshToken string) (*ports.AuthResult, error) {
			if refreshToken != "refresh-old" {
				t.Fatalf("unexpected presented token: %s", refreshToken)
			}
			return authResult("user_1", "alice@example.com"), nil
		},
	}
	h := NewAuthHandler(stub, nil, time.Hour, false)

	c, rec := newAuthContext(http.MethodPost, "/auth/refresh", "")
	c.Request().AddCookie(&http.Cookie{Name: refreshCookieName, Value: "refresh-old"})

	if err := h.Refresh(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	cookie := refreshCookie(rec)
	if cookie == nil || cookie.Value != "refresh-user_1" {
		t.Fatalf("expected rotated cookie, got %+v", cookie)
	}
}

func TestAuthHandler_Refresh_NoCookie(t *testing.T) {
	h := NewAuthHandler(&stubSessionService{}, nil, time.Hour, false)

	c, _ := newAuthContext(http.MethodPost, "/auth/refresh", "")
	err := h.Refresh(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestAuthHandler_Refresh_ConsumedTokenPassesThrough(t *testing.T) {
	stub := &stubSessionService{
		refreshFn: func(context.Context, string) (*ports.AuthResult, error) {
			return nil, domain.ErrUnauthenticated
		},
	}
	h := NewAuthHandler(stub, nil, time.Hour, false)

	c, _ := newAuthContext(http.MethodPost, "/auth/refresh", "")
	c.Request().AddCookie(&http.Cookie{Name: refreshCookieName, Value: "refresh-used"})

	if err := h.Refresh(c); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated to pass through, got %v", err)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	var revoked string
	stub := &stubSessionService{
		logoutFn: func(_ context.Context, refreshToken string) error {
			revoked = refreshToken
			return nil
		},
	}
	h := NewAuthHandler(stub, nil, time.Hour, false)

	c, rec := newAuthContext(http.MethodPost, "/auth/logout", "")
	c.Request().AddCookie(&http.Cookie{Name: refreshCookieName, Value: "refresh-live"})

	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if revoked != "refresh-live" {
		t.Fatalf("expected the cookie token to be revoked, got %q", revoked)
	}

	cookie := refreshCookie(rec)
	if cookie == nil || cookie.Value != "" || cookie.MaxAge >= 0 {
		t.Fatalf("expected the cookie to be cleared, got %+v", cookie)
	}
}

func TestAuthHandler_Logout_NoCookie(t *testing.T) {
	h := NewAuthHandler(&stubSessionService{}, nil, time.Hour, false)

	c, _ := newAuthContext(http.MethodPost, "/auth/logout", "")
	err := h.Logout(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}
