package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/launchform/intake-api/internal/utils"
)

const testSecret = "test-signing-secret"

func runProtected(t *testing.T, mw echo.MiddlewareFunc, authHeader string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/projects", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec, c
}

func TestJWTAuthRejectsMissingToken(t *testing.T) {
	rec, _ := runProtected(t, JWTAuth(testSecret), "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestJWTAuthRejectsGarbageToken(t *testing.T) {
	rec, _ := runProtected(t, JWTAuth(testSecret), "Bearer not.a.jwt")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestJWTAuthRejectsWrongSecret(t *testing.T) {
	tok, err := utils.NewAccessToken("some-other-secret", 42, "USER", 5)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	rec, _ := runProtected(t, JWTAuth(testSecret), "Bearer "+tok.Token)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestJWTAuthInjectsIdentity(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 42, "ADMIN", 5)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	rec, c := runProtected(t, JWTAuth(testSecret), "Bearer "+tok.Token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got, ok := c.Get("user_id").(uint64); !ok || got != 42 {
		t.Errorf("user_id = %v", c.Get("user_id"))
	}
	if got, ok := c.Get("role").(string); !ok || got != "ADMIN" {
		t.Errorf("role = %v", c.Get("role"))
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		role    interface{}
		want    int
	}{
		{"admin on admin route", []string{"ADMIN"}, "ADMIN", http.StatusOK},
		{"user on admin route", []string{"ADMIN"}, "USER", http.StatusForbidden},
		{"user on shared route", []string{"USER", "ADMIN"}, "USER", http.StatusOK},
		{"missing role", []string{"ADMIN"}, nil, http.StatusForbidden},
		{"non-string role", []string{"ADMIN"}, 7, http.StatusForbidden},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/v1/admin/projects", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			if tc.role != nil {
				c.Set("role", tc.role)
			}
			handler := RequireRole(tc.allowed...)(func(c echo.Context) error {
				return c.NoContent(http.StatusOK)
			})
			if err := handler(c); err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
		})
	}
}
