package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/launchform/intake-api/internal/model"
)

// fakeUpserter records the identity it was asked to resolve.
type fakeUpserter struct {
	gotExternalID string
	gotEmail      string
	user          model.User
	err           error
	calls         int
}

func (f *fakeUpserter) UpsertExternal(_ context.Context, externalID, email, firstName, lastName string) (model.User, error) {
	f.calls++
	f.gotExternalID = externalID
	f.gotEmail = email
	return f.user, f.err
}

func runTrusted(t *testing.T, up ExternalUpserter, headers map[string]string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/projects", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	handler := TrustedIdentity(up)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec, c
}

func TestTrustedIdentityUpsertsAndInjectsIdentity(t *testing.T) {
	up := &fakeUpserter{user: model.User{ID: 7, Role: model.RoleUser}}
	rec, c := runTrusted(t, up, map[string]string{
		HeaderExternalID: "auth0|abc123",
		HeaderEmail:      "dana@example.com",
		HeaderFirstName:  "Dana",
		HeaderLastName:   "Reyes",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if up.calls != 1 {
		t.Fatalf("upsert called %d times", up.calls)
	}
	if up.gotExternalID != "auth0|abc123" || up.gotEmail != "dana@example.com" {
		t.Errorf("upserted identity = %q / %q", up.gotExternalID, up.gotEmail)
	}
	if got, ok := c.Get("user_id").(uint64); !ok || got != 7 {
		t.Errorf("user_id = %v", c.Get("user_id"))
	}
	if got, ok := c.Get("role").(string); !ok || got != model.RoleUser {
		t.Errorf("role = %v", c.Get("role"))
	}
}

func TestTrustedIdentityRejectsMissingHeaders(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
	}{
		{"no headers", nil},
		{"missing email", map[string]string{HeaderExternalID: "auth0|abc123"}},
		{"missing external id", map[string]string{HeaderEmail: "dana@example.com"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			up := &fakeUpserter{}
			rec, _ := runTrusted(t, up, tc.headers)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
			if up.calls != 0 {
				t.Fatalf("upsert called %d times for unauthenticated request", up.calls)
			}
		})
	}
}

func TestTrustedIdentityFailsClosedOnStoreError(t *testing.T) {
	up := &fakeUpserter{err: errors.New("db down")}
	rec, c := runTrusted(t, up, map[string]string{
		HeaderExternalID: "auth0|abc123",
		HeaderEmail:      "dana@example.com",
	})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if c.Get("user_id") != nil {
		t.Errorf("user_id leaked into context: %v", c.Get("user_id"))
	}
}
