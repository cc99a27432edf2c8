package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/launchform/intake-api/internal/model"
)

// ExternalUpserter creates or refreshes the local account behind an
// upstream-verified identity.  *repository.UserRepo satisfies it.
type ExternalUpserter interface {
	UpsertExternal(ctx context.Context, externalID, email, firstName, lastName string) (model.User, error)
}

// Identity headers set by a trusted auth proxy in front of the API.
// The proxy has already verified the session; the values are treated
// as authoritative.
const (
	HeaderExternalID = "X-Auth-External-Id"
	HeaderEmail      = "X-Auth-Email"
	HeaderFirstName  = "X-Auth-First-Name"
	HeaderLastName   = "X-Auth-Last-Name"
)

// TrustedIdentity returns an Echo middleware that authenticates requests
// from identity headers instead of a Bearer token.  The account is
// upserted on every request, so the first authenticated request creates
// the local row.  Handlers behind it read c.Get("user_id") (uint64) and
// c.Get("role") (string), the same contract as JWTAuth.
func TrustedIdentity(users ExternalUpserter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			extID := c.Request().Header.Get(HeaderExternalID)
			email := c.Request().Header.Get(HeaderEmail)
			if extID == "" || email == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing identity headers"})
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			u, err := users.UpsertExternal(ctx, extID, email,
				c.Request().Header.Get(HeaderFirstName),
				c.Request().Header.Get(HeaderLastName))
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not resolve identity"})
			}

			c.Set("user_id", u.ID)
			c.Set("role", u.Role)
			return next(c)
		}
	}
}
