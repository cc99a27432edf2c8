package middleware

// identity.go holds the identity helper shared by the cache and rate
// limit key builders.  JWTAuth stores the subject as a uint64 under
// "user_id"; unauthenticated requests resolve to "anon".

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// currentUserID returns the authenticated user id as a string for use in
// Redis keys, or "anon" when the request carries no identity.
func currentUserID(c echo.Context) string {
	switch v := c.Get("user_id").(type) {
	case uint64:
		if v > 0 {
			return strconv.FormatUint(v, 10)
		}
	case string:
		if v != "" {
			return v
		}
	}
	return "anon"
}
