package middleware

// identity.go keeps the local user directory in sync with the identity
// provider and gates booking features behind account approval.

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/minbok/shuttle-reservation/internal/model"
	"github.com/minbok/shuttle-reservation/internal/repository"
)

// RequireApproved upserts the caller's directory row from the token
// claims, loads it, and rejects unapproved accounts with 403.  The
// loaded *model.User is stored under "current_user" for handlers that
// need company membership.
func RequireApproved(users *repository.UserRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid, ok := claimUint64(c.Get("user_id"))
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token subject"})
			}

			ctx := c.Request().Context()
			email := claimString(c.Get("email"))
			name := claimString(c.Get("full_name"))
			phone := claimString(c.Get("phone"))
			if err := users.Upsert(ctx, uid, email, name, phone); err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load account"})
			}

			u, err := users.GetByID(ctx, uid)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load account"})
			}
			if !u.IsApproved && u.Role != model.RoleOperationsAdmin {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "account pending approval"})
			}

			c.Set("current_user", u)
			return next(c)
		}
	}
}

// claimUint64 coerces the JWT subject, which arrives as a JSON number
// (float64) or string depending on the issuer.
func claimUint64(v interface{}) (uint64, bool) {
	switch t := v.(type) {
	case float64:
		if t < 0 {
			return 0, false
		}
		return uint64(t), true
	case string:
		n, err := strconv.ParseUint(t, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	case int64:
		if t < 0 {
			return 0, false
		}
		return uint64(t), true
	}
	return 0, false
}

func claimString(v interface{}) *string {
	if s, ok := v.(string); ok && s != "" {
		return &s
	}
	return nil
}
