package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// JWTAuth validates the Bearer token issued by the corporate identity
// provider and copies the claims this service cares about into the Echo
// context.  The token is HS256-signed with a shared secret; the subject
// is the numeric user ID used as the primary key of the users table.
//
// Downstream handlers read:
//
//	c.Get("user_id")   -> sub claim (number or string, coerce with getUserID)
//	c.Get("role")      -> role claim
//	c.Get("email")     -> optional profile claims used by RequireApproved
//	c.Get("full_name")
//	c.Get("phone")
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}

			c.Set("user_id", claims["sub"])
			c.Set("role", claims["role"])
			c.Set("email", claims["email"])
			c.Set("full_name", claims["name"])
			c.Set("phone", claims["phone_number"])
			return next(c)
		}
	}
}
