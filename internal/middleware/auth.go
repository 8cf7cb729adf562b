package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"medimart_api/internal/models"
	"medimart_api/internal/services"
)

// Context keys set by RequireAuth
const (
	ContextUserID   = "userID"
	ContextUserRole = "userRole"
)

// RequireAuth returns a middleware that verifies bearer tokens and
// puts the caller's id and role into the request context.
func RequireAuth(tokens *services.TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			tokenString := strings.TrimPrefix(header, "Bearer ")
			if tokenString == header {
				return echo.NewHTTPError(http.StatusUnauthorized, "authorization header must be a bearer token")
			}

			claims, err := tokens.Parse(tokenString)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			c.Set(ContextUserID, claims.UserID)
			c.Set(ContextUserRole, claims.Role)

			return next(c)
		}
	}
}

// RequireAdmin only lets admin-role callers through. Must run after
// RequireAuth.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		role, _ := c.Get(ContextUserRole).(string)
		if role != models.RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return next(c)
	}
}
