package middleware

import (
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"
)

func HasPermission(user *AppUser, permission string) bool {
	if user == nil {
		return false
	}
	return slices.Contains(user.Permissions, permission)
}

func HasAnyPermission(user *AppUser, permissions ...string) bool {
	return slices.ContainsFunc(permissions, func(p string) bool {
		return HasPermission(user, p)
	})
}

func requireUser(check func(*AppUser) bool, denied string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := c.(*AppContext).User
			if user == nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			}

			if !check(user) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": denied})
			}

			return next(c)
		}
	}
}

func RequirePermission(permission string) echo.MiddlewareFunc {
	return requireUser(func(u *AppUser) bool {
		return HasPermission(u, permission)
	}, "Forbidden: missing permission "+permission)
}

func RequireAnyPermission(permissions ...string) echo.MiddlewareFunc {
	return requireUser(func(u *AppUser) bool {
		return HasAnyPermission(u, permissions...)
	}, "Forbidden: missing required permission")
}
