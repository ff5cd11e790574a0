package middleware

import (
	"github.com/OFFIS-RIT/claimnet/internal/regions"
	"github.com/OFFIS-RIT/claimnet/internal/scoring"
	"github.com/OFFIS-RIT/claimnet/internal/session"
	"github.com/OFFIS-RIT/claimnet/internal/storage"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

type AppUser struct {
	UserID      string
	Role        string
	Permissions []string
}

type App struct {
	Scoring   *scoring.Client
	Sessions  session.Store
	Artifacts storage.ArtifactStore
	Regions   *regions.Client

	// Keyfunc verifies bearer JWTs; nil rejects every token that is not
	// the master API key.
	Keyfunc      jwt.Keyfunc
	MasterAPIKey string
	// AuthDisabled lets every request through with all permissions.
	AuthDisabled bool
}

type AppContext struct {
	echo.Context
	App  *App
	User *AppUser
}

func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app, nil}
			return next(cc)
		}
	}
}
