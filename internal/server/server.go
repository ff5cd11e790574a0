package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OFFIS-RIT/claimnet/internal/regions"
	"github.com/OFFIS-RIT/claimnet/internal/scoring"
	mid "github.com/OFFIS-RIT/claimnet/internal/server/middleware"
	"github.com/OFFIS-RIT/claimnet/internal/session"
	"github.com/OFFIS-RIT/claimnet/internal/storage"
	"github.com/OFFIS-RIT/claimnet/internal/util"
	"github.com/OFFIS-RIT/claimnet/pkg/logger"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/go-playground/validator"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const defaultBodyLimit = "64M"

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

type Params struct {
	// BodyLimit caps request bodies, e.g. "64M".
	BodyLimit string
}

// New wires the echo instance around app.
func New(app *mid.App, params Params) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator.New()}

	bodyLimit := params.BodyLimit
	if bodyLimit == "" {
		bodyLimit = defaultBodyLimit
	}

	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(bodyLimit))

	RegisterRoutes(e)
	return e
}

func Init() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	apiBase := util.GetEnvString("API_BASE", "http://localhost:8000")
	scoringClient := scoring.NewClient(scoring.NewClientParams{
		BaseURL: apiBase,
		Timeout: util.GetEnvDuration("API_TIMEOUT", 120*time.Second),
		Retries: int(util.GetEnvNumeric("API_RETRIES", 3)),
	})

	sessions := session.NewMemoryStore(util.GetEnvDuration("SESSION_TTL", session.DefaultTTL))
	go sessions.Run(ctx, time.Minute)

	var artifacts storage.ArtifactStore = storage.NewMemoryStore()
	if util.GetEnv("AWS_BUCKET") != "" {
		s3Client, err := storage.NewS3Client(ctx)
		if err != nil {
			logger.Fatal("Failed to create S3 client", "err", err)
		}
		artifacts = storage.NewS3Store(s3Client)
		logger.Info("Storing artifacts in S3", "bucket", util.GetEnv("AWS_BUCKET"))
	}

	app := &mid.App{
		Scoring:      scoringClient,
		Sessions:     sessions,
		Artifacts:    artifacts,
		Regions:      regions.NewClient(util.GetEnv("REGIONS_URL"), nil),
		MasterAPIKey: util.GetEnv("MASTER_API_KEY"),
	}

	authURL := util.GetEnv("AUTH_URL")
	switch {
	case authURL != "":
		k, err := keyfunc.NewDefault([]string{authURL + "/jwks"})
		if err != nil {
			logger.Fatal("Failed to load jwks keys", "err", err)
		}
		app.Keyfunc = k.Keyfunc
	case app.MasterAPIKey == "":
		app.AuthDisabled = true
		logger.Warn("Neither AUTH_URL nor MASTER_API_KEY is set, authentication is disabled")
	}

	e := New(app, Params{BodyLimit: util.GetEnvString("BODY_LIMIT", defaultBodyLimit)})

	go func() {
		port := util.GetEnv("PORT")
		if port == "" {
			port = "8080"
		}
		logger.Info("Starting server", "port", port, "api_base", apiBase)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}
