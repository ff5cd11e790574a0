package routes

import (
	"net/http"

	"github.com/OFFIS-RIT/claimnet/internal/server/middleware"
	"github.com/OFFIS-RIT/claimnet/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RunInferenceHandler sends the session's file to the graph inference
// backend and keeps the result on the session. A file uploaded while the
// backend was busy discards the result with 409.
func RunInferenceHandler(c echo.Context) error {
	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	s, err := app.Sessions.Get(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}

	result, err := app.Scoring.InferenceGraph(ctx, s.FileName, s.Content)
	if err != nil {
		return backendFailure(c, err)
	}
	if err := app.Sessions.SaveInference(ctx, s.ID, s.Revision, result); err != nil {
		return respondError(c, err)
	}

	logger.Info("[Session] Inference completed", "id", s.ID, "explanations", len(result.Explanations))
	return c.JSON(http.StatusOK, result)
}

// GetInferenceHandler returns the stored inference result.
func GetInferenceHandler(c echo.Context) error {
	s, err := c.(*middleware.AppContext).App.Sessions.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	if !s.InferenceRan || s.Inference == nil {
		return errorJSON(c, http.StatusConflict, "inference has not been run for this upload")
	}
	return c.JSON(http.StatusOK, s.Inference)
}
