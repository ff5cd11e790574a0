package routes

import (
	"net/http"

	"github.com/OFFIS-RIT/claimnet/internal/server/middleware"
	"github.com/OFFIS-RIT/claimnet/pkg/claims"
	"github.com/OFFIS-RIT/claimnet/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ScoreClaimHandler validates a single claim and asks the backend for a
// fraud verdict.
func ScoreClaimHandler(c echo.Context) error {
	data := new(claims.ClaimForm)
	if err := c.Bind(data); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(data); err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}
	if err := data.CheckChoices(); err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}

	app := c.(*middleware.AppContext).App
	result, err := app.Scoring.ScoreSingle(c.Request().Context(), data.Payload())
	if err != nil {
		return backendFailure(c, err)
	}

	logger.Debug("[Scoring] Scored claim", "claim_id", data.ClaimID)
	return c.JSON(http.StatusOK, result)
}
