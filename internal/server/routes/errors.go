package routes

import (
	"context"
	"errors"
	"net/http"

	"github.com/OFFIS-RIT/claimnet/internal/scoring"
	"github.com/OFFIS-RIT/claimnet/internal/session"
	"github.com/OFFIS-RIT/claimnet/internal/storage"
	"github.com/OFFIS-RIT/claimnet/pkg/claims"
	"github.com/OFFIS-RIT/claimnet/pkg/graph"
	csvloader "github.com/OFFIS-RIT/claimnet/pkg/loader/csv"
	"github.com/OFFIS-RIT/claimnet/pkg/logger"

	"github.com/labstack/echo/v4"
)

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(c echo.Context, status int, msg string) error {
	return c.JSON(status, errorResponse{Error: msg})
}

// respondError maps domain errors onto HTTP statuses.
func respondError(c echo.Context, err error) error {
	var backendErr *scoring.BackendError
	switch {
	case errors.Is(err, session.ErrNotFound):
		return errorJSON(c, http.StatusNotFound, "session not found")
	case errors.Is(err, session.ErrStale):
		return errorJSON(c, http.StatusConflict, "the session's file changed while inference was running, run it again")
	case errors.Is(err, storage.ErrNotFound):
		return errorJSON(c, http.StatusNotFound, "not found")
	case errors.Is(err, csvloader.ErrUnreadable):
		return errorJSON(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, claims.ErrMissingColumn),
		errors.Is(err, graph.ErrMissingValues),
		errors.Is(err, graph.ErrEmptyGraph),
		errors.Is(err, graph.ErrKindConflict):
		return errorJSON(c, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &backendErr), errors.Is(err, scoring.ErrBadResponse):
		logger.Warn("[Scoring] Backend request failed", "err", err)
		return errorJSON(c, http.StatusBadGateway, err.Error())
	default:
		logger.Error("Request failed", "path", c.Path(), "err", err)
		return errorJSON(c, http.StatusInternalServerError, "Internal server error")
	}
}

// backendFailure reports a failed scoring backend call. Anything but a
// cancelled request is a bad gateway.
func backendFailure(c echo.Context, err error) error {
	if errors.Is(err, context.Canceled) {
		return errorJSON(c, http.StatusServiceUnavailable, "request cancelled")
	}
	logger.Warn("[Scoring] Backend request failed", "path", c.Path(), "err", err)
	return errorJSON(c, http.StatusBadGateway, "scoring backend failed: "+err.Error())
}
