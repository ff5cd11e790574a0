package routes

import (
	"errors"
	"net/http"
	"regexp"

	"github.com/OFFIS-RIT/claimnet/internal/scoring"
	"github.com/OFFIS-RIT/claimnet/internal/server/middleware"
	"github.com/OFFIS-RIT/claimnet/internal/storage"
	"github.com/OFFIS-RIT/claimnet/pkg/logger"

	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	batchFolder         = "batches"
	predictionsFileName = "predictions.csv"
)

var batchIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

func batchPath(id string) string {
	return batchFolder + "/" + id + ".csv"
}

type createBatchResponse struct {
	ID           string               `json:"id"`
	FileName     string               `json:"file_name"`
	Summary      scoring.BatchSummary `json:"summary"`
	DownloadURL  string               `json:"download_url"`
	DownloadLink string               `json:"download_link,omitempty"`
}

// CreateBatchHandler scores an uploaded csv or parquet file and keeps the
// predictions for download.
func CreateBatchHandler(c echo.Context) error {
	name, content, err := readUpload(c, ".csv", ".parquet")
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	result, err := app.Scoring.BatchScore(ctx, name, content)
	if err != nil {
		return backendFailure(c, err)
	}

	id, err := gonanoid.New()
	if err != nil {
		return respondError(c, err)
	}
	path, err := app.Artifacts.Put(ctx, batchFolder, id, predictionsFileName, result.PredictionsCSV)
	if err != nil {
		return respondError(c, err)
	}

	resp := createBatchResponse{
		ID:          id,
		FileName:    name,
		Summary:     result.Summary,
		DownloadURL: "/api/batches/" + id + "/" + predictionsFileName,
	}
	link, err := app.Artifacts.Link(ctx, path)
	switch {
	case err == nil:
		resp.DownloadLink = link
	case !errors.Is(err, storage.ErrNoLink):
		logger.Warn("Failed to create download link", "path", path, "err", err)
	}

	logger.Info("Batch scored", "id", id, "rows", result.Summary.TotalRows, "fraud", result.Summary.PredictedFraud)
	return c.JSON(http.StatusCreated, resp)
}

// GetBatchPredictionsHandler streams a stored predictions CSV.
func GetBatchPredictionsHandler(c echo.Context) error {
	id := c.Param("id")
	if !batchIDPattern.MatchString(id) {
		return errorJSON(c, http.StatusNotFound, "not found")
	}

	app := c.(*middleware.AppContext).App
	body, err := app.Artifacts.Get(c.Request().Context(), batchPath(id))
	if err != nil {
		return respondError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+predictionsFileName+`"`)
	return c.Blob(http.StatusOK, "text/csv", body)
}
