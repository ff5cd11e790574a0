package routes

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/OFFIS-RIT/claimnet/internal/metrics"
	"github.com/OFFIS-RIT/claimnet/internal/server/middleware"
	"github.com/OFFIS-RIT/claimnet/internal/session"
	"github.com/OFFIS-RIT/claimnet/pkg/claims"
	"github.com/OFFIS-RIT/claimnet/pkg/common"
	"github.com/OFFIS-RIT/claimnet/pkg/graph"
	csvloader "github.com/OFFIS-RIT/claimnet/pkg/loader/csv"
	"github.com/OFFIS-RIT/claimnet/pkg/logger"

	"github.com/labstack/echo/v4"
)

const (
	previewRows = 5
	maxRadius   = 6
)

type sessionResponse struct {
	ID           string        `json:"id"`
	FileName     string        `json:"file_name"`
	Rows         int           `json:"rows"`
	Columns      []string      `json:"columns"`
	Preview      *claims.Table `json:"preview"`
	Faskes       []string      `json:"faskes"`
	InferenceRan bool          `json:"inference_ran"`
	Revision     int           `json:"revision"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

func newSessionResponse(s *session.Session) sessionResponse {
	return sessionResponse{
		ID:           s.ID,
		FileName:     s.FileName,
		Rows:         s.Table.Len(),
		Columns:      s.Table.Header,
		Preview:      s.Table.Head(previewRows),
		Faskes:       s.Table.FacilityIDs(),
		InferenceRan: s.InferenceRan,
		Revision:     s.Revision,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

// UploadSessionHandler parses an uploaded claims CSV and starts a session,
// or replaces the file of the session named by the session_id form field.
func UploadSessionHandler(c echo.Context) error {
	name, content, err := readUpload(c, ".csv")
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}

	table, err := csvloader.ParseTable(content)
	if err != nil {
		return respondError(c, err)
	}
	if missing := table.MissingRequired(); len(missing) > 0 {
		return errorJSON(c, http.StatusUnprocessableEntity,
			fmt.Sprintf("%v: %s", claims.ErrMissingColumn, strings.Join(missing, ", ")))
	}

	ctx := c.Request().Context()
	store := c.(*middleware.AppContext).App.Sessions
	upload := session.Upload{FileName: name, Content: content, Table: table}

	var s *session.Session
	status := http.StatusCreated
	if id := strings.TrimSpace(c.FormValue("session_id")); id != "" {
		s, err = store.Replace(ctx, id, upload)
		status = http.StatusOK
	} else {
		s, err = store.Create(ctx, upload)
	}
	if err != nil {
		return respondError(c, err)
	}

	logger.Info("[Session] Claims uploaded", "id", s.ID, "file", name, "rows", table.Len())
	return c.JSON(status, newSessionResponse(s))
}

func GetSessionHandler(c echo.Context) error {
	s, err := c.(*middleware.AppContext).App.Sessions.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newSessionResponse(s))
}

func DeleteSessionHandler(c echo.Context) error {
	if err := c.(*middleware.AppContext).App.Sessions.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type facilityGraphResponse struct {
	FaskesID string       `json:"faskes_id"`
	Rows     int          `json:"rows"`
	Radius   int          `json:"radius"`
	Graph    common.Graph `json:"graph"`
}

// GetFacilityGraphHandler builds the graph of the facility's claims and
// returns the neighbourhood around the facility node.
func GetFacilityGraphHandler(c echo.Context) error {
	radius := graph.DefaultEgoRadius
	if raw := c.QueryParam("radius"); raw != "" {
		r, err := strconv.Atoi(raw)
		if err != nil || r < 0 || r > maxRadius {
			return errorJSON(c, http.StatusBadRequest, fmt.Sprintf("radius must be an integer between 0 and %d", maxRadius))
		}
		radius = r
	}

	s, err := c.(*middleware.AppContext).App.Sessions.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}

	faskesID := c.Param("faskes_id")
	filtered := s.Table.FilterFacility(faskesID)
	if filtered.Len() == 0 {
		return errorJSON(c, http.StatusNotFound, "facility not found")
	}

	g, err := buildGraph(filtered)
	if err != nil {
		return respondError(c, err)
	}

	center := graph.FacilityKey(faskesID)
	sub, ok := g.Ego(center, radius)
	if !ok {
		return errorJSON(c, http.StatusNotFound, "facility not found")
	}

	return c.JSON(http.StatusOK, facilityGraphResponse{
		FaskesID: faskesID,
		Rows:     filtered.Len(),
		Radius:   radius,
		Graph:    graph.Visualize(sub, center),
	})
}

// GetFacilityRiskHandler scores a facility against the graph of the whole
// uploaded file.
func GetFacilityRiskHandler(c echo.Context) error {
	s, err := c.(*middleware.AppContext).App.Sessions.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}

	g, err := buildGraph(s.Table)
	if err != nil {
		return respondError(c, err)
	}

	faskesID := c.Param("faskes_id")
	score, ok := graph.ScoreFacility(g, faskesID)
	if !ok {
		return errorJSON(c, http.StatusNotFound, "not found")
	}
	metrics.ObserveRiskScore(string(score.Level), score.FinalRisk)

	logger.Debug("[Session] Scored facility", "id", s.ID, "faskes_id", faskesID, "final_risk", score.FinalRisk)
	return c.JSON(http.StatusOK, score)
}

func buildGraph(table *claims.Table) (*graph.Graph, error) {
	rows, err := table.Rows()
	if err != nil {
		metrics.ObserveGraphBuild(0, err)
		return nil, err
	}
	g, err := graph.Build(rows)
	if err != nil {
		metrics.ObserveGraphBuild(0, err)
		return nil, err
	}
	metrics.ObserveGraphBuild(g.NumNodes(), nil)
	return g, nil
}
