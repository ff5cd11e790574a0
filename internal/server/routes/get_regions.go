package routes

import (
	"net/http"

	"github.com/OFFIS-RIT/claimnet/internal/regions"
	"github.com/OFFIS-RIT/claimnet/internal/server/middleware"

	"github.com/labstack/echo/v4"
)

type regionsResponse struct {
	Regions []regions.Region `json:"regions"`
}

// GetProvincesHandler lists provinces for the claim form.
func GetProvincesHandler(c echo.Context) error {
	client := c.(*middleware.AppContext).App.Regions
	list, err := client.Provinces(c.Request().Context())
	if err != nil {
		return errorJSON(c, http.StatusBadGateway, "region lookup failed")
	}
	return c.JSON(http.StatusOK, regionsResponse{Regions: list})
}

// GetRegenciesHandler lists the regencies of a province.
func GetRegenciesHandler(c echo.Context) error {
	client := c.(*middleware.AppContext).App.Regions
	list, err := client.Regencies(c.Request().Context(), c.Param("code"))
	if err != nil {
		return errorJSON(c, http.StatusBadGateway, "region lookup failed")
	}
	return c.JSON(http.StatusOK, regionsResponse{Regions: list})
}
