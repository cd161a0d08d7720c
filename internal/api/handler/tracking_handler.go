package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/transporteur/marketplace/internal/core/ports"
)

type TrackingHandler struct {
	trackingService ports.TrackingService
}

func NewTrackingHandler(trackingService ports.TrackingService) *TrackingHandler {
	return &TrackingHandler{trackingService: trackingService}
}

// Location returns the simulated position of a mission. Latitude and
// longitude are null unless the mission is IN_PROGRESS.
//
// @Summary      Get mission location
// @Tags         tracking
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Mission ID"
// @Success      200  {object}  locationResponse
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Router       /tracking/missions/{id}/location [get]
func (h *TrackingHandler) Location(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	loc, err := h.trackingService.Location(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toLocationResponse(loc))
}
