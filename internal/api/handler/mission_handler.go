package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/transporteur/marketplace/internal/api/metrics"
	"github.com/transporteur/marketplace/internal/core/domain"
	"github.com/transporteur/marketplace/internal/core/lifecycle"
	"github.com/transporteur/marketplace/internal/core/ports"
)

type MissionHandler struct {
	missionService ports.MissionService
}

func NewMissionHandler(missionService ports.MissionService) *MissionHandler {
	return &MissionHandler{missionService: missionService}
}

// AvailableCarriers lists the carriers a client can book.
//
// @Summary      List available carriers
// @Tags         missions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   carrierResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /missions/carriers/available [get]
func (h *MissionHandler) AvailableCarriers(c echo.Context) error {
	carriers, err := h.missionService.AvailableCarriers(c.Request().Context())
	if err != nil {
		return err
	}
	out := make([]carrierResponse, 0, len(carriers))
	for _, cr := range carriers {
		out = append(out, toCarrierResponse(cr))
	}
	return c.JSON(http.StatusOK, out)
}

// Create books a mission with an available carrier.
//
// @Summary      Create a mission
// @Tags         missions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createMissionRequest  true  "Mission details"
// @Success      201   {object}  missionResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /missions [post]
func (h *MissionHandler) Create(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req createMissionRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	detail, err := h.missionService.Create(c.Request().Context(), p, ports.CreateMissionInput{
		CarrierID:   req.CarrierID,
		ScheduledAt: req.ScheduledAt,
		Origin:      req.Origin,
		Destination: req.Destination,
		Description: req.Description,
	})
	recordTransition(lifecycle.EventCreate, err)
	if err != nil {
		return err
	}
	metrics.MissionsCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, toMissionResponse(*detail))
}

// ListForClient returns the caller's missions, newest first.
//
// @Summary      List client missions
// @Tags         missions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   missionResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /missions/client [get]
func (h *MissionHandler) ListForClient(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	details, err := h.missionService.ListForClient(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toMissionResponses(details))
}

// ListForCarrier returns the missions assigned to the caller.
//
// @Summary      List carrier missions
// @Tags         missions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   missionResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /missions/carrier [get]
func (h *MissionHandler) ListForCarrier(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	details, err := h.missionService.ListForCarrier(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toMissionResponses(details))
}

// Get returns one mission to either of its parties.
//
// @Summary      Get a mission
// @Tags         missions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Mission ID"
// @Success      200  {object}  missionResponse
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /missions/{id} [get]
func (h *MissionHandler) Get(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	detail, err := h.missionService.Get(c.Request().Context(), p, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toMissionResponse(*detail))
}

// UpdateStatus lets the assigned carrier begin or complete a mission.
//
// @Summary      Begin or complete a mission
// @Description  Accepted targets are IN_PROGRESS and COMPLETED.
// @Tags         missions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                  true  "Mission ID"
// @Param        body  body      updateStatusRequest  true  "Target status"
// @Success      200   {object}  missionResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /missions/{id}/status [put]
func (h *MissionHandler) UpdateStatus(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req updateStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	event, err := lifecycle.EventForStatus(req.Status)
	if err != nil {
		return err
	}
	detail, err := h.missionService.UpdateStatus(c.Request().Context(), p, id, req.Status)
	recordTransition(event, err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toMissionResponse(*detail))
}

// Cancel lets the client abandon a mission that has not finished.
//
// @Summary      Cancel a mission
// @Tags         missions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Mission ID"
// @Success      200  {object}  missionResponse
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /missions/{id}/cancel [put]
func (h *MissionHandler) Cancel(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	detail, err := h.missionService.Cancel(c.Request().Context(), p, id)
	recordTransition(lifecycle.EventCancel, err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toMissionResponse(*detail))
}

// ProposePrice sets the carrier's first quote on an AWAITING mission.
//
// @Summary      Propose a price
// @Tags         missions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                  true  "Mission ID"
// @Param        body  body      proposePriceRequest  true  "Quote"
// @Success      200   {object}  missionResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /missions/{id}/propose-price [post]
func (h *MissionHandler) ProposePrice(c echo.Context) error {
	return h.priceChange(c, lifecycle.EventProposePrice, func(p domain.Principal, id int64) (*ports.MissionDetail, error) {
		var req proposePriceRequest
		if err := bind(c, &req); err != nil {
			return nil, err
		}
		return h.missionService.ProposePrice(c.Request().Context(), p, id, req.ProposedPrice)
	})
}

// ConfirmPrice accepts the current quote.
//
// @Summary      Confirm the proposed price
// @Tags         missions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Mission ID"
// @Success      200  {object}  missionResponse
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /missions/{id}/confirm-price [post]
func (h *MissionHandler) ConfirmPrice(c echo.Context) error {
	return h.priceChange(c, lifecycle.EventConfirmPrice, func(p domain.Principal, id int64) (*ports.MissionDetail, error) {
		return h.missionService.ConfirmPrice(c.Request().Context(), p, id)
	})
}

// UpdatePrice revises an unconfirmed quote and appends a history row.
//
// @Summary      Update the proposed price
// @Tags         missions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                 true  "Mission ID"
// @Param        body  body      updatePriceRequest  true  "New quote"
// @Success      200   {object}  missionResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /missions/{id}/update-price [put]
func (h *MissionHandler) UpdatePrice(c echo.Context) error {
	return h.priceChange(c, lifecycle.EventUpdatePrice, func(p domain.Principal, id int64) (*ports.MissionDetail, error) {
		var req updatePriceRequest
		if err := bind(c, &req); err != nil {
			return nil, err
		}
		return h.missionService.UpdatePrice(c.Request().Context(), p, id, req.NewPrice, req.Reason)
	})
}

// CarrierContact returns the assigned carrier's contact card to the owning client.
//
// @Summary      Get carrier contact
// @Tags         missions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Mission ID"
// @Success      200  {object}  carrierContactResponse
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /missions/{id}/carrier/contact [get]
func (h *MissionHandler) CarrierContact(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	contact, err := h.missionService.CarrierContact(c.Request().Context(), p, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, carrierContactResponse{
		CarrierID: contact.CarrierID,
		Name:      contact.Name,
		Surname:   contact.Surname,
		Phone:     contact.Phone,
	})
}

func (h *MissionHandler) priceChange(c echo.Context, event lifecycle.Event, apply func(domain.Principal, int64) (*ports.MissionDetail, error)) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	detail, err := apply(p, id)
	recordTransition(event, err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toMissionResponse(*detail))
}

// recordTransition counts a lifecycle request. Requests rejected before they
// reach the service (bad payload) are counted as rejected too.
func recordTransition(event lifecycle.Event, err error) {
	result := "applied"
	if err != nil {
		result = "rejected"
	}
	metrics.MissionTransitionsTotal.WithLabelValues(string(event), result).Inc()
}
