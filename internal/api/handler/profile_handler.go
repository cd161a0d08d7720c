package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/transporteur/marketplace/internal/core/ports"
)

type ProfileHandler struct {
	profileService ports.ProfileService
}

func NewProfileHandler(profileService ports.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// ClientDashboard returns the client's profile with its mission counters.
//
// @Summary      Get client profile
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  clientDashboardResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /profile/client [get]
func (h *ProfileHandler) ClientDashboard(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	d, err := h.profileService.ClientDashboard(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, clientDashboardResponse{
		Email:             d.Email,
		Profile:           toClientProfileResponse(d.Profile),
		CompletedMissions: d.CompletedMissions,
		ActiveMissions:    d.ActiveMissions,
		WelcomeMessage:    d.Welcome,
	})
}

// UpdateClient changes the non-empty fields of the client's profile.
//
// @Summary      Update client profile
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateProfileRequest  true  "Profile fields"
// @Success      200   {object}  clientProfileResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /profile/client [put]
func (h *ProfileHandler) UpdateClient(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req updateProfileRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	client, err := h.profileService.UpdateClient(c.Request().Context(), p, toProfileInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toClientProfileResponse(*client))
}

// CarrierDashboard returns the carrier's profile with its mission counters.
//
// @Summary      Get carrier profile
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  carrierDashboardResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /profile/carrier [get]
func (h *ProfileHandler) CarrierDashboard(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	d, err := h.profileService.CarrierDashboard(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, carrierDashboardResponse{
		Email:             d.Email,
		Profile:           toCarrierResponse(d.Profile),
		CompletedMissions: d.CompletedMissions,
		ActiveMissions:    d.ActiveMissions,
		WelcomeMessage:    d.Welcome,
	})
}

// UpdateCarrier changes the non-empty fields of the carrier's profile.
//
// @Summary      Update carrier profile
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateProfileRequest  true  "Profile fields"
// @Success      200   {object}  carrierResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /profile/carrier [put]
func (h *ProfileHandler) UpdateCarrier(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req updateProfileRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	carrier, err := h.profileService.UpdateCarrier(c.Request().Context(), p, toProfileInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCarrierResponse(*carrier))
}

// SetAvailability toggles whether the carrier can be booked.
//
// @Summary      Set carrier availability
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      availabilityRequest  true  "Availability"
// @Success      200   {object}  carrierResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /profile/carrier/availability [put]
func (h *ProfileHandler) SetAvailability(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req availabilityRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	carrier, err := h.profileService.SetAvailability(c.Request().Context(), p, *req.Available)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCarrierResponse(*carrier))
}

// AdminProfile describes the calling administrator.
//
// @Summary      Get admin profile
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  adminProfileResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /profile/admin [get]
func (h *ProfileHandler) AdminProfile(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	a, err := h.profileService.AdminProfile(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, adminProfileResponse{
		AccountID:   a.AccountID,
		Email:       a.Email,
		Role:        string(a.Role),
		CreatedAt:   a.CreatedAt,
		Permissions: a.Permissions,
	})
}

func toProfileInput(req updateProfileRequest) ports.UpdateProfileInput {
	return ports.UpdateProfileInput{
		Name:     req.Name,
		Surname:  req.Surname,
		Phone:    req.Phone,
		Address:  req.Address,
		City:     req.City,
		Location: req.Location,
	}
}
