package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/transporteur/marketplace/internal/core/ports"
)

type AdminHandler struct {
	adminService ports.AdminService
}

func NewAdminHandler(adminService ports.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// Accounts lists every account with its profile contact fields.
//
// @Summary      List accounts
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   accountRecordResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /admin/accounts [get]
func (h *AdminHandler) Accounts(c echo.Context) error {
	records, err := h.adminService.Accounts(c.Request().Context())
	if err != nil {
		return err
	}
	out := make([]accountRecordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, toAccountRecordResponse(r))
	}
	return c.JSON(http.StatusOK, out)
}

// Transactions lists payments with their mission and both parties.
//
// @Summary      List transactions
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   transactionResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /admin/transactions [get]
func (h *AdminHandler) Transactions(c echo.Context) error {
	records, err := h.adminService.Transactions(c.Request().Context())
	if err != nil {
		return err
	}
	out := make([]transactionResponse, 0, len(records))
	for _, r := range records {
		out = append(out, toTransactionResponse(r))
	}
	return c.JSON(http.StatusOK, out)
}

// Statistics returns the platform overview.
//
// @Summary      Platform statistics
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  statisticsResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /admin/statistics [get]
func (h *AdminHandler) Statistics(c echo.Context) error {
	stats, err := h.adminService.Statistics(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toStatisticsResponse(stats))
}

// MissionAudit returns the lifecycle trail of a mission, oldest first.
//
// @Summary      Mission audit trail
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Mission ID"
// @Success      200  {array}   auditEventResponse
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /admin/missions/{id}/audit [get]
func (h *AdminHandler) MissionAudit(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	events, err := h.adminService.MissionAudit(c.Request().Context(), id)
	if err != nil {
		return err
	}
	out := make([]auditEventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, toAuditEventResponse(e))
	}
	return c.JSON(http.StatusOK, out)
}
