package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/transporteur/marketplace/internal/api/metrics"
	"github.com/transporteur/marketplace/internal/core/domain"
	"github.com/transporteur/marketplace/internal/core/ports"
)

// HeaderIdempotencyKey lets a client retry a payment without a second capture.
const HeaderIdempotencyKey = "Idempotency-Key"

type PaymentHandler struct {
	paymentService ports.PaymentService
}

func NewPaymentHandler(paymentService ports.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// Process captures the confirmed price of a mission.
//
// @Summary      Pay for a mission
// @Description  The amount must equal the confirmed price. A repeated Idempotency-Key replays the stored payment.
// @Tags         payment
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string                 false  "Client-chosen retry key"
// @Param        body             body      processPaymentRequest  true   "Card and amount"
// @Success      200              {object}  paymentResponse
// @Failure      400              {object}  errorResponse
// @Failure      401              {object}  errorResponse
// @Failure      403              {object}  errorResponse
// @Router       /payment/process [post]
func (h *PaymentHandler) Process(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req processPaymentRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.paymentService.Process(c.Request().Context(), p, ports.ProcessPaymentInput{
		MissionID:      req.MissionID,
		CardNumber:     req.CardNumber,
		CardHolderName: req.CardHolderName,
		ExpiryMonth:    req.ExpiryMonth,
		ExpiryYear:     req.ExpiryYear,
		CVV:            req.CVV,
		Amount:         req.Amount,
		IdempotencyKey: c.Request().Header.Get(HeaderIdempotencyKey),
	})
	if err != nil {
		metrics.PaymentsTotal.WithLabelValues("rejected").Inc()
		return err
	}

	if res.Replayed {
		metrics.PaymentsTotal.WithLabelValues("replayed").Inc()
		return c.JSON(http.StatusOK, toPaymentResponse(res.Payment, "Payment already processed"))
	}
	metrics.PaymentsTotal.WithLabelValues("captured").Inc()
	metrics.PaymentAmount.Observe(res.Payment.Amount.InexactFloat64())
	return c.JSON(http.StatusOK, toPaymentResponse(res.Payment, "Payment processed successfully"))
}

// Status reports whether a mission is paid.
//
// @Summary      Get payment status
// @Tags         payment
// @Produce      json
// @Security     BearerAuth
// @Param        missionId  path      int  true  "Mission ID"
// @Success      200        {object}  paymentStatusResponse
// @Failure      400        {object}  errorResponse
// @Failure      401        {object}  errorResponse
// @Failure      403        {object}  errorResponse
// @Failure      404        {object}  errorResponse
// @Router       /payment/status/{missionId} [get]
func (h *PaymentHandler) Status(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	missionID, err := pathID(c, "missionId")
	if err != nil {
		return err
	}

	view, err := h.paymentService.Status(c.Request().Context(), p, missionID)
	if errors.Is(err, domain.ErrMissionNotFound) {
		return c.JSON(http.StatusNotFound, errorResponse{Message: err.Error()})
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, paymentStatusResponse{
		MissionID:     view.MissionID,
		IsPaid:        view.IsPaid,
		Amount:        nullMoney(view.Amount),
		PaymentStatus: string(view.Status),
		Message:       view.Message,
	})
}
