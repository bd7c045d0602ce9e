package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/technova/storefront-api/internal/services/payments"
	"github.com/technova/storefront-api/utils"
)

const MaxWebhookBytes = int64(65536)

type PaymentHandler struct {
	Payments payments.Service
}

func NewPaymentHandler(svc payments.Service) *PaymentHandler {
	return &PaymentHandler{Payments: svc}
}

// CreatePaymentIntent takes an orderId or a list of items. Prices are always
// looked up server side.
func (h *PaymentHandler) CreatePaymentIntent(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req payments.CreateIntentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request"))
		return
	}
	req.IdempotencyKey = c.GetHeader("Idempotency-Key")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	intent, err := h.Payments.CreateIntent(ctx, userID, req)
	if err != nil {
		respondError(c, err, "Failed to create payment intent")
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Payment intent created", intent))
}

// HandleWebhook processes asynchronous events from Stripe. Anything but a 2xx
// makes Stripe retry, so only failures worth retrying answer 5xx.
func (h *PaymentHandler) HandleWebhook(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxWebhookBytes)
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusRequestEntityTooLarge, utils.ErrorResponse("Error reading request body"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	err = h.Payments.HandleWebhook(ctx, payload, c.GetHeader("Stripe-Signature"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, utils.SuccessResponse("Event received", nil))
	case errors.Is(err, payments.ErrInvalidSignature):
		logrus.WithField("client_ip", c.ClientIP()).Warn("Rejected webhook with invalid signature")
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid signature"))
	default:
		respondError(c, err, "Failed to process webhook")
	}
}
