package handlers

import (
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	service "github.com/aaravmahajanofficial/storefront/internal/services"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
	"github.com/aaravmahajanofficial/storefront/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

const IdempotencyKeyHeader = "Idempotency-Key"

type CheckoutHandler struct {
	checkoutService     service.CheckoutService
	finalizationService service.FinalizationService
	validator           *validator.Validate
}

func NewCheckoutHandler(checkoutService service.CheckoutService, finalizationService service.FinalizationService) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService:     checkoutService,
		finalizationService: finalizationService,
		validator:           validator.New(),
	}
}

// CreateSession godoc
//
//	@Summary		Start an embedded checkout
//	@Description	Creates a payment provider session for the cart and stores the pending order. The amount must equal the cart subtotal for one-time purchases.
//	@Tags			Checkout
//	@Accept			json
//	@Produce		json
//	@Param			Idempotency-Key	header		string							false	"Forwarded to the payment provider"
//	@Param			checkout		body		models.CheckoutRequest			true	"Customer and amount"
//	@Success		201				{object}	models.CheckoutSessionResponse	"Client secret for the embedded checkout"
//	@Failure		400				{object}	response.ErrorResponse			"Empty cart or amount mismatch"
//	@Failure		502				{object}	response.ErrorResponse			"Payment provider unavailable"
//	@Router			/checkout/sessions [post]
func (h *CheckoutHandler) CreateSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		sessionID, ok := requireSession(w, r, logger)
		if !ok {
			return
		}

		var req models.CheckoutRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid checkout input")
			return
		}

		session, err := h.checkoutService.CreateSession(r.Context(), sessionID, &req, r.Header.Get(IdempotencyKeyHeader))
		if err != nil {
			logger.Error("Failed to create checkout session", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Checkout session created", slog.String("providerSessionID", session.SessionID))
		response.Success(w, http.StatusCreated, session)
	}
}

// Return godoc
//
//	@Summary		Finalize a checkout after the provider redirect
//	@Description	Verifies the payment and creates the order. Safe to call repeatedly for the same provider session.
//	@Tags			Checkout
//	@Produce		json
//	@Param			session_id	query		string						true	"Provider checkout session"
//	@Success		200			{object}	models.FinalizationResult	"Order confirmation"
//	@Failure		402			{object}	response.ErrorResponse		"Payment not completed"
//	@Failure		409			{object}	response.ErrorResponse		"Finalization already running"
//	@Failure		500			{object}	response.ErrorResponse		"Order could not be saved"
//	@Router			/checkout/return [get]
func (h *CheckoutHandler) Return() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		sessionID, ok := requireSession(w, r, logger)
		if !ok {
			return
		}

		providerSessionID := r.URL.Query().Get("session_id")
		if providerSessionID == "" {
			response.Error(w, errors.ValidationError("session_id is required"))
			return
		}

		result, err := h.finalizationService.Finalize(r.Context(), sessionID, providerSessionID)
		if err != nil {
			logger.Warn("Checkout finalization failed",
				slog.String("providerSessionID", providerSessionID),
				slog.Any("error", err),
			)

			if result != nil {
				response.ErrorWithData(w, err, result)
				return
			}

			response.Error(w, err)
			return
		}

		logger.Info("Checkout finalized", slog.String("orderID", result.OrderID))
		response.Success(w, http.StatusOK, result)
	}
}
