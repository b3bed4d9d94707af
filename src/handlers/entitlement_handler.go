package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/triggerNode/BuxTax/src/logger"
	"github.com/triggerNode/BuxTax/src/security"
	"github.com/triggerNode/BuxTax/src/services"
	"github.com/triggerNode/BuxTax/src/utils"
)

const maxWebhookBodyBytes = 1 << 20

type EntitlementHandler struct {
	entitlementService services.EntitlementService
	webhookSecret      string
}

func NewEntitlementHandler(service services.EntitlementService, webhookSecret string) *EntitlementHandler {
	return &EntitlementHandler{
		entitlementService: service,
		webhookSecret:      webhookSecret,
	}
}

type entitlementResponse struct {
	Active        bool   `json:"active"`
	Plan          string `json:"plan"`
	PaymentStatus string `json:"payment_status"`
}

func (h *EntitlementHandler) HandleGetEntitlement(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	e, err := h.entitlementService.GetEntitlement(userID)
	if err != nil {
		logger.L.Error("Error retrieving entitlement", "userID", userID, "error", err)
		utils.SendJSONError(w, "Could not load subscription status", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, entitlementResponse{Active: e.IsActive(), Plan: e.Plan, PaymentStatus: e.PaymentStatus}, http.StatusOK)
}

// HandleStripeWebhook verifies the Stripe-Signature header before applying the event.
func (h *EntitlementHandler) HandleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes))
	if err != nil {
		utils.SendJSONError(w, "Could not read request body", http.StatusBadRequest)
		return
	}

	event, err := security.ConstructStripeEvent(payload, r.Header.Get("Stripe-Signature"), h.webhookSecret,
		security.DefaultSignatureTolerance)
	if err != nil {
		if errors.Is(err, security.ErrAuthNotConfigured) {
			logger.L.Error("Stripe webhook received but STRIPE_WEBHOOK_SECRET is not set")
			utils.SendJSONError(w, "Webhook not configured", http.StatusInternalServerError)
			return
		}
		logger.L.Warn("Webhook event rejected", "error", err)
		utils.SendJSONError(w, "Invalid signature", http.StatusBadRequest)
		return
	}

	if err := h.entitlementService.ApplyStripeEvent(event); err != nil {
		logger.L.Error("Webhook event could not be applied", "eventID", event.ID, "error", err)
		utils.SendJSONError(w, "Webhook error", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, map[string]bool{"received": true}, http.StatusOK)
}
