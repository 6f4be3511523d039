package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pixbridge/inter-gateway/internal/application"
	"github.com/pixbridge/inter-gateway/internal/application/services"
	"github.com/pixbridge/inter-gateway/internal/interfaces/rest"
)

type orderChargeRequest struct {
	OrderID      string `json:"order_id"`
	Amount       string `json:"amount"`
	Description  string `json:"description"`
	CustomerName string `json:"customer_name"`
	WebhookURL   string `json:"webhook_url"`
}

// CreateOrderCharge creates a charge linked to an external order reference.
// Repeated calls for the same open order return the existing charge.
func (h *Handlers) CreateOrderCharge(w http.ResponseWriter, r *http.Request) {
	var req orderChargeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.WriteError(w, application.NewValidationError(errors.New("invalid JSON body")), h.logger)
		return
	}
	if req.OrderID == "" {
		rest.WriteError(w, application.NewValidationError(errors.New("order_id is required")), h.logger)
		return
	}

	description := req.Description
	if description == "" {
		description = "Pedido " + req.OrderID
	}

	result, err := h.chargeService.CreateCharge(r.Context(), services.CreateChargeRequest{
		Amount:      req.Amount,
		Description: description,
		PayerName:   req.CustomerName,
		OdooOrderID: req.OrderID,
		WebhookURL:  req.WebhookURL,
	})
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteData(w, http.StatusCreated, rest.ToChargeView(result.Charge, result.QRCodeBase64))
}

// GetOrderPayment reads the payment status for an order-linked charge.
func (h *Handlers) GetOrderPayment(w http.ResponseWriter, r *http.Request) {
	charge, err := h.chargeService.PaymentByOrderID(r.Context(), r.PathValue("order_id"))
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteData(w, http.StatusOK, rest.ToChargeView(charge, ""))
}
