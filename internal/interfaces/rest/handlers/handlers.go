// Package handlers registers the gateway's HTTP surface on a ServeMux.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/pixbridge/inter-gateway/internal/application/services"
)

type Handlers struct {
	chargeService  *services.ChargeService
	configService  *services.ConfigService
	webhookService *services.WebhookService
	logger         *slog.Logger
}

func NewHandlers(
	chargeService *services.ChargeService,
	configService *services.ConfigService,
	webhookService *services.WebhookService,
	logger *slog.Logger,
) *Handlers {
	return &Handlers{
		chargeService:  chargeService,
		configService:  configService,
		webhookService: webhookService,
		logger:         logger,
	}
}

func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/config/inter", h.SetConfig)
	mux.HandleFunc("GET /api/config/inter", h.GetConfig)
	mux.HandleFunc("POST /api/pix/charge", h.CreateCharge)
	mux.HandleFunc("GET /api/pix/charge/{txid}", h.GetCharge)
	mux.HandleFunc("GET /api/pix/charges", h.ListCharges)
	mux.HandleFunc("POST /api/pix/webhook", h.Webhook)
	mux.HandleFunc("POST /api/odoo/order", h.CreateOrderCharge)
	mux.HandleFunc("GET /api/odoo/payment/{order_id}", h.GetOrderPayment)
	mux.HandleFunc("GET /api/health", h.Health)
}
