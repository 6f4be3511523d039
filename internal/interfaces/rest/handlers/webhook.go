package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/pixbridge/inter-gateway/internal/application"
	"github.com/pixbridge/inter-gateway/internal/interfaces/rest"
)

// maxWebhookBody bounds notification reads; bank events are small.
const maxWebhookBody = 1 << 20

// Webhook receives bank notifications. The response carries only a delivery
// acknowledgement, never business detail: 200 tells the bank to stop
// retrying, an error status requests redelivery.
func (h *Handlers) Webhook(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		rest.WriteError(w, application.NewValidationError(errors.New("unreadable body")), h.logger)
		return
	}

	signature := r.Header.Get("X-Webhook-Signature")
	if err := h.webhookService.Handle(r.Context(), raw, signature); err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, map[string]string{"status": "received"})
}
