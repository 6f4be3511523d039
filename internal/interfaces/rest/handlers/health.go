package handlers

import (
	"net/http"

	"github.com/pixbridge/inter-gateway/internal/interfaces/rest"
)

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	rest.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "inter-gateway",
	})
}
