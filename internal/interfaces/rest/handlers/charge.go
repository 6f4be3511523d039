package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/pixbridge/inter-gateway/internal/application"
	"github.com/pixbridge/inter-gateway/internal/application/services"
	"github.com/pixbridge/inter-gateway/internal/interfaces/rest"
)

type createChargeRequest struct {
	Amount      string `json:"amount"`
	Description string `json:"description"`
	PayerName   string `json:"payer_name"`
	PayerCPF    string `json:"payer_cpf"`
	PayerEmail  string `json:"payer_email"`
	ExpireHours int    `json:"expire_hours"`
}

func (h *Handlers) CreateCharge(w http.ResponseWriter, r *http.Request) {
	var req createChargeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.WriteError(w, application.NewValidationError(errors.New("invalid JSON body")), h.logger)
		return
	}

	result, err := h.chargeService.CreateCharge(r.Context(), services.CreateChargeRequest{
		Amount:      req.Amount,
		Description: req.Description,
		PayerName:   req.PayerName,
		PayerCPF:    req.PayerCPF,
		PayerEmail:  req.PayerEmail,
		ExpireHours: req.ExpireHours,
	})
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteData(w, http.StatusCreated, rest.ToChargeView(result.Charge, result.QRCodeBase64))
}

func (h *Handlers) GetCharge(w http.ResponseWriter, r *http.Request) {
	charge, err := h.chargeService.GetCharge(r.Context(), r.PathValue("txid"))
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteData(w, http.StatusOK, rest.ToChargeView(charge, ""))
}

func (h *Handlers) ListCharges(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	charges, err := h.chargeService.ListCharges(r.Context(), limit, offset)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteData(w, http.StatusOK, rest.ToChargeViews(charges))
}
