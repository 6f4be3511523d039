package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pixbridge/inter-gateway/internal/application"
	"github.com/pixbridge/inter-gateway/internal/application/services"
	"github.com/pixbridge/inter-gateway/internal/interfaces/rest"
)

type setConfigRequest struct {
	Environment  string `json:"environment"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	Certificate  string `json:"certificate"`
	PrivateKey   string `json:"private_key"`
	Account      string `json:"account"`
	PixKey       string `json:"pix_key"`
	MerchantName string `json:"merchant_name"`
	MerchantCity string `json:"merchant_city"`
}

func (h *Handlers) SetConfig(w http.ResponseWriter, r *http.Request) {
	var req setConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.WriteError(w, application.NewValidationError(errors.New("invalid JSON body")), h.logger)
		return
	}

	err := h.configService.SetCredentials(r.Context(), services.SetCredentialsRequest{
		Environment:  req.Environment,
		ClientID:     req.ClientID,
		ClientSecret: req.ClientSecret,
		Certificate:  []byte(req.Certificate),
		PrivateKey:   []byte(req.PrivateKey),
		Account:      req.Account,
		PixKey:       req.PixKey,
		MerchantName: req.MerchantName,
		MerchantCity: req.MerchantCity,
	})
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteData(w, http.StatusOK, map[string]string{"message": "configuration saved"})
}

func (h *Handlers) GetConfig(w http.ResponseWriter, r *http.Request) {
	masked, err := h.configService.GetCredentials(r.Context())
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteData(w, http.StatusOK, masked)
}
