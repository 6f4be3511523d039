// Package rest carries the response envelope and error mapping shared by all
// HTTP handlers.
package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/pixbridge/inter-gateway/internal/application"
)

type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// WriteError maps application errors to HTTP responses. Anything that is not
// a ServiceError is treated as internal and its detail kept out of the body.
func WriteError(w http.ResponseWriter, err error, logger *slog.Logger) {
	svcErr, ok := application.IsServiceError(err)
	if !ok {
		logger.Error("unmapped error reached handler", "error", err)
		svcErr = application.NewInternalError(err)
	}
	if svcErr.Code == application.ErrCodeInternal {
		logger.Error("request failed", "error", err)
	}

	// validation detail is user-correctable and safe to echo
	message := svcErr.Message
	if svcErr.Code == application.ErrCodeValidation && svcErr.Err != nil {
		message = svcErr.Message + ": " + svcErr.Err.Error()
	}

	WriteJSON(w, svcErr.HTTPStatus, ErrorResponse{
		Success: false,
		Error: ErrorDetail{
			Code:    svcErr.Code,
			Message: message,
		},
	})
}

func WriteData(w http.ResponseWriter, status int, data any) {
	WriteJSON(w, status, SuccessResponse{Success: true, Data: data})
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
