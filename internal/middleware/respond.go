package middleware

import (
	"encoding/json"
	"net/http"

	"community-api/internal/model"
	"community-api/pkg/apierror"
)

func writeError(w http.ResponseWriter, err *apierror.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.HTTPStatus())
	_ = json.NewEncoder(w).Encode(model.ErrorResponse{
		Code:    err.Code,
		Status:  err.HTTPStatus(),
		Message: err.Message,
	})
}
