package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"community-api/internal/middleware"
	"community-api/internal/model"
	"community-api/pkg/apierror"
)

const maxBodyBytes = 1 << 20

// Responder turns handler results into JSON. It is the only place an error
// becomes a status code.
type Responder struct {
	logger        *slog.Logger
	exposeDetails bool
}

// NewResponder builds a Responder. Outside production the cause of an
// unexpected error is echoed in the details field.
func NewResponder(logger *slog.Logger, production bool) *Responder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Responder{logger: logger, exposeDetails: !production}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (rs *Responder) Error(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *apierror.APIError
	if !errors.As(err, &apiErr) {
		apiErr = apierror.Internal("Unexpected server error", err)
	}

	status := apiErr.HTTPStatus()
	body := model.ErrorResponse{
		Code:    apiErr.Code,
		Status:  status,
		Message: apiErr.Message,
		Details: apiErr.Details,
	}

	if status >= http.StatusInternalServerError {
		rs.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"code", apiErr.Code,
			"error", err,
		)
		if apiErr.Kind == apierror.KindInternal {
			body.Message = "Unexpected server error"
			body.Details = ""
		}
		if rs.exposeDetails && apiErr.Err != nil {
			body.Details = apiErr.Err.Error()
		}
	}

	writeJSON(w, status, body)
}

// decodeJSON reads a single JSON object into dst. Unknown fields are ignored.
func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apierror.Validation("request body is required", "")
		}
		return apierror.Validation("invalid JSON body", err.Error())
	}

	return nil
}

func requirePrincipal(r *http.Request) (model.Principal, error) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		return model.Principal{}, apierror.Unauthenticated("Unauthorized.")
	}
	return principal, nil
}

func optionalPrincipal(r *http.Request) *model.Principal {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		return nil
	}
	return &principal
}

// NotFound answers unmatched routes.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, model.ErrorResponse{
		Code:    apierror.KindNotFound.String(),
		Status:  http.StatusNotFound,
		Message: "Route not found, check and try again.",
	})
}

func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, model.ErrorResponse{
		Code:    "METHOD_NOT_ALLOWED",
		Status:  http.StatusMethodNotAllowed,
		Message: r.Method + " is not supported on this route",
	})
}
