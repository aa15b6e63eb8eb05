package api

import (
	"errors"
	"net/http"

	"medallion-demo/internal/domain"
	"medallion-demo/internal/middleware"
)

// httpStatusFromDomainError maps domain errors to HTTP status codes.
func httpStatusFromDomainError(err error) int {
	var notFound *domain.NotFoundError
	var validation *domain.ValidationError
	var duplicate *domain.DuplicateNameError
	var syntax *domain.QuerySyntaxError
	var execution *domain.QueryExecutionError

	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &validation), errors.As(err, &syntax):
		return http.StatusBadRequest
	case errors.As(err, &duplicate):
		return http.StatusConflict
	case errors.As(err, &execution):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Error is the JSON body of every failed request.
type Error struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Position  *int   `json:"position,omitempty"` // query syntax errors only
	RequestID string `json:"request_id,omitempty"`
}

// writeError renders err with the status its domain type maps to. Messages
// of unexpected errors are not leaked to the client.
func (h *APIHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := httpStatusFromDomainError(err)
	body := Error{Code: status, Message: err.Error(), RequestID: middleware.RequestIDFromContext(r.Context())}

	var syntax *domain.QuerySyntaxError
	var execution *domain.QueryExecutionError
	switch {
	case errors.As(err, &syntax):
		body.Message = syntax.Message
		body.Position = &syntax.Pos
	case errors.As(err, &execution):
		body.Message = execution.Message
	case status == http.StatusInternalServerError:
		h.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		body.Message = "internal error"
	}
	writeJSON(w, status, body)
}
