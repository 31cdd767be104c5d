package response

import (
	"net/http"

	"rekaloka/internal/services"
)

// WriteBadRequest writes a 400 validation response
func (b *Builder) WriteBadRequest(w http.ResponseWriter, r *http.Request, message string) {
	b.WriteError(w, r, services.NewValidationError(message, nil))
}

// WriteUnauthorized writes a 401 response
func (b *Builder) WriteUnauthorized(w http.ResponseWriter, r *http.Request, message string) {
	if message == "" {
		message = "Authentication required"
	}
	w.Header().Set("WWW-Authenticate", `Bearer realm="rekaloka"`)
	b.WriteError(w, r, services.NewUnauthorizedError(message))
}

// WriteForbidden writes a 403 response
func (b *Builder) WriteForbidden(w http.ResponseWriter, r *http.Request, message string) {
	if message == "" {
		message = "Access denied"
	}
	b.WriteError(w, r, services.NewForbiddenError(message))
}

// WriteNotFound writes a 404 response
func (b *Builder) WriteNotFound(w http.ResponseWriter, r *http.Request, message string) {
	if message == "" {
		message = "Resource not found"
	}
	b.WriteError(w, r, services.NewNotFoundError(message))
}

// WriteMethodNotAllowed writes a 405 response
func (b *Builder) WriteMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	err := &services.ServiceError{
		Type:       "METHOD_NOT_ALLOWED",
		Message:    "Method not allowed",
		StatusCode: http.StatusMethodNotAllowed,
	}
	b.WriteError(w, r, err)
}

// WriteHealthCheck writes the dependency report, 503 when unhealthy
func (b *Builder) WriteHealthCheck(w http.ResponseWriter, r *http.Request, health *services.ServiceHealth) {
	statusCode := http.StatusOK
	if health.Status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	resp := b.Success(r.Context(), health)
	resp.Success = statusCode == http.StatusOK
	b.WriteJSON(w, r, resp, statusCode)
}
