package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"rekaloka/internal/services"
)

// DecodeJSON decodes the request body into dst. Malformed bodies become a
// 400 validation error and oversized bodies a 413.
func DecodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return services.NewValidationError("Request body is required", nil)
	}

	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytesErr):
			return services.NewValidationError("Request body is too large", err).
				WithStatus(http.StatusRequestEntityTooLarge)
		case errors.Is(err, io.EOF):
			return services.NewValidationError("Request body is required", err)
		default:
			return services.NewValidationError("Invalid request body format", err)
		}
	}
	return nil
}

// QueryFloat parses a required float query parameter
func QueryFloat(r *http.Request, name string) (float64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, services.InvalidInputError(name, "is required")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, services.InvalidInputError(name, fmt.Sprintf("%q is not a number", raw))
	}
	return v, nil
}

// QueryInt parses an optional integer query parameter, returning def when absent
func QueryInt(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, services.InvalidInputError(name, fmt.Sprintf("%q is not an integer", raw))
	}
	return v, nil
}
