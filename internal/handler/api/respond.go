package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/shopflow/shopflow/internal/domain"
	"github.com/shopflow/shopflow/internal/middleware"
)

// maxRequestBody caps JSON request bodies. Checkout payloads with two
// addresses stay well under this.
const maxRequestBody = 1 << 16 // 64 KiB

var validate = validator.New()

// respondJSON writes v as a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// ErrorResponse writes a structured JSON error response based on the
// domain error code. Internal error details are logged but never sent
// to the client.
func ErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	code := domain.ErrorCode(err)
	message := domain.ErrorMessage(err)
	status := ErrorCodeToHTTPStatus(code)

	logger := middleware.GetLogger(r.Context())
	if status >= 500 {
		logger.Error("request failed", slog.String("error", err.Error()), slog.String("code", code))
	} else {
		logger.Info("request rejected", slog.String("error", err.Error()), slog.String("code", code))
	}

	respondJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

// ErrorCodeToHTTPStatus maps domain error codes to HTTP status codes.
func ErrorCodeToHTTPStatus(code string) int {
	switch code {
	case domain.EINVALID:
		return http.StatusBadRequest
	case domain.EUNAUTHORIZED:
		return http.StatusUnauthorized
	case domain.EFORBIDDEN:
		return http.StatusForbidden
	case domain.ENOTFOUND:
		return http.StatusNotFound
	case domain.ECONFLICT:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON parses and validates a JSON request body into dst.
// Unknown fields are rejected so client typos surface as 400s instead
// of silently dropped fields.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return domain.Invalid("", "Invalid request body")
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return domain.Invalid("", "Invalid value for field "+verrs[0].Field())
		}
		return domain.Invalid("", "Invalid request body")
	}

	return nil
}

// userID extracts the authenticated user from the request context.
// Routes behind RequireUser always have one; the fallback error covers
// misconfigured route wiring.
func userID(r *http.Request) (int64, error) {
	id, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		return 0, domain.Unauthorized("", "Authentication required")
	}
	return id, nil
}

// pathID parses a numeric path value like {id}.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Invalid("", "Invalid "+name)
	}
	return id, nil
}
