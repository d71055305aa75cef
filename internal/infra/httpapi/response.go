package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"teacher_registry/internal/domain/teacher"

	"github.com/sirupsen/logrus"
)

// Error codes carried in ErrorResponse.Code.
const (
	CodeValidation     = "validation_failed"
	CodeDuplicateEmail = "duplicate_email"
	CodeNotFound       = "not_found"
	CodeInvalidJSON    = "invalid_json"
	CodeInternal       = "internal_error"
)

// ErrorResponse is the standard error envelope for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// MessageResponse is returned by operations without a resource body.
type MessageResponse struct {
	Message string `json:"message"`
}

// writeJSON writes data with the given status code. Encoding failures are
// logged; the header is already sent by then.
func writeJSON(w http.ResponseWriter, status int, data any, log *logrus.Entry) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.WithError(err).Error("JSON encode error")
	}
}

// writeError maps a domain or decoding error onto a status and envelope.
func writeError(w http.ResponseWriter, err error, log *logrus.Entry) {
	var verr *teacher.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "request validation failed",
			Code:    CodeValidation,
			Details: verr.Fields,
		}, log)
	case errors.Is(err, teacher.ErrDuplicateEmail):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: CodeDuplicateEmail}, log)
	case errors.Is(err, teacher.ErrNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "Teacher not found", Code: CodeNotFound}, log)
	case errors.Is(err, errInvalidJSON):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: CodeInvalidJSON}, log)
	default:
		// Never leak internals to the client.
		log.WithError(err).Error("Internal error")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal server error", Code: CodeInternal}, log)
	}
}

var errInvalidJSON = errors.New("invalid JSON")

// decodeJSON reads a single JSON object from the request body into dst.
// Type mismatches on known fields become validation errors; anything else
// unparsable is errInvalidJSON.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return teacher.NewFieldError(typeErr.Field, "type", fmt.Sprintf("value must be of type %s", typeErr.Type.String()))
		}
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is empty", errInvalidJSON)
		}
		return fmt.Errorf("%w: %s", errInvalidJSON, err.Error())
	}
	if dec.More() {
		return fmt.Errorf("%w: body must contain a single JSON object", errInvalidJSON)
	}
	return nil
}

// parseBoolQuery accepts the usual spellings of a boolean query parameter.
func parseBoolQuery(raw string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes", "on", "t", "y":
		return true, true
	case "false", "0", "no", "off", "f", "n":
		return false, true
	}
	return false, false
}
