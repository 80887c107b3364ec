package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/samber/oops"

	"github.com/finbook-app/finbook/internal/domain/shared"
)

// ErrorBody is the JSON error envelope returned by every endpoint
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the machine-readable code and the human message
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteJSON writes v as a JSON response with the given status
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps an error to its HTTP status and writes the error
// envelope. Validation errors map to 400, not-found to 404, anything
// else (store failures included) to 500.
func WriteError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case shared.IsValidation(err):
		status = http.StatusBadRequest
	case shared.IsNotFound(err):
		status = http.StatusNotFound
	}

	code := "INTERNAL"
	if oopsErr, ok := oops.AsOops(err); ok && oopsErr.Code() != "" {
		code = oopsErr.Code()
	}

	WriteJSON(w, status, ErrorBody{
		Error: ErrorDetail{
			Code:    code,
			Message: err.Error(),
		},
	})
}

// Decode parses the request body as JSON into v
func Decode(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
