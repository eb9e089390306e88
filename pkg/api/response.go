package api

import (
	"encoding/json"
	"net/http"

	"github.com/matzehuels/craftgraph/pkg/errors"
)

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorResponse is the standard error envelope.
type errorResponse struct {
	Error      string `json:"error"`
	Code       string `json:"code,omitempty"`
	RolledBack bool   `json:"rolled_back,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResponse{
		Error:      errors.UserMessage(err),
		Code:       string(errors.GetCode(err)),
		RolledBack: errors.IsFatal(err),
	})
}

// statusFor maps an edit error code to an HTTP status.
func statusFor(err error) int {
	if errors.IsFatal(err) {
		return http.StatusInternalServerError
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeNodeNotFound, errors.ErrCodeNotFound, errors.ErrCodeRecipeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidName:
		return http.StatusBadRequest
	case errors.ErrCodeNoRecipes, errors.ErrCodeMultipleRecipes, errors.ErrCodeNoMachines,
		errors.ErrCodeIncompatibleNodeItems, errors.ErrCodeIncompatibleNodeTypes,
		errors.ErrCodeMergeCycle, errors.ErrCodeNoEdge:
		return http.StatusConflict
	case errors.ErrCodeUnsupportedNode, errors.ErrCodeUnsupported:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
