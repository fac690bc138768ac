package httptransport

import (
	"net/http"

	"github.com/iliamunaev/virtual-cafe/internal/apperr"
)

// ErrorPayload is the body of every non-2xx JSON response.
type ErrorPayload struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type errorResponse struct {
	Status string       `json:"status"`
	Error  ErrorPayload `json:"error"`
}

// writeError classifies err and writes it with the matching status code.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, apperr.HTTPStatus(err), errorResponse{
		Status: "error",
		Error:  ErrorPayload{Kind: apperr.Kind(err), Message: err.Error()},
	})
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{
		Status: "error",
		Error:  ErrorPayload{Kind: "bad_request", Message: msg},
	})
}
