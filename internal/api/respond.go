package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/MikeSquared-Agency/Ftopsis/internal/fuzzy"
	"github.com/MikeSquared-Agency/Ftopsis/internal/input"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// readBody reads at most limit bytes of the request body. A non-positive limit reads it all.
func readBody(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, error) {
	body := r.Body
	if limit > 0 {
		body = http.MaxBytesReader(w, r.Body, limit)
	}
	defer body.Close()
	return io.ReadAll(body)
}

// evalStatus maps an evaluation error to an HTTP status and client-facing message.
func evalStatus(err error) (int, string) {
	var syntax *json.SyntaxError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit)
	case errors.As(err, &syntax):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, fuzzy.ErrDivision):
		return http.StatusUnprocessableEntity, "degenerate dataset: " + err.Error()
	case errors.Is(err, input.ErrVariantDetection),
		errors.Is(err, fuzzy.ErrMalformedInput),
		errors.Is(err, fuzzy.ErrTypeMismatch):
		return http.StatusUnprocessableEntity, err.Error()
	}
	return http.StatusInternalServerError, err.Error()
}
