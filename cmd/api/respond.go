package main

import (
	"encoding/json"
	"net/http"

	"github.com/olehvasyliv/cooking-corner/internal/apperr"
)

func (a *api) respondJSON(w http.ResponseWriter, code int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		a.logger.Error().Err(err).Msg("failed to marshal response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(body)
}

func (a *api) respondError(w http.ResponseWriter, code int, msg string) {
	a.respondJSON(w, code, map[string]string{"error": msg})
}

// respondServiceError maps a service error to its HTTP status. Internal
// errors are logged and reported with a generic message so details stay
// out of responses.
func (a *api) respondServiceError(w http.ResponseWriter, err error) {
	code := apperr.HTTPStatus(err)
	if code >= http.StatusInternalServerError {
		a.logger.Error().Err(err).Msg("request failed")
		a.respondError(w, code, "internal server error")
		return
	}
	a.respondError(w, code, err.Error())
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}
