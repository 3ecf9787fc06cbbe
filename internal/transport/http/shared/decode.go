package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	"okr/internal/transport/http/api"
)

// DecodeJSON reads the request body into dst. It writes the failure response
// itself and reports whether the handler should continue.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any, requestID string) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			api.Fail(w, http.StatusRequestEntityTooLarge, api.CodePayloadTooLarge, "request body too large", requestID)
			return false
		}
		api.Fail(w, http.StatusBadRequest, api.CodeInvalidPayload, "invalid request payload", requestID)
		return false
	}
	return true
}
