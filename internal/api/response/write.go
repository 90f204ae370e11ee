package response

import (
	"encoding/json"
	"net/http"

	"github.com/mcoot/tycoon-backend/internal/api/apierr"
)

// JSON writes a JSON response. Responses may carry tokens or passphrases,
// so they are marked uncacheable. The body is encoded before the status is
// sent, and a value that cannot be encoded becomes an opaque 500.
func JSON(w http.ResponseWriter, status int, data any) {
	var body []byte
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			apierr.WriteError(w, apierr.NewInternalError())
			return
		}
		body = append(b, '\n')
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
