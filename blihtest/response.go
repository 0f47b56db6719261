package blihtest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/vitalvas/blih/envelope"
)

// writeJSON encodes v as JSON and writes it with the given status code.
// If encoding fails, an HTTP 500 Internal Server Error is written instead.
func writeJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(buf.Bytes())
}

func writeMessage(w http.ResponseWriter, format string, args ...any) {
	writeJSON(w, http.StatusOK, map[string]any{"message": fmt.Sprintf(format, args...)})
}

func writeError(w http.ResponseWriter, code int, format string, args ...any) {
	writeJSON(w, code, map[string]any{"error": fmt.Sprintf(format, args...)})
}

// bindData decodes the verified envelope's data into v. Missing data
// leaves v untouched.
func bindData(r *http.Request, v any) error {
	env, ok := envelope.FromContext(r.Context())
	if !ok {
		return envelope.ErrMalformedEnvelope
	}

	if !env.HasData() {
		return nil
	}

	raw, err := json.Marshal(env.Data)
	if err != nil {
		return err
	}

	return json.Unmarshal(raw, v)
}

// requester returns the verified user of the request.
func requester(r *http.Request) string {
	env, ok := envelope.FromContext(r.Context())
	if !ok {
		return ""
	}

	return env.User
}
