package errors

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// Logger is the minimal logging surface this package needs.
type Logger interface {
	Error(msg string, fields map[string]interface{})
}

// HTTPWriter renders errors as wire envelopes on HTTP responses.
type HTTPWriter struct {
	logger Logger
}

func NewHTTPWriter(logger Logger) *HTTPWriter {
	return &HTTPWriter{logger: logger}
}

// WriteError encodes err as an envelope and writes it. A Retry-After header
// accompanies 429 responses, mirroring the payload's retryAfter value.
func (w *HTTPWriter) WriteError(rw http.ResponseWriter, err error) {
	env := EncodeError(err)
	w.WriteEnvelope(rw, env)
}

// WriteEnvelope writes a prebuilt envelope.
func (w *HTTPWriter) WriteEnvelope(rw http.ResponseWriter, env Envelope) {
	rw.Header().Set("Content-Type", "application/json")
	if env.Status == 429 && env.Payload.RetryAfter > 0 {
		rw.Header().Set("Retry-After", strconv.Itoa(env.Payload.RetryAfter))
	}
	rw.WriteHeader(env.Status)

	if err := json.NewEncoder(rw).Encode(env.Payload); err != nil && w.logger != nil {
		w.logger.Error("failed to write error envelope", map[string]interface{}{
			"status":    env.Status,
			"errorCode": string(env.Payload.Code),
			"error":     err.Error(),
		})
	}
}
