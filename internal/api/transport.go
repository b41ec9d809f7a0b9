package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// loggingTransport logs every outbound request and tags it with a
// correlation id. The backend is free to ignore the header.
type loggingTransport struct {
	base http.RoundTripper
	log  *slog.Logger
}

func newLoggingTransport(base http.RoundTripper, log *slog.Logger) *loggingTransport {
	return &loggingTransport{
		base: base,
		log:  log,
	}
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	requestID := uuid.New().String()
	req.Header.Set("X-Request-Id", requestID)

	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		t.log.Error("http request failed",
			"method", req.Method,
			"path", req.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", requestID,
			"error", err,
		)
		return nil, err
	}

	t.log.Info("http request",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
		"request_id", requestID,
	)

	return resp, nil
}
