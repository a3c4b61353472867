package transport

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// maxLoggedBody caps how much of a body is copied into debug logs.
const maxLoggedBody = 2048

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

type loggingRoundTripper struct {
	next      http.RoundTripper
	logger    *slog.Logger
	metrics   *Metrics
	userAgent string
}

func (l *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	id := uuid.NewString()

	req = req.Clone(ctx)
	req.Header.Set(RequestIDHeader, id)
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", l.userAgent)
	}

	debug := l.logger.Enabled(ctx, slog.LevelDebug)
	if debug {
		l.logger.DebugContext(ctx, "http request",
			"request_id", id,
			"method", req.Method,
			"url", req.URL.String(),
			"body", requestBody(req),
		)
	}

	start := time.Now()
	resp, err := l.next.RoundTrip(req)
	elapsed := time.Since(start)

	if err != nil {
		l.metrics.observe(req.Method, 0, elapsed)
		l.logger.WarnContext(ctx, "http request failed",
			"request_id", id,
			"method", req.Method,
			"url", req.URL.String(),
			"duration_ms", elapsed.Milliseconds(),
			"error", err,
		)
		return nil, err
	}
	l.metrics.observe(req.Method, resp.StatusCode, elapsed)

	attrs := []any{
		"request_id", id,
		"method", req.Method,
		"url", req.URL.String(),
		"status", resp.StatusCode,
		"duration_ms", elapsed.Milliseconds(),
	}
	if debug {
		attrs = append(attrs, "body", peekBody(resp))
	}
	level := slog.LevelInfo
	if resp.StatusCode >= 400 {
		level = slog.LevelWarn
	}
	l.logger.Log(ctx, level, "http response", attrs...)
	return resp, nil
}

func requestBody(req *http.Request) string {
	if req.GetBody == nil {
		return ""
	}
	body, err := req.GetBody()
	if err != nil {
		return ""
	}
	defer func() { _ = body.Close() }()
	buf, _ := io.ReadAll(io.LimitReader(body, maxLoggedBody))
	return string(buf)
}

// peekBody reads the head of the response body and splices it back so the
// caller still sees the full stream.
func peekBody(resp *http.Response) string {
	if resp.Body == nil || resp.Body == http.NoBody {
		return ""
	}
	head, _ := io.ReadAll(io.LimitReader(resp.Body, maxLoggedBody))
	resp.Body = &splicedBody{
		Reader: io.MultiReader(bytes.NewReader(head), resp.Body),
		closer: resp.Body,
	}
	return string(head)
}

type splicedBody struct {
	io.Reader
	closer io.Closer
}

func (s *splicedBody) Close() error { return s.closer.Close() }
