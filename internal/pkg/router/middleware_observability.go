package router

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/julienschmidt/httprouter"
	"github.com/mehran-jafari/account/internal/pkg/config"
	"github.com/mehran-jafari/account/internal/pkg/instrument"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// Request and response bodies are captured for logging up to this many bytes.
const maxLoggedBodyBytes = 32 * 1024

const maskedValue = "***"

// middlewareObservability wraps every request in a server span, records
// request count and latency metrics, and logs the request and response with
// sensitive fields masked.
func middlewareObservability(cfg config.Config, ins instrument.Instrumentation) Middleware {
	masked := maskedFields(cfg)
	tracer := ins.Tracer("http.server")
	meter := ins.Meter("http.server")

	reqCounter, err := meter.Int64Counter("http.server.requests", metric.WithDescription("Number of HTTP requests received"))
	if err != nil {
		slog.Error("failed to create http request counter", "error", err)
	}

	latencyHist, err := meter.Float64Histogram("http.server.duration", metric.WithDescription("HTTP request duration in milliseconds"))
	if err != nil {
		slog.Error("failed to create http duration histogram", "error", err)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := matchedRoutePath(r)
			start := time.Now()

			ctx, span := tracer.Start(
				r.Context(),
				r.Method+" "+route,
				trace.WithAttributes(
					semconv.HTTPRequestMethodKey.String(r.Method),
					semconv.HTTPRouteKey.String(route),
				),
			)
			defer span.End()

			logInbound(ctx, r, route, captureRequestBody(r), masked)

			rec := &responseRecorder{ResponseWriter: w, body: &bytes.Buffer{}}
			next.ServeHTTP(rec, r.WithContext(ctx))

			status := rec.statusOrOK()
			elapsed := time.Since(start)

			attrs := []attribute.KeyValue{
				semconv.HTTPRequestMethodKey.String(r.Method),
				semconv.HTTPRouteKey.String(route),
				semconv.HTTPResponseStatusCodeKey.Int(status),
			}

			if rec.err != nil {
				span.RecordError(rec.err)
			}
			finishSpan(span, status, rec.err)

			span.SetAttributes(attrs...)
			if reqCounter != nil {
				reqCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
			}
			if latencyHist != nil {
				latencyHist.Record(ctx, float64(elapsed.Milliseconds()), metric.WithAttributes(attrs...))
			}

			span.SetAttributes(
				semconv.NetworkProtocolVersionKey.String(r.Proto),
				semconv.ServerAddressKey.String(r.Host),
				attribute.String("http.target", r.URL.Path),
				attribute.String("http.user_agent", r.UserAgent()),
				attribute.Int("http.response_content_length", rec.bytes),
			)

			slog.InfoContext(
				ctx,
				"response sent",
				"method", r.Method,
				"path", route,
				"uri", r.RequestURI,
				"status", status,
				"bytes", rec.bytes,
				"latency_ms", elapsed.Milliseconds(),
				"body", rec.loggableBody(masked),
			)
		})
	}
}

func finishSpan(span trace.Span, status int, handlerErr error) {
	if status < 500 {
		span.SetStatus(codes.Ok, "")
		return
	}
	if handlerErr != nil {
		span.SetStatus(codes.Error, handlerErr.Error())
		return
	}
	span.SetStatus(codes.Error, http.StatusText(status))
}

// responseRecorder captures the status, byte count, and a bounded copy of
// the response body while delegating to the wrapped writer.
type responseRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
	body   *bytes.Buffer
	capped bool
	err    error
}

func (w *responseRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseRecorder) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}

	w.capture(p)

	n, err := w.ResponseWriter.Write(p)
	w.bytes += n
	return n, err
}

func (w *responseRecorder) capture(p []byte) {
	if w.body == nil || w.capped || len(p) == 0 {
		return
	}

	remaining := maxLoggedBodyBytes - w.body.Len()
	if remaining <= 0 {
		w.capped = true
		return
	}
	if len(p) > remaining {
		w.body.Write(p[:remaining])
		w.capped = true
		return
	}
	w.body.Write(p)
}

// SetError lets the router attach the handler error so the span records it.
func (w *responseRecorder) SetError(err error) {
	w.err = err
}

func (w *responseRecorder) statusOrOK() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// loggableBody renders the captured body for the response log, masking
// sensitive fields when the payload is JSON.
func (w *responseRecorder) loggableBody(masked map[string]struct{}) any {
	if w.body == nil {
		return nil
	}

	var out any
	var decoded any
	switch {
	case json.Unmarshal(w.body.Bytes(), &decoded) == nil:
		out = maskData(decoded, masked)
	case utf8.Valid(w.body.Bytes()):
		out = w.body.String()
	case w.body.Len() > 0:
		out = "<binary body omitted>"
	}

	if w.capped {
		out = map[string]any{"body": out, "truncated": true}
	}
	return out
}

func (w *responseRecorder) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

//nolint:err113 // it use dynamic error
func (w *responseRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hijack not supported")
	}
	return h.Hijack()
}

func (w *responseRecorder) Push(target string, opts *http.PushOptions) error {
	if p, ok := w.ResponseWriter.(http.Pusher); ok {
		return p.Push(target, opts)
	}
	return http.ErrNotSupported
}

// matchedRoutePath returns the registered route pattern for the request, or
// the raw path when the router has no match.
func matchedRoutePath(r *http.Request) string {
	if pattern := httprouter.ParamsFromContext(r.Context()).MatchedRoutePath(); pattern != "" {
		return pattern
	}
	return r.URL.Path
}

// maskedFields builds the lowercase set of field and header names to redact,
// from instrument.log_mask_fields.
func maskedFields(cfg config.Config) map[string]struct{} {
	fields := make(map[string]struct{})
	if cfg == nil {
		return fields
	}
	for _, field := range cfg.GetArray("instrument.log_mask_fields") {
		if field = strings.TrimSpace(strings.ToLower(field)); field != "" {
			fields[field] = struct{}{}
		}
	}
	return fields
}

func maskHeaders(headers http.Header, masked map[string]struct{}) http.Header {
	if len(masked) == 0 {
		return headers
	}

	result := headers.Clone()
	for key := range result {
		if _, found := masked[strings.ToLower(key)]; found {
			result.Set(key, maskedValue)
		}
	}
	return result
}

// maskData walks decoded JSON and replaces values of masked keys at any
// nesting depth.
func maskData(v any, masked map[string]struct{}) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			if _, found := masked[strings.ToLower(k)]; found {
				out[k] = maskedValue
			} else {
				out[k] = maskData(inner, masked)
			}
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = maskData(inner, masked)
		}
		return out
	default:
		return v
	}
}

// captureRequestBody reads up to the logging cap from the request body and
// splices the bytes back so the handler still sees the full stream.
func captureRequestBody(r *http.Request) []byte {
	if r.Body == nil {
		return nil
	}

	limited := io.LimitReader(r.Body, maxLoggedBodyBytes+1)
	//nolint:errcheck // best effort for logging only
	buf, _ := io.ReadAll(limited)
	r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(buf), r.Body))
	if len(buf) > maxLoggedBodyBytes {
		return buf[:maxLoggedBodyBytes]
	}
	return buf
}

func logInbound(ctx context.Context, r *http.Request, route string, body []byte, masked map[string]struct{}) {
	slog.InfoContext(
		ctx,
		"request received",
		"method", r.Method,
		"path", route,
		"uri", r.RequestURI,
		"headers", maskHeaders(r.Header, masked),
		"body", renderBody(r.Header.Get("Content-Type"), body, masked),
	)
}

// renderBody decodes the captured request body for logging. JSON is masked
// field by field, form bodies key by key; anything else is logged as text
// when printable.
func renderBody(contentType string, body []byte, masked map[string]struct{}) any {
	if len(body) == 0 {
		return nil
	}

	var decoded any
	if err := json.Unmarshal(body, &decoded); err == nil {
		return maskData(decoded, masked)
	}

	if strings.HasPrefix(strings.ToLower(contentType), "application/x-www-form-urlencoded") {
		if values, err := url.ParseQuery(string(body)); err == nil {
			out := make(map[string]any, len(values))
			for k, v := range values {
				switch {
				case fieldMasked(masked, k):
					out[k] = maskedValue
				case len(v) == 1:
					out[k] = v[0]
				default:
					out[k] = v
				}
			}
			return out
		}
	}

	if !utf8.Valid(body) {
		return "<binary body omitted>"
	}
	if len(body) > maxLoggedBodyBytes {
		return string(body[:maxLoggedBodyBytes]) + "...(truncated)"
	}
	return string(body)
}

func fieldMasked(masked map[string]struct{}, key string) bool {
	_, found := masked[strings.ToLower(key)]
	return found
}
