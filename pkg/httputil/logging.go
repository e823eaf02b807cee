package httputil

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/cwrk-planet/chat-service/pkg/logger"
)

const maxLoggedBody = 4 << 10

// поля, значения которых не попадают в лог
var sensitiveFields = map[string]struct{}{
	"password":       {},
	"newpassword":    {},
	"refreshtoken":   {},
	"accesstoken":    {},
	"token":          {},
	"invitationcode": {},
}

// MiddlewareLogging логирует метод, маршрут, статус, длительность и тело JSON-запроса без секретов.
// Уровень зависит от статуса: 5xx - Error, 4xx - Warn, остальное - Info.
func MiddlewareLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		var reqBody string
		if strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "json") && r.Body != nil {
			b, err := io.ReadAll(io.LimitReader(r.Body, maxLoggedBody+1))
			r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(b), r.Body))
			if err == nil {
				reqBody = RedactJSON(b)
			}
		}

		lrw := &logResponseWriter{ResponseWriter: w}
		next.ServeHTTP(lrw, r)

		status := lrw.status
		if status == 0 {
			status = http.StatusOK
		}
		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}

		attrs := []slog.Attr{
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.Int("bytes", lrw.bytes),
			slog.Duration("duration", time.Since(start)),
			slog.String("remote", r.RemoteAddr),
		}
		if reqBody != "" {
			attrs = append(attrs, slog.String("req_body", reqBody))
		}
		attrs = append(attrs, logger.AttrsFromCtx(r.Context())...)

		logger.FromContext(r.Context()).LogAttrs(r.Context(), level, "http request", attrs...)
	})
}

// RedactJSON заменяет значения чувствительных полей на "***".
// Тело, которое не разбирается как JSON-объект, в лог не попадает.
func RedactJSON(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	if len(b) > maxLoggedBody {
		return "<truncated>"
	}

	var obj map[string]any
	if err := json.Unmarshal(b, &obj); err != nil {
		return "<unparsed>"
	}
	redact(obj)

	out, err := json.Marshal(obj)
	if err != nil {
		return "<unparsed>"
	}
	return string(out)
}

func redact(obj map[string]any) {
	for k, v := range obj {
		if _, ok := sensitiveFields[strings.ToLower(strings.ReplaceAll(k, "_", ""))]; ok {
			obj[k] = "***"
			continue
		}
		if nested, ok := v.(map[string]any); ok {
			redact(nested)
		}
	}
}

type logResponseWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *logResponseWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *logResponseWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n

	return n, err
}

func (w *logResponseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack нужен апгрейду до WebSocket
func (w *logResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("httputil: response writer does not support hijacking")
	}
	w.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (w *logResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
