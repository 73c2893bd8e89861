package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// requestLogger logs one line per request. Server errors log at error level,
// client errors at warn.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				level := zapcore.InfoLevel
				switch {
				case status >= http.StatusInternalServerError:
					level = zapcore.ErrorLevel
				case status >= http.StatusBadRequest:
					level = zapcore.WarnLevel
				}
				if ce := logger.Check(level, "http request"); ce != nil {
					ce.Write(
						zap.String("method", r.Method),
						zap.String("path", r.URL.Path),
						zap.Int("status", status),
						zap.Int("bytes", ww.BytesWritten()),
						zap.Duration("duration", time.Since(start)),
						zap.String("request_id", middleware.GetReqID(r.Context())),
					)
				}
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
