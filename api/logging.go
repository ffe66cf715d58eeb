package api

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"text2phenotype.com/negex/logger"
)

var defaultLogger = logger.NewLogger("Negex API")

type endpointLoggerFields struct {
	Method        string `json:"method"`
	Url           string `json:"url"`
	RemoteAddr    string `json:"remote_addr"`
	ContentLength int64  `json:"content_length"`
}

const RequestInfoFieldsKey = "request_info"

func makeRequestLogger(request *http.Request) zerolog.Logger {
	fields := endpointLoggerFields{
		Method:        request.Method,
		Url:           request.URL.String(),
		RemoteAddr:    request.RemoteAddr,
		ContentLength: request.ContentLength,
	}
	return defaultLogger.
		With().Interface(RequestInfoFieldsKey, fields).Logger()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

// WithAccessLog logs status and duration of every request served by next.
func WithAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger := makeRequestLogger(r)
		logger.Debug().
			Int("status", rec.status).
			Dur("duration", time.Since(started)).
			Msg("Request served")
	})
}
