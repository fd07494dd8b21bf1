package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/safeguardian/autopilot/internal/metrics"
	"github.com/safeguardian/autopilot/internal/observability"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// instrument tags every request with an id, logs it and records its latency.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()

		log := s.log.WithValues("request_id", requestID, "method", r.Method, "path", r.URL.Path)
		ctx := observability.IntoContext(r.Context(), log)
		w.Header().Set("X-Request-ID", requestID)

		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r.WithContext(ctx))

		elapsed := time.Since(start)
		routePath := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if template, err := route.GetPathTemplate(); err == nil {
				routePath = template
			}
		}
		metrics.RequestDuration.
			WithLabelValues(r.Method, routePath, strconv.Itoa(recorder.status)).
			Observe(elapsed.Seconds())

		log.Info("request handled", "status", recorder.status, "duration_ms", elapsed.Milliseconds())
	})
}
