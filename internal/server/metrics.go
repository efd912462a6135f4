package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/optimode/emailaddr"
)

type metrics struct {
	validations *prometheus.CounterVec
	reqDuration *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		validations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "emailaddr_validations_total",
				Help: "Email addresses validated, by outcome.",
			},
			[]string{"result"},
		),
		reqDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests.",
				Buckets: []float64{0.001, 0.01, 0.1, 0.5, 2},
			},
			[]string{"path", "method", "status"},
		),
	}
	reg.MustRegister(m.validations, m.reqDuration)
	return m
}

func (m *metrics) observe(c emailaddr.Context) {
	result := "invalid"
	if c.Valid {
		result = "valid"
	}
	m.validations.WithLabelValues(result).Inc()
}

// middleware records request duration labelled by chi route pattern,
// so query strings never reach label values.
func (m *metrics) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		path := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		m.reqDuration.WithLabelValues(path, r.Method, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
	})
}
