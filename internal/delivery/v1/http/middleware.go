package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/DRSN-tech/storefront/internal/auth"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// bearerToken переносит токен из заголовка Authorization в контекст запроса.
// Отсутствующий или некорректный заголовок оставляет запрос анонимным.
func bearerToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token, ok := auth.ParseBearer(r.Header.Get("Authorization")); ok {
			r = r.WithContext(auth.WithToken(r.Context(), token))
		}
		next.ServeHTTP(w, r)
	})
}

// Metrics - счётчик запросов и гистограмма задержек по шаблону маршрута chi.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"method", "route", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "storefront",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(m.requests, m.duration)
	return m
}

func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := routePattern(r)
		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(statusOf(ww))).Inc()
		m.duration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// accessLog пишет строку журнала на каждый запрос. Ответы 5xx пишутся как предупреждения.
func accessLog(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := statusOf(ww)
			if status >= http.StatusInternalServerError {
				log.Warnf("%s %s %d %s request_id=%s", r.Method, r.URL.Path, status, time.Since(start), middleware.GetReqID(r.Context()))
				return
			}
			log.Debugf("%s %s %d %s request_id=%s", r.Method, r.URL.Path, status, time.Since(start), middleware.GetReqID(r.Context()))
		})
	}
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}

	return "unmatched"
}

// statusOf возвращает код ответа. Обработчик, не вызвавший WriteHeader, ответил 200.
func statusOf(ww middleware.WrapResponseWriter) int {
	if status := ww.Status(); status != 0 {
		return status
	}

	return http.StatusOK
}
