// Package metrics expone las métricas Prometheus del servicio de perfiles.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	mu sync.RWMutex

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpInflight        *prometheus.GaugeVec

	upstreamFetchTotal    *prometheus.CounterVec
	upstreamFetchDuration *prometheus.HistogramVec
	rateLimitRejects      prometheus.Counter
)

// Config agrupa lo necesario para registrar las métricas.
type Config struct {
	// Registry donde registrar; nil = registry nuevo y aislado.
	Registry *prometheus.Registry
}

// Register crea y registra los collectors y devuelve el handler para /metrics.
// Llamarlo de nuevo reemplaza los collectors (útil en tests).
func Register(cfg Config) (http.Handler, error) {
	reg := cfg.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	reqTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Número total de requests procesadas",
	}, []string{"method", "path", "status"})

	reqDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Latencia de los requests HTTP",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	inflight := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "http_inflight_requests",
		Help: "Requests en vuelo por método y ruta",
	}, []string{"method", "path"})

	fetchTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "identity_fetch_total",
		Help: "Llamadas al servicio de identidad por resultado",
	}, []string{"outcome"}) // ok|not_found|unauthorized|forbidden|error

	fetchDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "identity_fetch_duration_seconds",
		Help:    "Latencia de GET /users/{id} contra el servicio de identidad",
		Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"outcome"})

	rejects := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rate_limit_rejects_total",
		Help: "Requests rechazados por el rate limiter",
	})

	for _, c := range []prometheus.Collector{reqTotal, reqDuration, inflight, fetchTotal, fetchDuration, rejects} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	mu.Lock()
	httpRequestsTotal, httpRequestDuration, httpInflight = reqTotal, reqDuration, inflight
	upstreamFetchTotal, upstreamFetchDuration, rateLimitRejects = fetchTotal, fetchDuration, rejects
	mu.Unlock()

	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}), nil
}

// statusRecorder captura el status code de la respuesta.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

// WithMetrics instrumenta requests HTTP (contadores, latencia, inflight).
// Si Register no fue llamado devuelve next sin tocar.
func WithMetrics(next http.Handler) http.Handler {
	mu.RLock()
	total, duration, inflight := httpRequestsTotal, httpRequestDuration, httpInflight
	mu.RUnlock()
	if total == nil || duration == nil || inflight == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method := strings.ToUpper(r.Method)
		pathLabel := normalizePath(r.URL.Path)

		inflight.WithLabelValues(method, pathLabel).Inc()
		start := time.Now()

		rec := &statusRecorder{ResponseWriter: w}
		defer func() {
			inflight.WithLabelValues(method, pathLabel).Dec()
			duration.WithLabelValues(method, pathLabel).Observe(time.Since(start).Seconds())

			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}
			total.WithLabelValues(method, pathLabel, strconv.Itoa(status)).Inc()
		}()

		next.ServeHTTP(rec, r)
	})
}

// RecordUpstreamFetch registra una llamada al servicio de identidad.
func RecordUpstreamFetch(outcome string, d time.Duration) {
	mu.RLock()
	total, duration := upstreamFetchTotal, upstreamFetchDuration
	mu.RUnlock()

	if total != nil {
		total.WithLabelValues(outcome).Inc()
	}
	if duration != nil {
		duration.WithLabelValues(outcome).Observe(d.Seconds())
	}
}

// RecordRateLimitReject registra un 429.
func RecordRateLimitReject() {
	mu.RLock()
	c := rateLimitRejects
	mu.RUnlock()
	if c != nil {
		c.Inc()
	}
}

// knownPaths son las únicas rutas que se usan como label; el resto colapsa
// en "other" para no explotar la cardinalidad.
var knownPaths = map[string]struct{}{
	"/":        {},
	"/profile": {},
	"/readyz":  {},
	"/metrics": {},
}

func normalizePath(p string) string {
	clean := strings.SplitN(p, "?", 2)[0]
	if clean == "" {
		clean = "/"
	}
	if len(clean) > 1 {
		clean = strings.TrimRight(clean, "/")
	}
	if _, ok := knownPaths[clean]; ok {
		return clean
	}
	return "other"
}
