package infrastructure

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	pkgApp "github.com/mateusmacedo/airline-registry/pkg/application"
	pkgInfra "github.com/mateusmacedo/airline-registry/pkg/infrastructure"
)

// ReadinessCheck verifica uma dependência do serviço (banco, broker).
type ReadinessCheck func(ctx context.Context) error

// OpsHTTPHandler serve as rotas operacionais: saúde, prontidão e métricas.
// A API do registro não é exposta por HTTP.
type OpsHTTPHandler struct {
	gatherer prometheus.Gatherer
	metrics  *Metrics
	checks   map[string]ReadinessCheck
	logger   pkgApp.AppLogger
}

func NewOpsHTTPHandler(gatherer prometheus.Gatherer, metrics *Metrics, checks map[string]ReadinessCheck, logger pkgApp.AppLogger) *OpsHTTPHandler {
	return &OpsHTTPHandler{
		gatherer: gatherer,
		metrics:  metrics,
		checks:   checks,
		logger:   logger,
	}
}

func (h *OpsHTTPHandler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok"})
}

func (h *OpsHTTPHandler) HandleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	failures := make(map[string]string)
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			failures[name] = err.Error()
			pkgApp.LogError(ctx, h.logger, "readiness check failed", err, map[string]interface{}{"check": name})
		}
	}

	if len(failures) > 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{"status": "unavailable", "failures": failures})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ready"})
}

func (h *OpsHTTPHandler) RegisterRoutes(router chi.Router) {
	router.Use(middleware.Recoverer)
	router.Use(h.requestContext)
	router.Get("/healthz", h.HandleHealth)
	router.Get("/readyz", h.HandleReady)
	router.Handle("/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
}

// requestContext anexa um request id e conta a requisição por rota e status.
func (h *OpsHTTPHandler) requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := pkgInfra.WithNewRequestID(r.Context())
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		if h.metrics == nil {
			return
		}
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		h.metrics.observeRequest(route, strconv.Itoa(status))
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
