package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HealthFunc func(ctx context.Context) error

// StartMetricsServer sobe um servidor HTTP leve só pra /metrics e /healthz.
// executável em numa goroutine no main de cada serviço.
func StartMetricsServer(port string, healthFn HealthFunc) *http.Server {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           NewMux(healthFn),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		_ = srv.ListenAndServe()
	}()

	return srv
}

// NewMux monta as rotas /metrics e /healthz
func NewMux(healthFn HealthFunc) *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()

		if healthFn != nil {
			if err := healthFn(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(fmt.Sprintf("unhealthy: %v", err)))
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return mux
}

// HTTP agrupa os coletores de requisições da API pública
type HTTP struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
	InFlight prometheus.Gauge
}

// NewHTTP cria e registra os coletores HTTP no registry informado
func NewHTTP(reg prometheus.Registerer, service string) *HTTP {
	m := &HTTP{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "requisições HTTP por rota, método e status",
			ConstLabels: prometheus.Labels{"service": service},
		}, []string{"route", "method", "status"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "latência das requisições HTTP",
			ConstLabels: prometheus.Labels{"service": service},
			Buckets:     prometheus.DefBuckets,
		}, []string{"route", "method"}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "http_requests_in_flight",
			Help:        "requisições em andamento",
			ConstLabels: prometheus.Labels{"service": service},
		}),
	}
	reg.MustRegister(m.Requests, m.Duration, m.InFlight)
	return m
}

// Worker agrupa os contadores de um consumer Kafka
type Worker struct {
	Consumed  prometheus.Counter
	Processed prometheus.Counter
	Errors    *prometheus.CounterVec
}

// NewWorker cria contadores com prefixo do worker (ex: "odds_worker")
func NewWorker(reg prometheus.Registerer, prefix string) *Worker {
	m := &Worker{
		Consumed:  prometheus.NewCounter(prometheus.CounterOpts{Name: prefix + "_messages_consumed_total", Help: "mensagens consumidas"}),
		Processed: prometheus.NewCounter(prometheus.CounterOpts{Name: prefix + "_messages_processed_total", Help: "mensagens processadas com sucesso"}),
		Errors:    prometheus.NewCounterVec(prometheus.CounterOpts{Name: prefix + "_errors_total", Help: "erros por estágio"}, []string{"stage"}),
	}
	reg.MustRegister(m.Consumed, m.Processed, m.Errors)
	return m
}
