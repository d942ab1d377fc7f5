package main

import (
	"context"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metricsServer serves a Prometheus registry's /metrics endpoint in the
// background for the duration of a single Solve call. It is deliberately
// separate from internal/sat, which never imports net/http: the core solver
// only produces metrics, it never decides how (or whether) they are served.
type metricsServer struct {
	prometheus.Registerer
	srv *http.Server
}

func newMetricsServer(addr string) *metricsServer {
	reg := prometheus.NewRegistry()
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Warn("cadence: metrics server stopped")
		}
	}()

	return &metricsServer{Registerer: reg, srv: srv}
}

func (m *metricsServer) Close() error {
	return m.srv.Shutdown(context.Background())
}
