package httpapi

import (
	"database/sql"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewMux returns a mux serving /healthz and, with a non-nil gatherer,
// /metrics. Feature modules register their own routes on it. mqtt may be
// nil when ingest is disabled.
func NewMux(db *sql.DB, gatherer prometheus.Gatherer, mqtt ConnectionStatus) *http.ServeMux {
	mux := http.NewServeMux()
	registerHealthcheck(mux, db, mqtt)
	if gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	return mux
}
