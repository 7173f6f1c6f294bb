// Copyright (c) 2026 The Provex developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package api assembles the HTTP surface of the daemon.
package api

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/provex/provex/api/ledgerapi"
	"github.com/provex/provex/api/restutil"
	"github.com/provex/provex/ledger"
	"github.com/provex/provex/metrics"
)

var metricHTTPReqs = sync.OnceValue(func() metrics.HistogramVecMeter {
	return metrics.HistogramVec(
		"api_request_duration_ms", []string{"name", "code", "method"}, metrics.BucketHTTPReqs)
})

// New builds the API handler: the ledger routes under /ledger, a health
// probe, CORS and per-route request metrics.
func New(l *ledger.Ledger, allowedOrigins []string) http.Handler {
	router := mux.NewRouter()
	router.Use(instrument)

	ledgerapi.New(l).Mount(router, "/ledger")

	router.Path("/healthz").
		Methods(http.MethodGet).
		Name("healthz").
		HandlerFunc(restutil.WrapHandlerFunc(func(w http.ResponseWriter, _ *http.Request) error {
			w.WriteHeader(http.StatusOK)
			return nil
		}))

	return handlers.CORS(
		handlers.AllowedOrigins(allowedOrigins),
		handlers.AllowedHeaders([]string{"content-type"}),
		handlers.AllowedMethods([]string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete,
		}),
	)(router)
}

// instrument records request duration per route, status and method. Installed
// as mux middleware so the matched route is available.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		started := time.Now()
		next.ServeHTTP(recorder, r)

		name := "unmatched"
		if route := mux.CurrentRoute(r); route != nil && route.GetName() != "" {
			name = route.GetName()
		}
		metricHTTPReqs().ObserveWithLabels(time.Since(started).Milliseconds(), map[string]string{
			"name":   name,
			"code":   strconv.Itoa(recorder.status),
			"method": r.Method,
		})
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
