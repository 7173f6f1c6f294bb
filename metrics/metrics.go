// Copyright (c) 2026 The Provex developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package metrics is a singleton front over the meters used by the ledger.
// It defaults to a no-op implementation; the daemon opts into prometheus via
// InitializePrometheusMetrics.
package metrics

import (
	"net/http"
	"sync"
)

var (
	mu      sync.Mutex
	metrics Metrics = newNoopMetrics()
)

// Metrics defines the interface for metrics service implementations.
type Metrics interface {
	GetOrCreateCountMeter(name string) CountMeter
	GetOrCreateCountVecMeter(name string, labels []string) CountVecMeter
	GetOrCreateGaugeMeter(name string) GaugeMeter
	GetOrCreateHistogramVecMeter(name string, labels []string, buckets []int64) HistogramVecMeter
	GetOrCreateHandler() http.Handler
}

// CountMeter is a monotonically increasing counter.
type CountMeter interface {
	Add(int64)
}

// CountVecMeter is a counter with labels.
type CountVecMeter interface {
	AddWithLabel(int64, map[string]string)
}

// GaugeMeter is a numeric value which can go up and down.
type GaugeMeter interface {
	Add(int64)
	Set(int64)
}

// HistogramVecMeter aggregates measurements into labeled buckets.
type HistogramVecMeter interface {
	ObserveWithLabels(int64, map[string]string)
}

// BucketHTTPReqs buckets http request durations, in milliseconds.
var BucketHTTPReqs = []int64{
	0, 1, 2, 5, 10, 20, 30, 50, 75, 100,
	150, 200, 300, 400, 500, 750, 1000,
	1500, 2000, 3000, 4000, 5000, 10000,
}

// HTTPHandler returns the http handler for retrieving metrics.
func HTTPHandler() http.Handler {
	mu.Lock()
	defer mu.Unlock()
	return metrics.GetOrCreateHandler()
}

// Counter returns a named counter meter.
func Counter(name string) CountMeter {
	mu.Lock()
	defer mu.Unlock()
	return metrics.GetOrCreateCountMeter(name)
}

// CounterVec returns a named counter meter with labels.
func CounterVec(name string, labels []string) CountVecMeter {
	mu.Lock()
	defer mu.Unlock()
	return metrics.GetOrCreateCountVecMeter(name, labels)
}

// Gauge returns a named gauge meter.
func Gauge(name string) GaugeMeter {
	mu.Lock()
	defer mu.Unlock()
	return metrics.GetOrCreateGaugeMeter(name)
}

// HistogramVec returns a named histogram meter with labels.
func HistogramVec(name string, labels []string, buckets []int64) HistogramVecMeter {
	mu.Lock()
	defer mu.Unlock()
	return metrics.GetOrCreateHistogramVecMeter(name, labels, buckets)
}
