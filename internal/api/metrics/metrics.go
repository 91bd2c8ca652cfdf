// Package metrics defines and registers the custom Prometheus metrics of the
// catalog API. HTTP request metrics come from the echoprometheus middleware;
// the collectors here cover authentication, catalog writes and image storage.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "catalog"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "ok", "rejected" (bad credentials) or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// RegistrationsTotal counts completed registrations.
// Label:
//   - role: the initial role granted ("admin" or "registrado")
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of accounts registered, by initial role.",
	},
	[]string{"role"},
)

// ── Catalog metrics ───────────────────────────────────────────────────────────

// MovieWritesTotal counts movie create/update/delete calls.
// Labels:
//   - operation: "create", "update" or "delete"
//   - result: "ok", "invalid", "not_found" or "error"
var MovieWritesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "movie_writes_total",
		Help:      "Total number of movie write operations, by operation and result.",
	},
	[]string{"operation", "result"},
)

// ── Image storage metrics ─────────────────────────────────────────────────────

// ImageFilesTotal counts file operations against the image store.
// Labels:
//   - operation: "write" or "delete"
//   - result: "ok" or "error"
var ImageFilesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "image_files_total",
		Help:      "Total number of image file writes and deletes, by result.",
	},
	[]string{"operation", "result"},
)

// ImageWriteDuration measures how long a single image write takes.
var ImageWriteDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "image_write_duration_seconds",
		Help:      "Duration of image writes to the file store.",
		Buckets:   prometheus.DefBuckets,
	},
)

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
