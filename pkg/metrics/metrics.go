package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// PermissionChecks counts permission evaluations and their outcome (allowed|denied|error).
	PermissionChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_permission_checks_total",
			Help: "Total number of permission checks",
		},
		[]string{"permission", "result"},
	)

	// StorageFailures counts permission store lookups that collapsed to deny.
	StorageFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tracker_permission_storage_failures_total",
			Help: "Permission store lookups that failed and were treated as deny",
		},
	)

	// TenantsProvisioned counts successful tenant RBAC bootstraps.
	TenantsProvisioned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tracker_tenants_provisioned_total",
			Help: "Tenants whose system roles have been provisioned",
		},
	)

	// WorkspaceSwitches records workspace-switch resolutions by result (allowed|denied).
	WorkspaceSwitches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_workspace_switches_total",
			Help: "Cross-tenant identity resolutions",
		},
		[]string{"result"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tracker_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
