// Package metrics defines the sink interfaces the scheduler core emits
// observability events through. Concrete sinks live in infra/metrics.
package metrics
