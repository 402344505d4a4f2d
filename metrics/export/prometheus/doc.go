// Package prometheus provides Prometheus collectors for engine metrics.
//
// [NewPrometheusExporter] accepts a [sessionkit.Engine] and exposes an [http.Handler]
// that renders all engine counters and histograms in Prometheus text exposition format.
// Counter names are prefixed sessionkit_*_total; the single histogram is
// sessionkit_resolve_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry; callers mount the Handler.
//   - Mutate engine state.
package prometheus
