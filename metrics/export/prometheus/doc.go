// Package prometheus exposes authcore metrics through a client_golang
// Collector.
//
// [NewCollector] reads [authcore.Engine.MetricsSnapshot] on every scrape.
// Counters are named authcore_*_total; the two latency histograms are
// authcore_hash_latency_seconds and authcore_validate_latency_seconds.
//
// # What this package must NOT do
//
//   - Register into the global Prometheus registry. Callers register the
//     collector or mount [Collector.Handler].
//   - Mutate engine state.
package prometheus
