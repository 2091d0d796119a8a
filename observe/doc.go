// Package observe provides observability primitives for narrative
// request handling.
//
// It is a pure instrumentation library: no orchestration, no transport,
// no I/O beyond exporter setup. Consumers wire the observer into the
// narrative orchestrator or server middleware.
package observe
