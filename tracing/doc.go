// Package tracing integrates OpenTelemetry with the admission runtime. All
// instrumentation lives in a separate package so that applications which do
// not require tracing can leave it uninitialised – spans become no-ops.
package tracing
