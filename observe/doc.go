// Package observe provides the logging and tracing primitives used while a
// health evaluation runs.
//
// Logs are JSON lines written to stderr. Each evaluation stage can run in its
// own OpenTelemetry span (health.stage.<name>) exported to stdout or OTLP.
// Nothing here decides health; it only records what the stages did.
package observe
