// Package server provides the small HTTP surface exposed by watch mode:
// liveness and readiness probes, and a dedicated Prometheus metrics
// endpoint kept off the probe port.
package server
