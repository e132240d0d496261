// Package api serves the read-only HTTP surface of a running campaign:
// health, Prometheus metrics, aggregate stats, the testcase catalog and the
// live and recorded event streams.
package api
