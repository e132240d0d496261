// Package observer defines the per-execution probes an executor resets before
// and finalizes after every run of the target, together with the coverage map
// and timer observers the bundled feedbacks consume.
package observer
