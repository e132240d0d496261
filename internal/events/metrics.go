package events

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/seantiz/kiln/internal/corpus"
	"github.com/seantiz/kiln/internal/input"
)

var (
	executionsGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "kiln_executions",
			Help: "Target executions reported by the last stats update.",
		},
		[]string{"worker"},
	)

	execsPerSecGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "kiln_execs_per_second",
			Help: "Execution throughput reported by the last stats update.",
		},
		[]string{"worker"},
	)

	corpusSizeGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "kiln_corpus_size",
			Help: "Number of testcases in the worker corpus.",
		},
		[]string{"worker"},
	)

	initialInputsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kiln_initial_inputs_total",
			Help: "Total number of generated initial inputs.",
		},
		[]string{"worker"},
	)

	newTestcasesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kiln_new_testcases_total",
			Help: "Total number of testcases added by fuzzing.",
		},
		[]string{"worker"},
	)

	logMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kiln_log_messages_total",
			Help: "Total number of log events by severity.",
		},
		[]string{"worker", "severity"},
	)
)

func init() {
	prometheus.MustRegister(executionsGauge)
	prometheus.MustRegister(execsPerSecGauge)
	prometheus.MustRegister(corpusSizeGauge)
	prometheus.MustRegister(initialInputsTotal)
	prometheus.MustRegister(newTestcasesTotal)
	prometheus.MustRegister(logMessagesTotal)
}

var _ Manager[input.Bytes] = (*Metrics[input.Bytes])(nil)

// Metrics exports the events of one worker as Prometheus series labelled
// with the worker id.
type Metrics[I input.Input[I]] struct {
	worker string
}

// NewMetrics returns the metrics manager for worker workerID.
func NewMetrics[I input.Input[I]](workerID int) *Metrics[I] {
	return &Metrics[I]{worker: strconv.Itoa(workerID)}
}

// Fire updates the series for ev.
func (m *Metrics[I]) Fire(ev Event) error {
	switch e := ev.(type) {
	case LoadInitial:
		initialInputsTotal.WithLabelValues(m.worker).Inc()
	case Log:
		logMessagesTotal.WithLabelValues(m.worker, e.Severity.String()).Inc()
	case UpdateStats:
		executionsGauge.WithLabelValues(m.worker).Set(float64(e.Executions))
		execsPerSecGauge.WithLabelValues(m.worker).Set(float64(e.ExecsPerSec))
	case NewTestcase[I]:
		newTestcasesTotal.WithLabelValues(m.worker).Inc()
	}
	return nil
}

// Process records the corpus size.
func (m *Metrics[I]) Process(_ State, c corpus.Corpus[I]) (int, error) {
	corpusSizeGauge.WithLabelValues(m.worker).Set(float64(c.Count()))
	return 0, nil
}
