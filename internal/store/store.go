package store

import (
	"context"
	"errors"

	"github.com/seantiz/kiln/internal/model"
)

// ErrNotFound is returned when a testcase record does not exist.
var ErrNotFound = errors.New("testcase not found")

// CorpusStats holds aggregate statistics over cataloged testcases.
type CorpusStats struct {
	Total         int            `json:"total"`
	CountByWorker map[string]int `json:"count_by_worker"`
	AvgFitness    float64        `json:"avg_fitness"`
	MaxFitness    uint32         `json:"max_fitness"`
}

// Store defines the persistence operations for the testcase catalog and the
// event log.
type Store interface {
	CreateTestcase(ctx context.Context, rec *model.TestcaseRecord) error
	GetTestcase(ctx context.Context, id string) (*model.TestcaseRecord, error)
	ListTestcases(ctx context.Context, limit, offset int) ([]*model.TestcaseRecord, int, error)
	ListWorkerTestcases(ctx context.Context, workerID string) ([]*model.TestcaseRecord, error)
	GetCorpusStats(ctx context.Context) (*CorpusStats, error)
	InsertEvent(ctx context.Context, ev *model.EventRecord) error
	ListEvents(ctx context.Context, limit int) ([]model.EventRecord, error)
	Close() error
}
