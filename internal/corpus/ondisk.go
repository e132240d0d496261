package corpus

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/seantiz/kiln/internal/input"
	"github.com/seantiz/kiln/internal/model"
	"github.com/seantiz/kiln/internal/random"
)

// Catalog records the testcases of a disk-backed corpus so the corpus can be
// rebuilt after a restart.
type Catalog interface {
	CreateTestcase(ctx context.Context, rec *model.TestcaseRecord) error
	ListWorkerTestcases(ctx context.Context, workerID string) ([]*model.TestcaseRecord, error)
}

var _ Corpus[input.Bytes] = (*OnDisk[input.Bytes])(nil)

// OnDisk writes every added testcase to its own file under a directory and
// drops the in-memory input, so inputs are reloaded lazily on use. Selection
// is uniform at random.
type OnDisk[I input.Input[I]] struct {
	entries[I]
	dir      string
	workerID string
	catalog  Catalog
	logger   *slog.Logger
}

// OnDiskOption configures an OnDisk corpus.
type OnDiskOption func(*onDiskOptions)

type onDiskOptions struct {
	workerID string
	catalog  Catalog
	logger   *slog.Logger
}

// WithCatalog records each added testcase in c under workerID.
func WithCatalog(c Catalog, workerID string) OnDiskOption {
	return func(o *onDiskOptions) {
		o.catalog = c
		o.workerID = workerID
	}
}

// WithLogger sets the logger used for catalog failures.
func WithLogger(l *slog.Logger) OnDiskOption {
	return func(o *onDiskOptions) {
		o.logger = l
	}
}

// NewOnDisk creates an OnDisk corpus rooted at dir, creating dir if needed.
func NewOnDisk[I input.Input[I]](dir string, opts ...OnDiskOption) (*OnDisk[I], error) {
	o := onDiskOptions{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create corpus dir: %w", err)
	}
	return &OnDisk[I]{
		dir:      dir,
		workerID: o.workerID,
		catalog:  o.catalog,
		logger:   o.logger,
	}, nil
}

// Dir returns the directory testcases are written to.
func (c *OnDisk[I]) Dir() string {
	return c.dir
}

// Count returns the number of entries.
func (c *OnDisk[I]) Count() int {
	return c.count()
}

// Get returns the entry at idx. Its input may need LoadInput.
func (c *OnDisk[I]) Get(idx int) (*Testcase[I], error) {
	return c.get(idx)
}

// Next returns a uniformly chosen entry. Its input may need LoadInput.
func (c *OnDisk[I]) Next(r random.Rand) (*Testcase[I], int, error) {
	if c.count() == 0 {
		return nil, 0, ErrEmpty
	}
	idx := int(r.Below(uint64(c.count())))
	return c.items[idx], idx, nil
}

// Add names tc after a fresh ULID unless it already has a filename, writes
// its input, records it in the catalog and evicts the in-memory input.
func (c *OnDisk[I]) Add(tc *Testcase[I]) (int, error) {
	name, ok := tc.Filename()
	if !ok {
		name = filepath.Join(c.dir, model.NewID())
		tc.SetFilename(name)
	}
	if _, err := tc.StoreInput(); err != nil {
		return 0, err
	}
	if err := tc.ClearInput(); err != nil {
		return 0, err
	}

	idx := c.count()
	if c.catalog != nil {
		if err := c.record(tc, idx); err != nil {
			return 0, err
		}
	}
	return c.add(tc), nil
}

func (c *OnDisk[I]) record(tc *Testcase[I], idx int) error {
	meta, err := msgpack.Marshal(tc.Metadata())
	if err != nil {
		return fmt.Errorf("encode testcase metadata: %w", err)
	}
	name, _ := tc.Filename()
	rec := &model.TestcaseRecord{
		ID:        filepath.Base(name),
		WorkerID:  c.workerID,
		Index:     idx,
		Filename:  name,
		Fitness:   tc.Fitness(),
		Metadata:  meta,
		CreatedAt: time.Now().UTC(),
	}
	if d, ok := tc.ExecTime(); ok {
		ns := d.Nanoseconds()
		rec.ExecTimeNS = &ns
	}
	if err := c.catalog.CreateTestcase(context.Background(), rec); err != nil {
		return fmt.Errorf("catalog testcase: %w", err)
	}
	return nil
}

// Restore appends the testcases previously cataloged for this worker, in
// index order. Entries whose input can no longer be read are skipped. It
// returns how many were added.
func (c *OnDisk[I]) Restore(ctx context.Context) (int, error) {
	if c.catalog == nil {
		return 0, nil
	}
	recs, err := c.catalog.ListWorkerTestcases(ctx, c.workerID)
	if err != nil {
		return 0, fmt.Errorf("list cataloged testcases: %w", err)
	}
	added := 0
	for _, rec := range recs {
		tc := NewTestcaseFromFile[I](rec.Filename)
		if _, err := tc.LoadInput(); err != nil {
			c.logger.Warn("skipping unreadable testcase", "testcase_id", rec.ID, "error", err)
			continue
		}
		if err := tc.ClearInput(); err != nil {
			return added, err
		}
		tc.SetFitness(rec.Fitness)
		if rec.ExecTimeNS != nil {
			tc.SetExecTime(time.Duration(*rec.ExecTimeNS))
		}
		if len(rec.Metadata) > 0 {
			if err := msgpack.Unmarshal(rec.Metadata, tc.Metadata()); err != nil {
				c.logger.Warn("dropping undecodable testcase metadata", "testcase_id", rec.ID, "error", err)
			}
		}
		c.add(tc)
		added++
	}
	return added, nil
}
