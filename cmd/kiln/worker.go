package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"

	"github.com/seantiz/kiln/internal/config"
	"github.com/seantiz/kiln/internal/corpus"
	"github.com/seantiz/kiln/internal/events"
	"github.com/seantiz/kiln/internal/executor"
	"github.com/seantiz/kiln/internal/feedback"
	"github.com/seantiz/kiln/internal/fuzzer"
	"github.com/seantiz/kiln/internal/generator"
	"github.com/seantiz/kiln/internal/input"
	"github.com/seantiz/kiln/internal/mutator"
	"github.com/seantiz/kiln/internal/observer"
	"github.com/seantiz/kiln/internal/random"
	"github.com/seantiz/kiln/internal/stage"
	"github.com/seantiz/kiln/internal/store"
)

// errNoSeeds is returned when a worker starts with an empty corpus and none
// of its generated initial inputs was interesting.
var errNoSeeds = errors.New("no initial input was interesting")

const (
	edgesObserver = "edges"
	timeObserver  = "time"
)

// campaign holds what the workers of one run share.
type campaign struct {
	cfg       config.Config
	store     store.Store
	broker    *events.Broker
	monitor   *events.Monitor
	hub       *events.Hub[input.Bytes]
	mutations *mutator.Registry
	logger    *slog.Logger
}

// runWorker fuzzes with worker id until ctx is cancelled.
func (c *campaign) runWorker(ctx context.Context, id int) error {
	workerID := strconv.Itoa(id)
	logger := c.logger.With("worker_id", workerID)

	edges := observer.NewStdMap(edgesObserver, edgesMapSize)
	timer := observer.NewTime(timeObserver)
	exec := executor.NewInProcess(demoTarget(edges), observer.Observers{edges, timer},
		executor.WithTimeout(c.cfg.RunTimeout),
		executor.WithLogger(logger),
	)
	eng := fuzzer.NewEngine[input.Bytes](exec)

	st := fuzzer.NewState(feedback.Feedbacks[input.Bytes]{
		feedback.NewMaxMap[input.Bytes](edgesObserver),
		feedback.NewTime[input.Bytes](timeObserver),
	}, fuzzer.WithSenderID(id))

	corp, err := corpus.NewOnDisk[input.Bytes](
		filepath.Join(c.cfg.CorpusDir, workerID),
		corpus.WithCatalog(c.store, workerID),
		corpus.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("worker %d: %w", id, err)
	}

	local, err := c.hub.Join(id)
	if err != nil {
		return err
	}
	defer local.Leave()

	mgr := events.Multi[input.Bytes]{
		events.NewLogger[input.Bytes](logger),
		events.NewMetrics[input.Bytes](id),
		events.NewRecorder[input.Bytes](c.store, id),
		events.NewBrokerManager[input.Bytes](c.broker, id),
		events.NewMonitorManager[input.Bytes](c.monitor, id),
		local,
	}

	r := random.NewStdRand(c.cfg.Seed + uint64(id))

	if err := seedCorpus(ctx, r, st, corp, eng, mgr, c.cfg, logger); err != nil {
		return fmt.Errorf("worker %d: %w", id, err)
	}

	muts, err := c.mutations.Resolve(c.cfg.Mutations)
	if err != nil {
		return err
	}
	f := fuzzer.NewStdFuzzer(
		[]fuzzer.Stage[input.Bytes]{
			stage.NewMutational[input.Bytes](
				mutator.NewScheduled[input.Bytes](muts, mutator.WithMaxLen(c.cfg.MaxInputLen)),
				stage.WithIterations(c.cfg.StageIterations),
			),
		},
		fuzzer.WithStatsInterval(c.cfg.StatsInterval),
	)

	logger.Info("fuzzing", "corpus_size", corp.Count())
	err = f.FuzzLoop(ctx, r, st, corp, eng, mgr)
	if errors.Is(err, context.Canceled) {
		logger.Info("worker stopped", "executions", st.Executions(), "corpus_size", corp.Count())
		return nil
	}
	return fmt.Errorf("worker %d: %w", id, err)
}

// seedCorpus restores the cataloged corpus of a previous run, replaying each
// entry once so the feedbacks know the coverage it already reached. Entries
// whose files are gone were already dropped by Restore. A fresh corpus is
// seeded with generated inputs instead.
func seedCorpus(
	ctx context.Context,
	r random.Rand,
	st *fuzzer.State[input.Bytes],
	corp *corpus.OnDisk[input.Bytes],
	eng *fuzzer.Engine[input.Bytes],
	mgr events.Manager[input.Bytes],
	cfg config.Config,
	logger *slog.Logger,
) error {
	restored, err := corp.Restore(ctx)
	if err != nil {
		return err
	}
	if restored > 0 {
		for i := 0; i < corp.Count(); i++ {
			tc, err := corp.Get(i)
			if err != nil {
				return err
			}
			in, err := tc.LoadInput()
			if err != nil {
				return fmt.Errorf("replay testcase %d: %w", i, err)
			}
			if _, err := st.EvaluateInput(ctx, in, eng.Executor()); err != nil {
				return err
			}
			if err := st.DiscardInput(in); err != nil {
				return err
			}
			if err := tc.ClearInput(); err != nil {
				return err
			}
		}
		logger.Info("corpus restored", "testcases", restored)
		return nil
	}

	gen := generator.NewRandPrintables[input.Bytes](cfg.MaxInputLen)
	added, err := st.GenerateInitialInputs(ctx, r, corp, gen, eng, mgr, cfg.InitialInputs)
	if err != nil {
		return err
	}
	if corp.Count() == 0 {
		return errNoSeeds
	}
	logger.Debug("corpus seeded", "added", added, "corpus_size", corp.Count())
	return nil
}
