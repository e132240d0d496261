package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/seantiz/kiln/internal/api"
	"github.com/seantiz/kiln/internal/config"
	"github.com/seantiz/kiln/internal/events"
	"github.com/seantiz/kiln/internal/input"
	"github.com/seantiz/kiln/internal/mutator"
	"github.com/seantiz/kiln/internal/store"
)

var (
	flagConfig  string
	flagWorkers int
	flagSeed    uint64
	flagInitial int
	flagQuiet   bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a fuzzing campaign",
	Long: `Run a fuzzing campaign until interrupted.

Configuration is read from defaults, then the TOML file named by --config
or KILN_CONFIG, then KILN_* environment variables, then the flags below.`,
	RunE: runCampaign,
}

func init() {
	runCmd.Flags().StringVar(&flagConfig, "config", "", "path to a TOML config file")
	runCmd.Flags().IntVar(&flagWorkers, "workers", 0, "number of fuzzing workers")
	runCmd.Flags().Uint64Var(&flagSeed, "seed", 0, "random seed of worker 0 (0 picks one)")
	runCmd.Flags().IntVar(&flagInitial, "initial", 0, "initial inputs generated per worker")
	runCmd.Flags().BoolVar(&flagQuiet, "quiet", false, "do not print stats lines to stderr")
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return config.Config{}, err
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = flagWorkers
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = flagSeed
	}
	if cmd.Flags().Changed("initial") {
		cfg.InitialInputs = flagInitial
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	if cfg.Seed == 0 {
		cfg.Seed = uint64(time.Now().UnixNano())
	}
	return cfg, nil
}

func runCampaign(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := config.NewLogger(os.Stdout, cfg.LogLevel)

	logger.Info("kiln: starting",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"corpus_dir", cfg.CorpusDir,
		"workers", cfg.Workers,
		"seed", cfg.Seed,
	)

	db, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	mutations := mutator.DefaultRegistry()
	if _, err := mutations.Resolve(cfg.Mutations); err != nil {
		return err
	}

	broker := events.NewBroker()
	mon := events.NewMonitor(os.Stderr)
	if flagQuiet {
		mon = events.NewMonitor(nil)
	}

	srv := api.NewServer(cfg.ListenAddr, db, broker, mon, mutations, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shared := &campaign{
		cfg:       cfg,
		store:     db,
		broker:    broker,
		monitor:   mon,
		hub:       events.NewHub[input.Bytes](0),
		mutations: mutations,
		logger:    logger,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		broker.Close()
		return nil
	})
	for id := 0; id < cfg.Workers; id++ {
		g.Go(func() error {
			return shared.runWorker(gctx, id)
		})
	}

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	snap := mon.Snapshot()
	logger.Info("kiln: stopped",
		"executions", snap.Executions,
		"corpus_size", snap.CorpusSize,
	)
	return err
}
