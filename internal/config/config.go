package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	defaultListenAddr    = ":8080"
	defaultDBPath        = "kiln.db"
	defaultCorpusDir     = "corpus"
	defaultWorkers       = 1
	defaultInitialInputs = 8
	defaultMaxInputLen   = 256
	defaultStatsInterval = 6 * time.Second

	envConfig          = "KILN_CONFIG"
	envListenAddr      = "KILN_LISTEN_ADDR"
	envDBPath          = "KILN_DB_PATH"
	envCorpusDir       = "KILN_CORPUS_DIR"
	envLogLevel        = "KILN_LOG_LEVEL"
	envSeed            = "KILN_SEED"
	envWorkers         = "KILN_WORKERS"
	envInitialInputs   = "KILN_INITIAL_INPUTS"
	envMaxInputLen     = "KILN_MAX_INPUT_LEN"
	envStatsInterval   = "KILN_STATS_INTERVAL"
	envStageIterations = "KILN_STAGE_ITERATIONS"
	envMutations       = "KILN_MUTATIONS"
	envRunTimeout      = "KILN_RUN_TIMEOUT"
)

// ErrInvalid is wrapped by every configuration validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config holds application configuration.
type Config struct {
	ListenAddr string
	DBPath     string
	CorpusDir  string
	LogLevel   slog.Level

	// Seed of worker 0; worker i uses Seed+i. Zero picks a time-based seed.
	Seed          uint64
	Workers       int
	InitialInputs int
	MaxInputLen   int
	StatsInterval time.Duration
	// StageIterations fixes the mutations per stage run. Zero is random.
	StageIterations int
	// Mutations names the byte mutations to schedule. Empty means all.
	Mutations  []string
	RunTimeout time.Duration
}

// fileConfig is the TOML layout of a config file.
type fileConfig struct {
	ListenAddr      string   `toml:"listen_addr"`
	DBPath          string   `toml:"db_path"`
	CorpusDir       string   `toml:"corpus_dir"`
	LogLevel        string   `toml:"log_level"`
	Seed            uint64   `toml:"seed"`
	Workers         int      `toml:"workers"`
	InitialInputs   int      `toml:"initial_inputs"`
	MaxInputLen     int      `toml:"max_input_len"`
	StatsInterval   string   `toml:"stats_interval"`
	StageIterations int      `toml:"stage_iterations"`
	Mutations       []string `toml:"mutations"`
	RunTimeout      string   `toml:"run_timeout"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ListenAddr:    defaultListenAddr,
		DBPath:        defaultDBPath,
		CorpusDir:     defaultCorpusDir,
		LogLevel:      slog.LevelInfo,
		Workers:       defaultWorkers,
		InitialInputs: defaultInitialInputs,
		MaxInputLen:   defaultMaxInputLen,
		StatsInterval: defaultStatsInterval,
	}
}

// Load builds the configuration from defaults, then the TOML file at path
// (or KILN_CONFIG when path is empty), then KILN_* environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(envConfig)
	}
	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	var f fileConfig
	meta, err := toml.DecodeFile(path, &f)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("%w: unknown key %q in %s", ErrInvalid, undecoded[0].String(), path)
	}

	if meta.IsDefined("listen_addr") {
		c.ListenAddr = f.ListenAddr
	}
	if meta.IsDefined("db_path") {
		c.DBPath = f.DBPath
	}
	if meta.IsDefined("corpus_dir") {
		c.CorpusDir = f.CorpusDir
	}
	if meta.IsDefined("log_level") {
		c.LogLevel = parseLogLevel(f.LogLevel)
	}
	if meta.IsDefined("seed") {
		c.Seed = f.Seed
	}
	if meta.IsDefined("workers") {
		c.Workers = f.Workers
	}
	if meta.IsDefined("initial_inputs") {
		c.InitialInputs = f.InitialInputs
	}
	if meta.IsDefined("max_input_len") {
		c.MaxInputLen = f.MaxInputLen
	}
	if meta.IsDefined("stats_interval") {
		d, err := time.ParseDuration(f.StatsInterval)
		if err != nil {
			return fmt.Errorf("%w: stats_interval: %v", ErrInvalid, err)
		}
		c.StatsInterval = d
	}
	if meta.IsDefined("stage_iterations") {
		c.StageIterations = f.StageIterations
	}
	if meta.IsDefined("mutations") {
		c.Mutations = f.Mutations
	}
	if meta.IsDefined("run_timeout") {
		d, err := time.ParseDuration(f.RunTimeout)
		if err != nil {
			return fmt.Errorf("%w: run_timeout: %v", ErrInvalid, err)
		}
		c.RunTimeout = d
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(envListenAddr); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv(envDBPath); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv(envCorpusDir); v != "" {
		c.CorpusDir = v
	}
	if v := os.Getenv(envLogLevel); v != "" {
		c.LogLevel = parseLogLevel(v)
	}
	if v := os.Getenv(envSeed); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalid, envSeed, err)
		}
		c.Seed = n
	}
	for _, e := range []struct {
		name string
		dst  *int
	}{
		{envWorkers, &c.Workers},
		{envInitialInputs, &c.InitialInputs},
		{envMaxInputLen, &c.MaxInputLen},
		{envStageIterations, &c.StageIterations},
	} {
		v := os.Getenv(e.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalid, e.name, err)
		}
		*e.dst = n
	}
	for _, e := range []struct {
		name string
		dst  *time.Duration
	}{
		{envStatsInterval, &c.StatsInterval},
		{envRunTimeout, &c.RunTimeout},
	} {
		v := os.Getenv(e.name)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalid, e.name, err)
		}
		*e.dst = d
	}
	if v := os.Getenv(envMutations); v != "" {
		c.Mutations = splitList(v)
	}
	return nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	switch {
	case c.Workers < 1:
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalid, c.Workers)
	case c.InitialInputs < 1:
		return fmt.Errorf("%w: initial inputs must be at least 1, got %d", ErrInvalid, c.InitialInputs)
	case c.MaxInputLen < 1:
		return fmt.Errorf("%w: max input length must be at least 1, got %d", ErrInvalid, c.MaxInputLen)
	case c.StatsInterval <= 0:
		return fmt.Errorf("%w: stats interval must be positive, got %s", ErrInvalid, c.StatsInterval)
	case c.StageIterations < 0:
		return fmt.Errorf("%w: stage iterations must not be negative, got %d", ErrInvalid, c.StageIterations)
	case c.RunTimeout < 0:
		return fmt.Errorf("%w: run timeout must not be negative, got %s", ErrInvalid, c.RunTimeout)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a structured JSON logger writing to w at the configured level.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}
