package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandrolain/golambda/pkg/evaluator"
	"github.com/sandrolain/golambda/pkg/observability"
)

// app holds the state shared by the sub commands of one invocation.
type app struct {
	cfgFile string
	flags   Config

	cfg    Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:           "golambda",
		Short:         "golambda - evaluate lambda expressions against node trees",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "YAML configuration file")
	pf.BoolVar(&a.flags.Debug, "debug", false, "Enable debug logging")
	pf.BoolVar(&a.flags.Caching, "caching", false, "Cache compiled expressions")
	pf.IntVar(&a.flags.CacheSize, "cache-size", 0, "Maximum number of cached expressions")
	pf.IntVar(&a.flags.MaxDepth, "max-depth", 0, "Maximum reference expression depth")
	pf.DurationVar(&a.flags.Timeout, "timeout", 0, "Evaluation timeout")

	rootCmd.AddCommand(newEvalCmd(a))
	rootCmd.AddCommand(newTokensCmd())
	rootCmd.AddCommand(newTreeCmd(a))
	return rootCmd
}

// setup loads the configuration file, lets explicitly set flags override
// it and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	cfg := DefaultConfig()
	if a.cfgFile != "" {
		loaded, err := LoadConfig(a.cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	pf := cmd.Flags()
	if pf.Changed("debug") {
		cfg.Debug = a.flags.Debug
	}
	if pf.Changed("caching") {
		cfg.Caching = a.flags.Caching
	}
	if pf.Changed("cache-size") {
		cfg.CacheSize = a.flags.CacheSize
	}
	if pf.Changed("max-depth") {
		cfg.MaxDepth = a.flags.MaxDepth
	}
	if pf.Changed("timeout") {
		cfg.Timeout = a.flags.Timeout
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	a.cfg = cfg

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return nil
}

// evaluator builds an evaluator from the effective configuration.
func (a *app) evaluator() *evaluator.Evaluator {
	opts := []evaluator.EvalOption{
		evaluator.WithLogger(a.logger),
		evaluator.WithDebug(a.cfg.Debug),
		evaluator.WithMaxDepth(a.cfg.MaxDepth),
		evaluator.WithMetrics(observability.NewMetricsRecorder()),
		evaluator.WithTracing(observability.NewSpanManager()),
	}
	if a.cfg.Timeout > 0 {
		opts = append(opts, evaluator.WithTimeout(a.cfg.Timeout))
	}
	if a.cfg.Caching {
		opts = append(opts, evaluator.WithCaching(true), evaluator.WithCacheSize(a.cfg.CacheSize))
	}
	return evaluator.New(opts...)
}

const defaultTimeout = 30 * time.Second
