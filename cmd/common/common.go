// Package common implements common superchain-token-list command options.
package common

import (
	"context"
	"fmt"
	"io"
	stdLog "log"
	"os"

	"github.com/akrylysov/pogreb"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/superbridgeapp/superchain-token-list/cache/kvstore"
	"github.com/superbridgeapp/superchain-token-list/chains"
	"github.com/superbridgeapp/superchain-token-list/config"
	"github.com/superbridgeapp/superchain-token-list/evm"
	"github.com/superbridgeapp/superchain-token-list/log"
	"github.com/superbridgeapp/superchain-token-list/metrics"
)

const metricsPkg = "superchain_token_list"

var rootLogger = log.NewDefaultLogger("superchain-token-list")

// Init initializes the common environment. The metrics pull service, if
// configured, runs until ctx is done.
func Init(ctx context.Context, cfg *config.Config) error {
	var w io.Writer = os.Stderr
	format := log.FmtJSON
	level := log.LevelInfo

	// Initialize logging.
	if cfg.Log != nil {
		var err error
		if w, err = getLoggingStream(cfg.Log); err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		if cfg.Log.Format != "" {
			if err := format.Set(cfg.Log.Format); err != nil {
				return err
			}
		}
		if cfg.Log.Level != "" {
			if err := level.Set(cfg.Log.Level); err != nil {
				return err
			}
		}
	}
	logger, err := log.NewLogger("superchain-token-list", w, format, level)
	if err != nil {
		return err
	}
	rootLogger = logger.With("run_id", uuid.NewString())

	// Initialize pogreb logging.
	pogreb.SetLogger(stdLog.New(rootLogger.WithModule("pogreb").Writer(log.LevelInfo), "", 0))

	// Initialize Prometheus service.
	if cfg.Metrics != nil {
		promServer := metrics.NewPullService(cfg.Metrics.PullEndpoint, rootLogger)
		go func() {
			if err := promServer.Run(ctx); err != nil {
				rootLogger.Error("metrics service failed", "err", err)
			}
		}()
	}
	return nil
}

// RootLogger returns the logger defined by logging flags.
func RootLogger() *log.Logger {
	return rootLogger
}

func getLoggingStream(cfg *config.LogConfig) (io.Writer, error) {
	if cfg == nil || cfg.File == "" {
		return os.Stderr, nil
	}
	w, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// NewRegistry builds the chain registry from the config.
func NewRegistry(cfg *config.Config) (*chains.Registry, error) {
	registry, err := chains.New(&cfg.Chains)
	if err != nil {
		return nil, fmt.Errorf("chain registry: %w", err)
	}
	return registry, nil
}

// Source is a connection pool to every chain, plus the call cache it reads
// through.
type Source struct {
	*evm.Pool
	cache kvstore.KVStore
}

// Close disconnects from every chain and flushes the call cache.
func (s *Source) Close() {
	s.Pool.Close()
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			rootLogger.Error("failed to close call cache", "err", err)
		}
	}
}

// NewSource creates the on-chain read path described by the config.
func NewSource(cfg *config.Config, registry *chains.Registry) (*Source, error) {
	logger := RootLogger().WithModule("evm")
	rpcMetrics := metrics.NewDefaultRPCMetrics(metricsPkg)
	opts := evm.Options{
		RPC:     cfg.RPC,
		Metrics: &rpcMetrics,
	}

	var cache kvstore.KVStore
	if cfg.Cache != nil {
		var err error
		cache, err = kvstore.OpenKVStore(RootLogger().WithModule("cache"), cfg.Cache.CacheDir, &rpcMetrics)
		if err != nil {
			return nil, err
		}
		opts.Cache = cache
	}

	return &Source{
		Pool:  evm.NewPool(registry, evm.DialEthClient, opts, logger),
		cache: cache,
	}, nil
}

// NewRequestMetrics returns the metrics of the preview server.
func NewRequestMetrics() metrics.RequestMetrics {
	return metrics.NewDefaultRequestMetrics(metricsPkg)
}

// InitFromFlags loads the config named by the --config flag of cmd and
// initializes the common environment. It exits the process on failure.
func InitFromFlags(cmd *cobra.Command) *config.Config {
	var configFile string
	if f := cmd.Flag("config"); f != nil {
		configFile = f.Value.String()
	}
	// Initialize config.
	cfg, err := config.InitConfig(configFile)
	if err != nil {
		log.NewDefaultLogger("init").Error("init failed",
			"error", err,
		)
		os.Exit(1)
	}

	// Initialize common environment.
	if err = Init(cmd.Context(), cfg); err != nil {
		log.NewDefaultLogger("init").Error("init failed",
			"error", err,
		)
		os.Exit(1)
	}
	return cfg
}
