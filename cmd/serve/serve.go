// Package serve implements the serve sub-command.
package serve

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/superbridgeapp/superchain-token-list/api"
	cmdCommon "github.com/superbridgeapp/superchain-token-list/cmd/common"
	"github.com/superbridgeapp/superchain-token-list/common"
	"github.com/superbridgeapp/superchain-token-list/config"
	"github.com/superbridgeapp/superchain-token-list/log"
)

const (
	moduleName = "serve"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the token list and data files over HTTP",
	Args:  cobra.NoArgs,
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	cfg := cmdCommon.InitFromFlags(cmd)
	logger := cmdCommon.RootLogger().WithModule(moduleName)

	if err := run(cmd.Context(), cfg, logger); err != nil {
		logger.Error("serve failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	registry, err := cmdCommon.NewRegistry(cfg)
	if err != nil {
		return err
	}
	artifacts, err := api.LoadArtifacts(&cfg.Paths, registry)
	if err != nil {
		return err
	}

	endpoint := config.DefaultServerEndpoint
	if cfg.Server != nil {
		endpoint = cfg.Server.Endpoint
	}
	server := &http.Server{
		Addr:              endpoint,
		Handler:           api.NewRouter(artifacts, cmdCommon.NewRequestMetrics(), logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
	logger.Info("starting api service", "endpoint", endpoint, "tokens", len(artifacts.Tokens))
	return common.RunServer(ctx, server, logger)
}

// Register registers the serve sub-command.
func Register(parentCmd *cobra.Command) {
	parentCmd.AddCommand(serveCmd)
}
