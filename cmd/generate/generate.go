// Package generate implements the generate sub-command.
package generate

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/superbridgeapp/superchain-token-list/cmd/common"
	"github.com/superbridgeapp/superchain-token-list/config"
	"github.com/superbridgeapp/superchain-token-list/evm"
	"github.com/superbridgeapp/superchain-token-list/generator"
	"github.com/superbridgeapp/superchain-token-list/log"
	"github.com/superbridgeapp/superchain-token-list/tokenlist"
)

const (
	moduleName = "generate"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the token list from the data files",
	Args:  cobra.NoArgs,
	Run:   runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) {
	cfg := common.InitFromFlags(cmd)
	logger := common.RootLogger().WithModule(moduleName)

	if err := run(cmd.Context(), cfg, logger); err != nil {
		logger.Error("generate failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	registry, err := common.NewRegistry(cfg)
	if err != nil {
		return err
	}
	source, err := common.NewSource(cfg, registry)
	if err != nil {
		return err
	}
	defer source.Close()

	return Run(ctx, cfg, source, logger)
}

// Run reads the data files, generates the token list and writes it.
func Run(ctx context.Context, cfg *config.Config, source evm.Source, logger *log.Logger) error {
	data, err := tokenlist.ReadDataDir(cfg.Paths.DataDir)
	if err != nil {
		return err
	}
	list, err := generator.New(source, &cfg.Generate, &cfg.TokenList, logger).Generate(ctx, data)
	if err != nil {
		return err
	}
	if err := tokenlist.WriteTokenList(cfg.Paths.TokenList, list); err != nil {
		return err
	}
	logger.Info("wrote token list", "path", cfg.Paths.TokenList, "entries", len(list.Tokens))
	return nil
}

// Register registers the generate sub-command.
func Register(parentCmd *cobra.Command) {
	parentCmd.AddCommand(generateCmd)
}
