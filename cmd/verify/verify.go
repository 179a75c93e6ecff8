// Package verify implements the verify sub-command.
package verify

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/superbridgeapp/superchain-token-list/cmd/common"
	"github.com/superbridgeapp/superchain-token-list/config"
	"github.com/superbridgeapp/superchain-token-list/evm"
	"github.com/superbridgeapp/superchain-token-list/log"
	"github.com/superbridgeapp/superchain-token-list/verifier"
)

const (
	moduleName = "verify"
)

var (
	// Also compare decimals() of every deployment with its data file.
	checkDecimals bool

	verifyCmd = &cobra.Command{
		Use:   "verify [files...]",
		Short: "Verify the bridge pairs declared by data files",
		Long: `Verify the bridge pairs declared by data files. Paths that are not .json
files inside the data directory are ignored. Without arguments, every data
file is verified.`,
		Run: runVerify,
	}
)

// ErrVerificationFailed is returned when at least one check failed.
var ErrVerificationFailed = errors.New("verification failed")

func runVerify(cmd *cobra.Command, args []string) {
	cfg := common.InitFromFlags(cmd)
	logger := common.RootLogger().WithModule(moduleName)

	if err := run(cmd.Context(), cfg, args, logger); err != nil {
		logger.Error("verify failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, paths []string, logger *log.Logger) error {
	registry, err := common.NewRegistry(cfg)
	if err != nil {
		return err
	}
	source, err := common.NewSource(cfg, registry)
	if err != nil {
		return err
	}
	defer source.Close()

	return Run(ctx, cfg, source, paths, checkDecimals, logger)
}

// Run verifies the given data files, or all of them when paths is empty. It
// returns ErrVerificationFailed when any check failed.
func Run(ctx context.Context, cfg *config.Config, source evm.Source, paths []string, checkDecimals bool, logger *log.Logger) error {
	report, err := verifier.New(source, cfg.Paths.DataDir, checkDecimals, logger).Verify(ctx, paths)
	if err != nil {
		return err
	}
	checked := 0
	for i := range report.Files {
		if !report.Files[i].Ignored {
			checked++
		}
	}
	if report.Failed() {
		return ErrVerificationFailed
	}
	logger.Info("all checks passed", "files", checked)
	return nil
}

// Register registers the verify sub-command.
func Register(parentCmd *cobra.Command) {
	verifyCmd.Flags().BoolVar(&checkDecimals, "check-decimals", false, "also check decimals() against the data files")
	parentCmd.AddCommand(verifyCmd)
}
