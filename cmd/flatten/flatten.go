// Package flatten implements the flatten sub-command.
package flatten

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/superbridgeapp/superchain-token-list/cmd/common"
	"github.com/superbridgeapp/superchain-token-list/config"
	"github.com/superbridgeapp/superchain-token-list/log"
	"github.com/superbridgeapp/superchain-token-list/tokenlist"
)

const (
	moduleName = "flatten"
)

var flattenCmd = &cobra.Command{
	Use:   "flatten",
	Short: "Write one data file per token of the token list",
	Args:  cobra.NoArgs,
	Run:   runFlatten,
}

func runFlatten(cmd *cobra.Command, args []string) {
	cfg := common.InitFromFlags(cmd)
	logger := common.RootLogger().WithModule(moduleName)

	if err := Run(&cfg.Paths, logger); err != nil {
		logger.Error("flatten failed", "err", err)
		os.Exit(1)
	}
}

// Run splits the token list at paths.TokenList into paths.DataDir.
func Run(paths *config.PathsConfig, logger *log.Logger) error {
	list, err := tokenlist.LoadTokenList(paths.TokenList)
	if err != nil {
		return err
	}
	data, err := tokenlist.Flatten(list)
	if err != nil {
		return err
	}
	if err := tokenlist.WriteDataDir(paths.DataDir, data); err != nil {
		return err
	}
	logger.Info("flattened token list",
		"token_list", paths.TokenList,
		"data_dir", paths.DataDir,
		"entries", len(list.Tokens),
		"tokens", len(data),
	)
	return nil
}

// Register registers the flatten sub-command.
func Register(parentCmd *cobra.Command) {
	parentCmd.AddCommand(flattenCmd)
}
