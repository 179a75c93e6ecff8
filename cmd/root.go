// Package cmd implements commands for the superchain-token-list executable.
package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/superbridgeapp/superchain-token-list/cmd/flatten"
	"github.com/superbridgeapp/superchain-token-list/cmd/generate"
	"github.com/superbridgeapp/superchain-token-list/cmd/serve"
	"github.com/superbridgeapp/superchain-token-list/cmd/verify"
	"github.com/superbridgeapp/superchain-token-list/log"
)

var (
	// Path to the configuration file.
	configFile string

	rootCmd = &cobra.Command{
		Use:   "superchain-token-list",
		Short: "Maintain the Superchain token list",
		Long: `Maintain the Superchain token list: flatten the canonical list into per-token
data files, generate the list back from the data files by reading the bridge
contracts, and verify that declared bridge pairs are consistent on-chain.`,
		SilenceUsage: true,
	}
)

// Execute spawns the main entry point after handing the config file.
func Execute() {
	// Debug hook. If we receive SIGUSR1, dump all goroutines.
	go dumpGoroutinesOnSignal(syscall.SIGUSR1)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to the config.yml file (optional)")

	for _, f := range []func(*cobra.Command){
		flatten.Register,
		generate.Register,
		verify.Register,
		serve.Register,
	} {
		f(rootCmd)
	}
}

// Starts listening for the specified signals, and logs a dump of all
// goroutines when the process receives one of those signals.
func dumpGoroutinesOnSignal(signals ...os.Signal) {
	logger := log.NewDefaultLogger("toplevel")
	c := make(chan os.Signal, 1)
	signal.Notify(c, signals...)
	for range c {
		b := bytes.NewBufferString("")
		_ = pprof.Lookup("goroutine").WriteTo(b, 1)
		logger.Warn("USER-REQUESTED DUMP: all goroutines", "goroutines_all", b.String())
	}
}
