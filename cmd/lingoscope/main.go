package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"lingoscope/pkg/config"
)

var (
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "none"
)

type globalConfig struct {
	envFile string
	cfg     *config.Config
	log     *slog.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "lingoscope: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	g := new(globalConfig)

	root := &cobra.Command{
		Use:           "lingoscope",
		Short:         "Lingo bytecode decompiler and debugger",
		Version:       fmt.Sprintf("%s (built %s, commit %s)", Version, BuildDate, GitCommit),
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(g.envFile)
			if err != nil {
				return err
			}
			g.cfg = cfg
			g.log = cfg.Logger()
			slog.SetDefault(g.log)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&g.envFile, "env", ".env", "load settings from `file`")

	root.AddCommand(
		newTokensCommand(g),
		newDisasmCommand(g),
		newASTCommand(g),
		newInspectCommand(g),
		newRenderCommand(g),
		newBreakpointsCommand(g),
		newConsoleCommand(g),
		newServeCommand(g),
		newHashpwCommand(g),
	)
	return root
}
