package main

import (
	"fmt"
	"os"

	"microlearn/internal/config"
	"microlearn/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	_ = logger.Sync()
}

type rootOptions struct {
	server  string
	logFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "microlearn",
		Short:         "Generate learning bundles and study them in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return setupLogger(opts.logFile)
		},
	}
	root.PersistentFlags().StringVar(&opts.server, "server", "", "API base URL (defaults to client.base_url)")
	root.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "write logs to this file instead of stderr")

	root.AddCommand(newGenerateCmd(opts))
	root.AddCommand(newStudyCmd(opts))
	return root
}

// setupLogger keeps stdout free for command output and the terminal UI.
func setupLogger(path string) error {
	zcfg := zap.NewDevelopmentConfig()
	zcfg.DisableStacktrace = true
	zcfg.OutputPaths = []string{"stderr"}
	if path != "" {
		zcfg.OutputPaths = []string{path}
	}
	l, err := zcfg.Build()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	logger.Set(l)
	return nil
}

func loadConfig(opts *rootOptions) (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if opts.server != "" {
		cfg.Client.BaseURL = opts.server
	}
	return cfg, nil
}
