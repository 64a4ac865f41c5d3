package main

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"todoboard/internal/config"
	"todoboard/pkg/board"
	"todoboard/pkg/client"
	"todoboard/pkg/logger"
)

// app is shared by every subcommand and filled in before any of them runs.
type app struct {
	store *board.Store
	log   logger.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "todo",
		Short:         "Manage tasks on a todoboard backend",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}
	root.PersistentFlags().String("api", "", "backend base URL (overrides API_BASE)")
	root.PersistentFlags().Bool("debug", false, "log remote calls")

	root.AddCommand(
		newListCommand(a),
		newShowCommand(a),
		newAddCommand(a),
		newEditCommand(a),
		newDoneCommand(a),
		newDeleteCommand(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}
	debug, _ := cmd.Flags().GetBool("debug")
	level := logger.LogLevel(cfg.Log.Level)
	if debug {
		level = logger.DebugLevel
	}
	a.log = logger.New(&logger.Config{
		Level:      level,
		Output:     os.Stderr,
		JSON:       cfg.Log.JSON,
		TimeFormat: time.Kitchen,
	})

	base := cfg.Client.APIBase
	if v, _ := cmd.Flags().GetString("api"); strings.TrimSpace(v) != "" {
		base = v
	}
	remote := client.New(client.Config{
		BaseURL:    base,
		Timeout:    cfg.Client.Timeout,
		ImageField: cfg.Client.ImageField,
	}, a.log)
	a.store = board.NewStore(remote, a.log)
	return nil
}
