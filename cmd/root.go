// Package cmd implements the taskly command-line interface.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"taskly/config"
)

const version = "v0.1.0"

// app carries state shared by subcommands once the root has loaded config.
type app struct {
	configFile string
	cfg        config.Config
}

// NewRootCmd creates the top-level "taskly" command with all subcommands.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "taskly",
		Short: "Taskly is a per-user task bucket backend",
		Long: `Taskly stores each user's tasks in one document with three buckets
(todo, inProgress, completed) and serves them over HTTP.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			cfg, err := config.Load(a.configFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			a.cfg = cfg
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (default: ./taskly.yaml if present)")

	root.AddCommand(newServeCmd(a))
	root.AddCommand(newTasksCmd(a))
	root.AddCommand(newPingCmd(a))
	root.AddCommand(newVersionCmd())
	return root
}

func Execute() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "taskly "+version)
		},
	}
}
