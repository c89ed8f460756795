package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"taskly/store"
)

func newPingCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check connectivity to the configured store",
		RunE: func(cmd *cobra.Command, args []string) error {
			coll, err := store.Open(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}
			defer coll.Close(context.Background())

			if err := ping(cmd.Context(), coll); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s store reachable\n", a.cfg.Store)
			return nil
		},
	}
}
