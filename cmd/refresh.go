package cmd

import (
	"context"
	"fmt"

	"github.com/bnema/packybar/internal/application"
	"github.com/spf13/cobra"
)

func newRefreshCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Force one refresh cycle and print the resulting title",
		RunE: func(cmd *cobra.Command, _ []string) error {
			refresher := app.refresher()

			if err := runFetchSpinner(cmd.Context(), cmd.ErrOrStderr(), "Fetching usage...", func(ctx context.Context) error {
				return refresher.Refresh(ctx, true)
			}); err != nil {
				return err
			}

			snapshot, _ := refresher.Snapshot()
			settings := app.loadSettings()
			state := application.Derive(snapshot, settings, app.now())

			_, err := fmt.Fprintln(cmd.OutOrStdout(), application.Title(state, settings))
			return err
		},
	}
}
