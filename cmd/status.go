package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	statusbar "github.com/bnema/packybar/internal/adapters/render/statusbar"
	"github.com/bnema/packybar/internal/application"
	"github.com/bnema/packybar/internal/domain"
	"github.com/spf13/cobra"
)

func newStatusCmd(app *app) *cobra.Command {
	var asJSON, cached bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Fetch current usage and print the menu view",
		RunE: func(cmd *cobra.Command, _ []string) error {
			refresher := app.refresher()

			if !cached {
				// A failed fetch still renders: the error surfaces in the
				// status field instead of aborting the command.
				_ = runFetchSpinner(cmd.Context(), cmd.ErrOrStderr(), "Fetching usage...", func(ctx context.Context) error {
					return refresher.Refresh(ctx, true)
				})
			}

			snapshot, _ := refresher.Snapshot()
			settings := app.loadSettings()

			if asJSON {
				return writeStatusJSON(cmd, snapshot, settings, app)
			}

			rendered, err := app.statusRenderer(snapshot, statusbar.RenderOptions{
				Now:      app.now(),
				Settings: settings,
			})
			if err != nil {
				return fmt.Errorf("render status: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the derived state as JSON")
	cmd.Flags().BoolVar(&cached, "cached", false, "Skip the fetch and render the cached snapshot")

	return cmd
}

type statusOutput struct {
	Title  string
	Fields []string
	State  application.RenderState
}

func writeStatusJSON(cmd *cobra.Command, snapshot domain.Snapshot, settings domain.Settings, app *app) error {
	now := app.now()
	state := application.Derive(snapshot, settings, now)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(statusOutput{
		Title:  application.Title(state, settings),
		Fields: application.MenuFields(state, settings, now),
		State:  state,
	})
}
