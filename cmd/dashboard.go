package cmd

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/bnema/packybar/internal/domain"
	"github.com/spf13/cobra"
)

func newDashboardCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Open the account dashboard in the browser",
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings := app.loadSettings()
			env := domain.EnvironmentFor(settings.Account)

			opener := envOrDefault("PACKYBAR_OPEN_CMD", defaultOpener())
			if err := exec.CommandContext(cmd.Context(), opener, env.DashboardURL).Run(); err != nil {
				return fmt.Errorf("open dashboard: %w", err)
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Opened %s\n", env.DashboardURL)
			return err
		},
	}
}

func defaultOpener() string {
	if runtime.GOOS == "darwin" {
		return "open"
	}
	return "xdg-open"
}
