package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "packybar",
		Short:         "PackyCode usage in your menu bar",
		Long:          "packybar polls the PackyCode billing API, renders budget usage as a status-bar title, menu fields and a progress-ring icon, and ships a manual self-updater.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newStatusCmd(app),
		newRefreshCmd(app),
		newConfigCmd(app),
		newUpdateCmd(app),
		newDashboardCmd(app),
		newRunCmd(app),
	)

	return rootCmd
}
