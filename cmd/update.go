package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/packybar/internal/domain"
	"github.com/spf13/cobra"
)

func newUpdateCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Check for and install application updates",
	}

	cmd.AddCommand(
		newUpdateCheckCmd(app),
		newUpdateInstallCmd(app),
	)

	return cmd
}

func newUpdateCheckCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report whether a newer release is available",
		RunE: func(cmd *cobra.Command, _ []string) error {
			installer := app.installer(app.loadSettings())

			release, err := installer.Check(cmd.Context())
			if errors.Is(err, domain.ErrNoUpdate) {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "Already up to date.")
				return err
			}
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Update available: %s\n%s\n", release.Tag, release.HTMLURL)
			return err
		},
	}
}

func newUpdateInstallCmd(app *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Download, verify and install the latest release",
		RunE: func(cmd *cobra.Command, _ []string) error {
			installer := app.installer(app.loadSettings())
			installer.Confirm = confirmFunc(cmd, yes)

			release, err := installer.Check(cmd.Context())
			if errors.Is(err, domain.ErrNoUpdate) {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "Already up to date.")
				return err
			}
			if err != nil {
				return err
			}

			scriptPath, err := installer.Stage(cmd.Context(), release)
			if err != nil {
				return err
			}

			if err := installer.Launch(scriptPath); err != nil {
				return err
			}

			// The script waits for this process to exit before swapping.
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Installing %s, quit the app to finish.\n", release.Tag)
			return err
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Skip the confirmation prompts")

	return cmd
}

func confirmFunc(cmd *cobra.Command, yes bool) func(string) bool {
	if yes {
		return func(string) bool { return true }
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	return func(prompt string) bool {
		fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", prompt)

		line, err := reader.ReadString('\n')
		if err != nil {
			return false
		}

		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes"
	}
}
