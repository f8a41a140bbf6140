package cmd

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/bnema/packybar/internal/domain"
	"github.com/spf13/cobra"
)

func newConfigCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and change settings",
	}

	cmd.AddCommand(
		newConfigPathCmd(app),
		newConfigGetCmd(app),
		newConfigSetCmd(app),
	)

	return cmd
}

func newConfigPathCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), app.settingsStore.Path())
			return err
		},
	}
}

func newConfigGetCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get [key]",
		Short: "Print all settings, or one value",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := app.loadSettings()
			values := settingsValues(settings)

			if len(args) == 0 {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(values)
			}

			value, ok := values[args[0]]
			if !ok {
				return fmt.Errorf("unknown setting %q (known: %s)", args[0], knownKeys())
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(), value)
			return err
		},
	}
}

func newConfigSetCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			setter, ok := settingsSetters[args[0]]
			if !ok {
				return fmt.Errorf("unknown setting %q (known: %s)", args[0], knownKeys())
			}

			// Load errors must surface here: saving on top of a file that
			// failed to read would replace it with defaults.
			settings, err := app.settingsStore.Load()
			if err != nil {
				return fmt.Errorf("load settings: %w", err)
			}

			if err := setter(&settings, args[1]); err != nil {
				return fmt.Errorf("set %s: %w", args[0], err)
			}

			if err := app.settingsStore.Save(settings); err != nil {
				return fmt.Errorf("save settings: %w", err)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], args[1])
			return err
		},
	}
}

var settingsSetters = map[string]func(*domain.Settings, string) error{
	"account":               func(s *domain.Settings, v string) error { s.Account = v; return checkEnum(v, domain.AccountShared, domain.AccountPrivate, domain.AccountCodex) },
	"token":                 func(s *domain.Settings, v string) error { s.Token = domain.Credential(v); return nil },
	"hidden":                func(s *domain.Settings, v string) error { return parseBool(v, &s.Hidden) },
	"poll_interval_seconds": func(s *domain.Settings, v string) error { return parsePositiveInt(v, &s.PollIntervalSeconds) },
	"title_mode":            func(s *domain.Settings, v string) error { s.TitleMode = v; return checkEnum(v, domain.TitleModePercent, domain.TitleModeCustom) },
	"title_template":        func(s *domain.Settings, v string) error { s.TitleTemplate = v; return nil },
	"title_requests":        func(s *domain.Settings, v string) error { return parseBool(v, &s.TitleRequests) },
	"ring_enabled":          func(s *domain.Settings, v string) error { return parseBool(v, &s.RingEnabled) },
	"ring_colored":          func(s *domain.Settings, v string) error { return parseBool(v, &s.RingColored) },
	"ring_color_mode":       func(s *domain.Settings, v string) error { s.RingColorMode = v; return checkEnum(v, domain.RingColorThreshold, domain.RingColorGradient, domain.RingColorFlat) },
	"ring_reverse":          func(s *domain.Settings, v string) error { return parseBool(v, &s.RingReverse) },
	"ring_label":            func(s *domain.Settings, v string) error { s.RingLabel = v; return checkEnum(v, domain.RingLabelNone, domain.RingLabelPercent, domain.RingLabelRequests, domain.RingLabelSpent) },
	"ring_label_tag":        func(s *domain.Settings, v string) error { return parseBool(v, &s.RingLabelTag) },
	"language":              func(s *domain.Settings, v string) error { s.Language = v; return checkEnum(v, domain.LanguageEN, domain.LanguageZH) },
	"update_signer":         func(s *domain.Settings, v string) error { s.UpdateSigner = v; return nil },
}

func settingsValues(s domain.Settings) map[string]string {
	return map[string]string{
		"account":               s.Account,
		"token":                 string(s.Token),
		"hidden":                strconv.FormatBool(s.Hidden),
		"poll_interval_seconds": strconv.Itoa(s.PollIntervalSeconds),
		"title_mode":            s.TitleMode,
		"title_template":        s.TitleTemplate,
		"title_requests":        strconv.FormatBool(s.TitleRequests),
		"ring_enabled":          strconv.FormatBool(s.RingEnabled),
		"ring_colored":          strconv.FormatBool(s.RingColored),
		"ring_color_mode":       s.RingColorMode,
		"ring_reverse":          strconv.FormatBool(s.RingReverse),
		"ring_label":            s.RingLabel,
		"ring_label_tag":        strconv.FormatBool(s.RingLabelTag),
		"language":              s.Language,
		"update_signer":         s.UpdateSigner,
	}
}

func knownKeys() string {
	keys := make([]string, 0, len(settingsSetters))
	for key := range settingsSetters {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	return strings.Join(keys, ", ")
}

func checkEnum(value string, allowed ...string) error {
	for _, candidate := range allowed {
		if value == candidate {
			return nil
		}
	}
	return fmt.Errorf("value %q is not one of %v", value, allowed)
}

func parseBool(value string, dest *bool) error {
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("expected true or false, got %q", value)
	}
	*dest = parsed
	return nil
}

func parsePositiveInt(value string, dest *int) error {
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return fmt.Errorf("expected a positive integer, got %q", value)
	}
	*dest = parsed
	return nil
}
