package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/barkeep-io/barkeep/internal/config"
	"github.com/barkeep-io/barkeep/internal/rpc"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "View and change settings",
	Long: `View and change Barkeep settings.

Settings live in ~/.barkeep/settings.yaml. A running daemon picks up changes
automatically.`,
}

var settingsGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print current settings",
	RunE:  runSettingsGet,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Long: `Change a setting.

Keys:
  icon-style      "chevron" or "dot"
  show-dividers   "true" or "false"
  always-hidden   "true" or "false"`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
}

func runSettingsGet(cmd *cobra.Command, args []string) error {
	settings, err := config.LoadSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	fmt.Printf("icon-style:      %s\n", settings.Appearance.IconStyle)
	fmt.Printf("show-dividers:   %t\n", settings.Appearance.ShowDividers)
	fmt.Printf("always-hidden:   %t\n", settings.Sections.AlwaysHiddenEnabled)
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	settings, err := config.LoadSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	switch key {
	case "icon-style":
		if value != "chevron" && value != "dot" {
			return fmt.Errorf("invalid icon style %q (expected chevron or dot)", value)
		}
		settings.Appearance.IconStyle = value

	case "show-dividers":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value %q for show-dividers", value)
		}
		settings.Appearance.ShowDividers = v

	case "always-hidden":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value %q for always-hidden", value)
		}
		settings.Sections.AlwaysHiddenEnabled = v

	default:
		return fmt.Errorf("unknown setting %q", key)
	}

	if err := config.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	// A running daemon notices the file change on its own; the always-hidden
	// flag is also applied over RPC so the bar reshapes immediately.
	if key == "always-hidden" {
		if running, _, err := config.IsDaemonRunning(); err == nil && running {
			if conn, err := connectDaemon(); err == nil {
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				_ = rpc.NewStatusBarClient(conn).SetAlwaysHidden(ctx, settings.Sections.AlwaysHiddenEnabled)
				cancel()
				_ = conn.Close()
			}
		}
	}

	fmt.Printf("Set %s to %s.\n", key, value)
	return nil
}
