package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/barkeep-io/barkeep/internal/rpc"
	"github.com/barkeep-io/barkeep/internal/statusbar"
)

var showCmd = &cobra.Command{
	Use:   "show [section]",
	Short: "Show a section's icons",
	Long: `Show a section's icons. Defaults to the hidden section.

Valid sections: hidden, always-hidden.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSectionAction(args, (*rpc.StatusBarClient).ShowSection)
	},
}

var hideCmd = &cobra.Command{
	Use:   "hide [section]",
	Short: "Hide a section's icons",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSectionAction(args, (*rpc.StatusBarClient).HideSection)
	},
}

var toggleCmd = &cobra.Command{
	Use:   "toggle [section]",
	Short: "Toggle a section between shown and hidden",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSectionAction(args, (*rpc.StatusBarClient).ToggleSection)
	},
}

// sectionArg resolves the optional section argument, defaulting to the
// hidden section, which is the one show/hide/toggle almost always target.
func sectionArg(args []string) (statusbar.Section, error) {
	if len(args) == 0 {
		return statusbar.SectionHidden, nil
	}
	return statusbar.ParseSection(args[0])
}

func runSectionAction(args []string, call func(*rpc.StatusBarClient, context.Context, string) error) error {
	section, err := sectionArg(args)
	if err != nil {
		return err
	}
	if section == statusbar.SectionAlwaysVisible {
		return fmt.Errorf("the always-visible section cannot be hidden")
	}

	client, conn, err := daemonClient()
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return call(client, ctx, section.String())
}
