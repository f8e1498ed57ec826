package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show section visibility",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	client, conn, err := daemonClient()
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	status, err := client.GetStatus(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch status: %w", err)
	}

	fmt.Printf("Barkeep %s (PID %d, port %d)\n", status.Version, status.PID, status.Port)
	fmt.Println("Sections:")
	for _, s := range status.Sections {
		visibility := "shown"
		if s.Hidden {
			visibility = "hidden"
		}
		fmt.Printf("  %-15s %s\n", s.Section, visibility)
	}
	if !status.AlwaysHiddenEnabled {
		fmt.Println("Always-hidden section is disabled.")
	}

	return nil
}
