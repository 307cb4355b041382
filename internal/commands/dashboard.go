package edudash

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/mwiater/edudash/internal/logging"
	"github.com/mwiater/edudash/internal/tui"
	"github.com/mwiater/edudash/internal/upload"
	"github.com/spf13/cobra"
)

// dashboardCmd starts the interactive terminal dashboard.
var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Upload a CSV and browse the charts in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		layout, err := loadLayout()
		if err != nil {
			return err
		}
		if err := logging.InitFileOnly(cfg.LogFilePath()); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		logging.LogEvent("[DASHBOARD] start server=%s tabs=%d", cfg.ServerBaseURL(), len(layout.Tabs))
		return tui.Run(ctx, layout, upload.NewClient(cfg))
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
