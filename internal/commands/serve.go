package edudash

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/mwiater/edudash/internal/server"
	"github.com/spf13/cobra"
)

// serveCmd runs the analysis API until interrupted.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the CSV analysis server",
	Long:  `Run the HTTP server that accepts CSV uploads on /api/data/upload and answers with the aggregate payload.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return server.New(GetConfig()).ListenAndServe(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
