package edudash

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mwiater/edudash/internal/appconfig"
	"github.com/mwiater/edudash/internal/charts"
	"github.com/mwiater/edudash/internal/dashboard"
	"github.com/mwiater/edudash/internal/export"
	"github.com/mwiater/edudash/internal/results"
	"github.com/mwiater/edudash/internal/upload"
	"github.com/mwiater/edudash/internal/util"
	"github.com/spf13/cobra"
)

const (
	formatHTML = "html"
	formatPNG  = "png"
)

var (
	exportPayload string
	exportCSV     string
	exportYear    string
	exportFormat  string
	exportOut     string
)

// exportCmd renders every chart of a payload to files.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render every dashboard chart to an HTML page or PNG files",
	Long: `Render every dashboard chart to files. The payload comes from a JSON file
saved with 'upload --save', or from a CSV uploaded to the server first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		out := cmd.OutOrStdout()
		if exportFormat != formatHTML && exportFormat != formatPNG {
			return fmt.Errorf("unknown format %q (want %s or %s)", exportFormat, formatHTML, formatPNG)
		}

		layout, err := loadLayout()
		if err != nil {
			return err
		}
		w, h := cfg.ChartSize()
		var lib charts.Library = export.NewHTML(w, h)
		if exportFormat == formatPNG {
			lib = export.NewPNG(w, h)
		}
		ctrl, err := dashboard.NewController(layout, lib)
		if err != nil {
			return err
		}

		outcome, err := loadExportSource(cmd.Context(), cfg, ctrl)
		printNotice(out, outcome.Notice)
		if err != nil {
			return err
		}
		if outcome.Kind != results.Populated {
			return fmt.Errorf("nothing to export: %s", outcome.Notice.Text)
		}
		if err := ctrl.ActivateAll(); err != nil {
			return err
		}

		if exportFormat == formatPNG {
			dir := exportOut
			if dir == "" {
				dir = cfg.ExportDirectory()
			}
			written, skipped, err := export.WritePNGs(dir, ctrl)
			if err != nil {
				return err
			}
			for _, path := range written {
				fmt.Fprintln(out, path)
			}
			for _, slot := range skipped {
				fmt.Fprintf(out, "skipped %s (no data)\n", slot)
			}
			return nil
		}

		path := exportOut
		if path == "" {
			path = filepath.Join(cfg.ExportDirectory(), "dashboard.html")
		}
		var buf bytes.Buffer
		n, err := export.WritePage(&buf, ctrl)
		if err != nil {
			return err
		}
		if err := util.WriteFile(path, buf.Bytes()); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		fmt.Fprintf(out, "%s (%d charts)\n", path, n)
		return nil
	},
}

// loadExportSource ingests the payload named by --payload, or uploads --csv.
func loadExportSource(ctx context.Context, cfg *appconfig.Config, ctrl *dashboard.Controller) (results.Outcome, error) {
	if exportCSV != "" {
		_, outcome, err := runUpload(ctx, ctrl, upload.NewClient(cfg), exportCSV, exportYear)
		return outcome, err
	}
	raw, err := os.ReadFile(exportPayload)
	if err != nil {
		return results.Failure(err), err
	}
	if err := upload.CheckPayload(raw); err != nil {
		return results.Failure(err), err
	}
	var r results.AggregateResult
	if err := json.Unmarshal(raw, &r); err != nil {
		err = fmt.Errorf("decode %s: %w", exportPayload, err)
		return results.Failure(err), err
	}
	return ctrl.Ingest(&r), nil
}

func init() {
	exportCmd.Flags().StringVar(&exportPayload, "payload", "", "payload JSON file saved by 'upload --save'")
	exportCmd.Flags().StringVar(&exportCSV, "csv", "", "CSV file to upload before exporting")
	exportCmd.Flags().StringVarP(&exportYear, "year", "y", "", "academic year for --csv")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", formatHTML, "output format: html or png")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (html) or directory (png); defaults under exportDir")
	exportCmd.MarkFlagsMutuallyExclusive("payload", "csv")
	exportCmd.MarkFlagsOneRequired("payload", "csv")
	rootCmd.AddCommand(exportCmd)
}
