package edudash

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/k0kubun/pp"
	"github.com/mwiater/edudash/internal/charts"
	"github.com/mwiater/edudash/internal/dashboard"
	"github.com/mwiater/edudash/internal/results"
	"github.com/mwiater/edudash/internal/tui"
	"github.com/mwiater/edudash/internal/upload"
	"github.com/mwiater/edudash/internal/util"
	"github.com/spf13/cobra"
)

var (
	uploadYear    string
	uploadDump    bool
	uploadSave    string
	uploadSubject string
)

var (
	successNotice = color.New(color.FgGreen).SprintFunc()
	failedNotice  = color.New(color.FgRed).SprintFunc()
	infoNotice    = color.New(color.FgCyan).SprintFunc()
)

// uploadCmd sends one CSV to the server and reports what every tab would show.
var uploadCmd = &cobra.Command{
	Use:   "upload FILE",
	Short: "Upload a CSV file and summarize the resulting charts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		out := cmd.OutOrStdout()

		layout, err := loadLayout()
		if err != nil {
			return err
		}
		lib := newSummaryLibrary()
		ctrl, err := dashboard.NewController(layout, lib)
		if err != nil {
			return err
		}

		resp, outcome, err := runUpload(cmd.Context(), ctrl, upload.NewClient(cfg), args[0], uploadYear)
		printNotice(out, outcome.Notice)
		if err != nil {
			return err
		}

		if uploadSave != "" {
			if err := util.WriteFile(uploadSave, resp.Raw); err != nil {
				return fmt.Errorf("save payload: %w", err)
			}
			fmt.Fprintf(out, "Payload saved to %s\n", uploadSave)
		}
		if uploadDump {
			pp.Fprintln(out, resp.Result)
		}
		if outcome.Kind != results.Populated {
			return nil
		}

		if uploadSubject != "" {
			_ = ctrl.Dispatch(dashboard.ChangeFilter{Value: uploadSubject})
		}
		if err := ctrl.ActivateAll(); err != nil {
			return err
		}
		writeSummary(out, ctrl, lib)
		return nil
	},
}

// runUpload drives one upload through the controller the same way the
// dashboard form does. The outcome always carries the notice to show.
func runUpload(ctx context.Context, ctrl *dashboard.Controller, uploader tui.Uploader, path, yearText string) (*upload.Response, results.Outcome, error) {
	year, err := ctrl.BeginUpload(path, yearText)
	if err != nil {
		return nil, results.Outcome{Kind: results.Failed, Notice: ctrl.Notice()}, err
	}
	resp, err := uploader.Upload(ctx, path, year)
	var r *results.AggregateResult
	if resp != nil {
		r = resp.Result
	}
	outcome := ctrl.FinishUpload(r, err)
	if err != nil {
		return nil, outcome, err
	}
	return resp, outcome, nil
}

func printNotice(w io.Writer, n results.Notice) {
	if n.Text == "" {
		return
	}
	switch n.Level {
	case results.LevelSuccess:
		fmt.Fprintln(w, successNotice(n.Text))
	case results.LevelError:
		fmt.Fprintln(w, failedNotice(n.Text))
	default:
		fmt.Fprintln(w, infoNotice(n.Text))
	}
}

// summaryLibrary keeps a one-line description of every drawn slot.
type summaryLibrary struct {
	drawn map[string]string
}

func newSummaryLibrary() *summaryLibrary {
	return &summaryLibrary{drawn: make(map[string]string)}
}

func (l *summaryLibrary) Create(slotID string, d charts.Drawable) (charts.Handle, error) {
	l.drawn[slotID] = charts.Describe(d)
	return slotID, nil
}

func (l *summaryLibrary) Destroy(slotID string, _ charts.Handle) {
	delete(l.drawn, slotID)
}

func writeSummary(w io.Writer, ctrl *dashboard.Controller, lib *summaryLibrary) {
	filter := ctrl.Filter()
	for _, tab := range ctrl.Layout().Tabs {
		fmt.Fprintf(w, "\n%s [%s]\n", tab.Title, tab.ID)
		for _, def := range tab.Charts {
			desc, ok := lib.drawn[def.Slot]
			if !ok {
				desc = "not drawn"
			}
			fmt.Fprintf(w, "  %-45s %s\n", def.Slot, desc)
		}
		if tab.Filter != nil && filter.TabID == tab.ID && len(filter.Options) > 0 {
			fmt.Fprintf(w, "  %s: %s (selected %q)\n", filter.Label, strings.Join(filter.Options, ", "), filter.Selected)
		}
	}
}

func init() {
	uploadCmd.Flags().StringVarP(&uploadYear, "year", "y", "", "academic year of the dataset (e.g., 2023)")
	uploadCmd.Flags().BoolVar(&uploadDump, "dump", false, "pretty print the decoded payload")
	uploadCmd.Flags().StringVar(&uploadSave, "save", "", "write the raw payload JSON to this file")
	uploadCmd.Flags().StringVar(&uploadSubject, "subject", "", "subject area to select in the Special Ed comparison")
	rootCmd.AddCommand(uploadCmd)
}
