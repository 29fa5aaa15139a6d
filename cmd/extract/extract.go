// Package extract handles the received-invoices download command
package extract

import (
	"context"
	"fmt"
	"io"

	"github.com/cristhianchimbo50/sri-extractor/cmd/common"
	"github.com/cristhianchimbo50/sri-extractor/cmd/root"
	"github.com/cristhianchimbo50/sri-extractor/internal/container"
	"github.com/cristhianchimbo50/sri-extractor/internal/dateutils"
	"github.com/cristhianchimbo50/sri-extractor/internal/report"

	"github.com/spf13/cobra"
)

var date string

// Cmd represents the extract command
var Cmd = &cobra.Command{
	Use:   "extract",
	Short: "Download the invoices received on a date",
	Long: `Download the invoices received on a date using the saved portal session,
skip disabled issuers, reconcile the result against the accounting database
and print the listing.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		out, closeOut, err := root.OpenOutput(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = closeOut() }()
		return Run(cmd.Context(), c, out, cmd.ErrOrStderr(), root.GetFormat(), date)
	},
}

func init() {
	Cmd.Flags().StringVarP(&date, "date", "d", "", "Date to extract (YYYY-MM-DD)")
	_ = Cmd.MarkFlagRequired("date")
}

// Run extracts, reconciles and renders the invoices of day.
func Run(ctx context.Context, c *container.Container, out, status io.Writer, format report.Format, day string) error {
	d, err := dateutils.ParseQueryDate(day)
	if err != nil {
		return err
	}

	invoices, stats, err := c.GetExtractor().ExtractWithStats(ctx, c.GetLayout().SessionStatePath(), d.Year(), int(d.Month()), d.Day())
	if err != nil {
		return common.StatusError(err)
	}
	_, _ = fmt.Fprintf(status, "portal rows: %d, downloaded: %d, already archived: %d, disabled: %d, failed: %d\n",
		stats.Rows, stats.Downloaded, stats.Existing, stats.Disabled, stats.Failed)

	res := common.AnnotateWith(ctx, c, invoices)
	common.PrintSummary(status, res)

	return report.Render(out, format, report.InvoiceRows(invoices))
}
