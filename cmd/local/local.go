// Package local handles listing the archived invoices of a date
package local

import (
	"context"
	"errors"
	"io"

	"github.com/cristhianchimbo50/sri-extractor/cmd/common"
	"github.com/cristhianchimbo50/sri-extractor/cmd/root"
	"github.com/cristhianchimbo50/sri-extractor/internal/container"
	"github.com/cristhianchimbo50/sri-extractor/internal/dateutils"
	"github.com/cristhianchimbo50/sri-extractor/internal/models"
	"github.com/cristhianchimbo50/sri-extractor/internal/report"
	"github.com/cristhianchimbo50/sri-extractor/internal/storage"

	"github.com/spf13/cobra"
)

var date string

// Cmd represents the local command
var Cmd = &cobra.Command{
	Use:   "local",
	Short: "List the archived invoices of a date",
	Long: `List the invoices of a date already present in the local archive, without
contacting the portal, reconciled against the accounting database.`,
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
	Cmd.Flags().StringVarP(&date, "date", "d", "", "Date to list (YYYY-MM-DD)")
	_ = Cmd.MarkFlagRequired("date")
}

// Run lists, reconciles and renders the archived invoices of day. A date with
// no archive folder renders an empty listing and a filesystem status line.
func Run(ctx context.Context, c *container.Container, out, status io.Writer, format report.Format, day string) error {
	d, err := dateutils.ParseQueryDate(day)
	if err != nil {
		return err
	}

	invoices, err := c.GetArchive().ListDate(d.Year(), int(d.Month()), d.Day())
	switch {
	case errors.Is(err, storage.ErrNoArchive):
		_, _ = io.WriteString(status, common.Status(err)+"\n")
		invoices = []models.ReceivedInvoice{}
	case err != nil:
		return common.StatusError(err)
	default:
		res := common.AnnotateWith(ctx, c, invoices)
		common.PrintSummary(status, res)
	}

	return report.Render(out, format, report.InvoiceRows(invoices))
}
