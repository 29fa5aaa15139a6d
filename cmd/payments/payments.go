// Package payments handles listing the accounting payment records
package payments

import (
	"context"
	"fmt"
	"io"

	"github.com/cristhianchimbo50/sri-extractor/cmd/common"
	"github.com/cristhianchimbo50/sri-extractor/cmd/root"
	"github.com/cristhianchimbo50/sri-extractor/internal/models"
	"github.com/cristhianchimbo50/sri-extractor/internal/report"

	"github.com/spf13/cobra"
)

// Cmd represents the payments command
var Cmd = &cobra.Command{
	Use:   "payments",
	Short: "List purchase transactions with their payment data",
	Long: `List the purchase transactions of the accounting database with their
withholding sequence, supplier document number and retention codes, the rows
used to reconcile received invoices.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		repo, err := c.GetAccounting()
		if err != nil {
			return common.StatusError(err)
		}
		out, closeOut, err := root.OpenOutput(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = closeOut() }()
		return Run(cmd.Context(), repo, out, cmd.ErrOrStderr(), root.GetFormat())
	},
}

// Source loads payment rows.
type Source interface {
	PaymentInvoices(ctx context.Context) ([]models.AccountingMatchRow, error)
}

// Run renders every payment row.
func Run(ctx context.Context, src Source, out, status io.Writer, format report.Format) error {
	rows, err := src.PaymentInvoices(ctx)
	if err != nil {
		return common.StatusError(err)
	}
	_, _ = fmt.Fprintf(status, "transactions: %d\n", len(rows))
	return report.Render(out, format, report.PaymentRows(rows))
}
