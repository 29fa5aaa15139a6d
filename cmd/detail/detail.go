// Package detail handles displaying one archived invoice
package detail

import (
	"context"
	"fmt"
	"io"

	"github.com/cristhianchimbo50/sri-extractor/cmd/common"
	"github.com/cristhianchimbo50/sri-extractor/cmd/root"
	"github.com/cristhianchimbo50/sri-extractor/internal/accounting"
	"github.com/cristhianchimbo50/sri-extractor/internal/container"
	"github.com/cristhianchimbo50/sri-extractor/internal/models"
	"github.com/cristhianchimbo50/sri-extractor/internal/reconcile"
	"github.com/cristhianchimbo50/sri-extractor/internal/report"
	"github.com/cristhianchimbo50/sri-extractor/internal/sriparser"

	"github.com/spf13/cobra"
)

// Options selects the optional parts of the detail view.
type Options struct {
	// Retention also loads the withholding record from the accounting
	// database.
	Retention bool
	// Transaction is the accounting transaction number. When blank it is
	// looked up by matching the invoice number.
	Transaction string
}

// PurchaseNotRecorded is reported when no withholding lines exist.
const PurchaseNotRecorded = "purchase not recorded in accounting"

var opts Options

// Cmd represents the detail command
var Cmd = &cobra.Command{
	Use:   "detail <invoice.xml>",
	Short: "Show the header, items and totals of an invoice",
	Long: `Show the header, the line items grouped by product code and the totals of
an authorized invoice XML. With --retention the withholding record of the
matching accounting transaction is shown too.`,
	Args: cobra.ExactArgs(1),
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
		return Run(cmd.Context(), c, out, cmd.ErrOrStderr(), root.GetFormat(), args[0], opts)
	},
}

func init() {
	Cmd.Flags().BoolVarP(&opts.Retention, "retention", "r", false, "Also show the withholding record")
	Cmd.Flags().StringVarP(&opts.Transaction, "transaction", "t", "", "Accounting transaction number (implies --retention)")
}

// Build decodes path into its detail view. Accounting problems are recorded
// in the retention status instead of failing.
func Build(ctx context.Context, c *container.Container, path string, o Options) (report.DetailView, error) {
	header, items, err := sriparser.DecodeFile(path)
	if err != nil {
		return report.DetailView{}, common.StatusError(err)
	}

	view := report.DetailView{
		Header: report.HeaderFields(header),
		Items:  report.ItemRows(sriparser.GroupLineItems(items)),
		Totals: report.TotalFields(header),
	}
	if o.Retention || o.Transaction != "" {
		view.Retention = retention(ctx, c, header, o.Transaction)
	}
	return view, nil
}

func retention(ctx context.Context, c *container.Container, header models.InvoiceHeader, transaction string) *report.RetentionView {
	view := &report.RetentionView{Transaction: reconcile.TransactionDisplay(transaction)}

	repo, err := c.GetAccounting()
	if err != nil {
		view.Status = common.Status(err)
		return view
	}

	if transaction == "" {
		rows, err := repo.PaymentInvoices(ctx)
		if err != nil {
			view.Status = common.Status(err)
			return view
		}
		probe := []models.ReceivedInvoice{{IssuerRUC: header.IssuerRUC, InvoiceNumber: header.InvoiceNumber}}
		reconcile.Match(probe, rows)
		transaction = probe[0].TransactionNumber
		view.Transaction = reconcile.TransactionDisplay(transaction)
	}

	if !accounting.HasTransaction(transaction) {
		view.Status = PurchaseNotRecorded
		return view
	}

	lines, err := repo.RetentionDetail(ctx, transaction)
	if err != nil {
		view.Status = common.Status(err)
		return view
	}
	if len(lines) == 0 {
		view.Status = PurchaseNotRecorded
		return view
	}
	view.Summary = report.RetentionSummary(lines)
	view.Lines = report.RetentionRows(lines)
	return view
}

// Run renders the detail view of path.
func Run(ctx context.Context, c *container.Container, out, status io.Writer, format report.Format, path string, o Options) error {
	view, err := Build(ctx, c, path, o)
	if err != nil {
		return err
	}
	if view.Retention != nil && view.Retention.Status != "" {
		_, _ = fmt.Fprintln(status, view.Retention.Status)
	}

	if format == report.FormatJSON || format == report.FormatYAML {
		return report.Encode(out, format, view)
	}
	return write(out, format, view)
}

func write(out io.Writer, format report.Format, view report.DetailView) error {
	if err := report.Section(out, format, "Invoice", view.Header); err != nil {
		return err
	}
	if err := report.Section(out, format, "Items", view.Items); err != nil {
		return err
	}
	if err := report.Section(out, format, "Totals", view.Totals); err != nil {
		return err
	}
	if view.Retention == nil || view.Retention.Status != "" {
		return nil
	}
	if err := report.Section(out, format, "Retention "+view.Retention.Transaction, view.Retention.Summary); err != nil {
		return err
	}
	return report.Section(out, format, "Retention lines", view.Retention.Lines)
}
