package common

import (
	"context"
	"fmt"
	"io"

	"github.com/cristhianchimbo50/sri-extractor/internal/container"
	"github.com/cristhianchimbo50/sri-extractor/internal/logging"
	"github.com/cristhianchimbo50/sri-extractor/internal/models"
	"github.com/cristhianchimbo50/sri-extractor/internal/reconcile"
)

// AccountingSource is the part of the accounting repository used to annotate
// a listing.
type AccountingSource interface {
	Suppliers(ctx context.Context) ([]models.Supplier, error)
	PaymentInvoices(ctx context.Context) ([]models.AccountingMatchRow, error)
}

// ReconcileResult reports what the annotation step managed to do.
type ReconcileResult struct {
	Summary   reconcile.Summary
	Suppliers int
	Warnings  []string
}

// Annotate marks known suppliers and attaches accounting rows to invoices.
// Accounting failures do not abort: they are returned as warnings and the
// listing keeps its portal data. A nil source with sourceErr set records that
// error as the only warning.
func Annotate(ctx context.Context, src AccountingSource, sourceErr error, invoices []models.ReceivedInvoice, logger logging.Logger) ReconcileResult {
	var res ReconcileResult
	if sourceErr != nil || src == nil {
		if sourceErr != nil {
			res.Warnings = append(res.Warnings, Status(sourceErr))
		}
		res.Summary = reconcile.Match(invoices, nil)
		return res
	}

	suppliers, err := src.Suppliers(ctx)
	if err != nil {
		logger.WithError(err).Warn("Supplier master could not be loaded")
		res.Warnings = append(res.Warnings, Status(err))
	} else {
		res.Suppliers = reconcile.MarkSuppliers(invoices, suppliers)
	}

	rows, err := src.PaymentInvoices(ctx)
	if err != nil {
		logger.WithError(err).Warn("Accounting rows could not be loaded")
		res.Warnings = append(res.Warnings, Status(err))
		rows = nil
	}
	res.Summary = reconcile.Match(invoices, rows)

	logger.Info("Reconciliation finished",
		logging.Field{Key: logging.FieldCount, Value: len(invoices)},
		logging.Field{Key: "matched", Value: res.Summary.Matched},
		logging.Field{Key: "suppliers_known", Value: res.Suppliers})
	return res
}

// AnnotateWith runs Annotate against the accounting repository of c.
func AnnotateWith(ctx context.Context, c *container.Container, invoices []models.ReceivedInvoice) ReconcileResult {
	repo, err := c.GetAccounting()
	if err != nil {
		return Annotate(ctx, nil, err, invoices, c.GetLogger())
	}
	return Annotate(ctx, repo, nil, invoices, c.GetLogger())
}

// PrintSummary writes the one-line reconciliation summary and any warnings.
func PrintSummary(w io.Writer, res ReconcileResult) {
	_, _ = fmt.Fprintf(w, "matched: %d, unmatched: %d, known suppliers: %d\n",
		res.Summary.Matched, res.Summary.Unmatched, res.Suppliers)
	for _, warning := range res.Warnings {
		_, _ = fmt.Fprintln(w, warning)
	}
}
