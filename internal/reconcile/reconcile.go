// Package reconcile joins received invoices against accounting records and
// derives the display values shown for accounting references.
package reconcile

import (
	"strings"

	"github.com/cristhianchimbo50/sri-extractor/internal/models"
)

// Summary counts the outcome of a Match run.
type Summary struct {
	Matched   int
	Unmatched int
}

// DocumentKey normalizes an invoice or purchase-document number for
// comparison: hyphens and surrounding blanks removed, upper-cased.
func DocumentKey(number string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(number), "-", ""))
}

// Match attaches accounting data to each invoice in place. An invoice matches
// the first row whose purchase-document number equals its invoice number once
// both are normalized with DocumentKey. Unmatched invoices, including those
// with a blank number, end up with every accounting field empty.
func Match(invoices []models.ReceivedInvoice, rows []models.AccountingMatchRow) Summary {
	index := make(map[string]int, len(rows))
	for i, row := range rows {
		key := DocumentKey(row.PurchaseDocument)
		if key == "" {
			continue
		}
		if _, seen := index[key]; !seen {
			index[key] = i
		}
	}

	var summary Summary
	for i := range invoices {
		inv := &invoices[i]
		inv.ClearAccounting()

		pos, ok := index[DocumentKey(inv.InvoiceNumber)]
		if !ok {
			summary.Unmatched++
			continue
		}

		row := rows[pos]
		inv.TransactionNumber = row.TransactionNumber
		inv.PurchaseDocument = row.PurchaseDocument
		inv.RetentionSequence = row.RetentionSequence
		inv.AccountingRUC = row.IssuerRUC
		inv.AccountingName = row.IssuerName
		inv.ClassificationCode = row.ClassificationCode
		inv.ClassificationAlt = row.ClassificationAlt
		inv.Matched = true
		summary.Matched++
	}
	return summary
}

// MarkSuppliers flags the invoices whose issuer RUC is present in the
// accounting supplier master. Comparison ignores case and surrounding blanks.
func MarkSuppliers(invoices []models.ReceivedInvoice, suppliers []models.Supplier) int {
	known := make(map[string]struct{}, len(suppliers))
	for _, s := range suppliers {
		if ruc := strings.ToUpper(strings.TrimSpace(s.RUC)); ruc != "" {
			known[ruc] = struct{}{}
		}
	}

	count := 0
	for i := range invoices {
		_, ok := known[strings.ToUpper(strings.TrimSpace(invoices[i].IssuerRUC))]
		invoices[i].SupplierExists = ok
		if ok {
			count++
		}
	}
	return count
}
