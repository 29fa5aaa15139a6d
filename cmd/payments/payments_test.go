package payments

import (
	"bytes"
	"context"
	"testing"

	"github.com/cristhianchimbo50/sri-extractor/internal/accounting"
	"github.com/cristhianchimbo50/sri-extractor/internal/models"
	"github.com/cristhianchimbo50/sri-extractor/internal/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	rows []models.AccountingMatchRow
	err  error
}

func (f fakeSource) PaymentInvoices(context.Context) ([]models.AccountingMatchRow, error) {
	return f.rows, f.err
}

func TestRun(t *testing.T) {
	src := fakeSource{rows: []models.AccountingMatchRow{
		{TransactionNumber: "T-100", RetentionSequence: "1234", PurchaseDocument: "001-002-000000123", IssuerRUC: "1790012345001"},
	}}

	var out, status bytes.Buffer
	require.NoError(t, Run(context.Background(), src, &out, &status, report.FormatCSV))
	assert.Equal(t, "transactions: 1\n", status.String())
	assert.Contains(t, out.String(), "T-100")
}

func TestRun_DatabaseError(t *testing.T) {
	var out, status bytes.Buffer
	err := Run(context.Background(), fakeSource{err: &accounting.DBError{Op: "query", Code: 942, Message: "table or view does not exist"}}, &out, &status, report.FormatTable)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oracle:")
}
