package common

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/cristhianchimbo50/sri-extractor/internal/accounting"
	"github.com/cristhianchimbo50/sri-extractor/internal/logging"
	"github.com/cristhianchimbo50/sri-extractor/internal/models"
	"github.com/cristhianchimbo50/sri-extractor/internal/parsererror"
	"github.com/cristhianchimbo50/sri-extractor/internal/portal"
	"github.com/cristhianchimbo50/sri-extractor/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	_, statErr := os.Stat("/definitely/not/here")
	tests := []struct {
		name string
		err  error
		want Subsystem
	}{
		{"db error", fmt.Errorf("load: %w", &accounting.DBError{Op: "ping", Err: errors.New("refused")}), SubsystemOracle},
		{"not configured", accounting.ErrNotConfigured, SubsystemOracle},
		{"session error", &portal.SessionError{Stage: portal.StageMenu}, SubsystemPortal},
		{"expired", fmt.Errorf("run: %w", portal.ErrSessionExpired), SubsystemPortal},
		{"captcha", portal.ErrCaptchaBlocked, SubsystemPortal},
		{"no saved session", portal.ErrNoSavedSession, SubsystemPortal},
		{"missing folder", storage.ErrNoArchive, SubsystemFilesystem},
		{"path error", statErr, SubsystemFilesystem},
		{"malformed", parsererror.Missing("a.xml", "factura"), SubsystemFilesystem},
		{"other", errors.New("boom"), SubsystemOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestStatus(t *testing.T) {
	assert.Equal(t, "", Status(nil))
	assert.Equal(t, "oracle: oracle connection is not configured", Status(accounting.ErrNotConfigured))

	wrapped := StatusError(portal.ErrCaptchaBlocked)
	assert.True(t, errors.Is(wrapped, portal.ErrCaptchaBlocked))
	assert.Contains(t, wrapped.Error(), "portal: ")
	assert.NoError(t, StatusError(nil))
}

type fakeSource struct {
	suppliers    []models.Supplier
	suppliersErr error
	rows         []models.AccountingMatchRow
	rowsErr      error
}

func (f *fakeSource) Suppliers(context.Context) ([]models.Supplier, error) {
	return f.suppliers, f.suppliersErr
}

func (f *fakeSource) PaymentInvoices(context.Context) ([]models.AccountingMatchRow, error) {
	return f.rows, f.rowsErr
}

func invoices() []models.ReceivedInvoice {
	return []models.ReceivedInvoice{
		{IssuerRUC: "1790012345001", InvoiceNumber: "001-002-000000123", TransactionNumber: "stale"},
		{IssuerRUC: "0990000000001", InvoiceNumber: "001-001-000000001"},
	}
}

func TestAnnotate_Success(t *testing.T) {
	inv := invoices()
	src := &fakeSource{
		suppliers: []models.Supplier{{RUC: "1790012345001", Name: "ACME"}},
		rows:      []models.AccountingMatchRow{{TransactionNumber: "1001", PurchaseDocument: "001002000000123"}},
	}
	res := Annotate(context.Background(), src, nil, inv, &logging.MockLogger{})

	assert.Empty(t, res.Warnings)
	assert.Equal(t, 1, res.Summary.Matched)
	assert.Equal(t, 1, res.Summary.Unmatched)
	assert.Equal(t, 1, res.Suppliers)
	assert.Equal(t, "1001", inv[0].TransactionNumber)
	assert.True(t, inv[0].SupplierExists)
	assert.False(t, inv[1].SupplierExists)
}

func TestAnnotate_FailuresBecomeWarnings(t *testing.T) {
	inv := invoices()
	src := &fakeSource{
		suppliersErr: &accounting.DBError{Code: 942, Message: "table or view does not exist"},
		rowsErr:      &accounting.DBError{Op: "payment invoices query", Err: errors.New("timeout")},
	}
	logger := &logging.MockLogger{}
	res := Annotate(context.Background(), src, nil, inv, logger)

	require.Len(t, res.Warnings, 2)
	assert.Equal(t, "oracle: Oracle ORA-942: table or view does not exist", res.Warnings[0])
	assert.Equal(t, 2, res.Summary.Unmatched)
	assert.Empty(t, inv[0].TransactionNumber, "stale accounting data is cleared")
	assert.Len(t, logger.GetEntriesByLevel("WARN"), 2)
}

func TestAnnotate_SourceUnavailable(t *testing.T) {
	inv := invoices()
	res := Annotate(context.Background(), nil, accounting.ErrNotConfigured, inv, &logging.MockLogger{})
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, 2, res.Summary.Unmatched)
	assert.Empty(t, inv[0].TransactionNumber)
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	PrintSummary(&buf, ReconcileResult{Warnings: []string{"oracle: down"}})
	assert.Equal(t, "matched: 0, unmatched: 0, known suppliers: 0\noracle: down\n", buf.String())
}
