package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/cristhianchimbo50/sri-extractor/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleInvoices() []models.ReceivedInvoice {
	return []models.ReceivedInvoice{
		{
			Seq: 1, IssuerRUC: "1790012345001", IssuerName: "ACME, S.A.", InvoiceNumber: "001-002-000000123",
			EmissionDate: "2025-03-05", AccessKey: "KEY1", XMLPath: "/x/a.xml",
			TransactionNumber: "1001", RetentionSequence: "1200", Matched: true, SupplierExists: true,
		},
		{Seq: 2, IssuerRUC: "0990000000001", IssuerName: "OTRO", InvoiceNumber: "001-001-000000001"},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatTable, false},
		{"table", FormatTable, false},
		{" CSV ", FormatCSV, false},
		{"json", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInvoiceRows(t *testing.T) {
	rows := InvoiceRows(sampleInvoices())
	require.Len(t, rows, 2)

	assert.Equal(t, "1001", rows[0].Transaction)
	assert.Equal(t, models.NotValidated, rows[0].Retention, "sequences below the floor are not validated")
	assert.Equal(t, "SI", rows[0].Matched)

	assert.Equal(t, models.NoRecord, rows[1].Transaction)
	assert.Equal(t, models.NoRecord, rows[1].Retention)
	assert.Equal(t, "NO", rows[1].Matched)
	assert.Equal(t, "NO", rows[1].SupplierExists)
}

func TestRender_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatCSV, InvoiceRows(sampleInvoices())))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "seq,ruc,issuer,invoice,emission,transaction,retention,matched,supplier,access_key,xml", lines[0])
	assert.Contains(t, lines[1], `"ACME, S.A."`)
}

func TestRender_Table(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatTable, ProviderRows([]models.DisabledIssuerEntry{
		{RUC: "1790012345001", Name: "ACME", Disabled: true},
		{RUC: "2", Name: "B\tC", Disabled: false},
	})))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "RUC"))
	assert.Contains(t, lines[0], "DISABLED")
	assert.Equal(t, strings.Index(lines[0], "NAME"), strings.Index(lines[1], "ACME"), "columns are aligned")
	assert.Contains(t, lines[2], "B C")
}

func TestRender_EmptyTableHasHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatTable, []SupplierRow(nil)))
	assert.Contains(t, buf.String(), "RUC")
}

func TestRender_JSONAndYAML(t *testing.T) {
	rows := SupplierRows([]models.Supplier{{RUC: "1", Name: "Uno"}})

	var js bytes.Buffer
	require.NoError(t, Render(&js, FormatJSON, rows))
	var decoded []SupplierRow
	require.NoError(t, json.Unmarshal(js.Bytes(), &decoded))
	assert.Equal(t, rows, decoded)

	var ym bytes.Buffer
	require.NoError(t, Render(&ym, FormatYAML, rows))
	var fromYAML []SupplierRow
	require.NoError(t, yaml.Unmarshal(ym.Bytes(), &fromYAML))
	assert.Equal(t, rows, fromYAML)

	var empty bytes.Buffer
	require.NoError(t, Render(&empty, FormatJSON, []SupplierRow(nil)))
	assert.Equal(t, "[]\n", empty.String())
}

func TestRender_UnknownFormat(t *testing.T) {
	assert.Error(t, Render(&bytes.Buffer{}, Format("pdf"), []SupplierRow{}))
}

func TestHeaderAndTotals(t *testing.T) {
	h := models.InvoiceHeader{
		IssuerRUC:     "1790012345001",
		InvoiceNumber: "001-002-000000123",
		EmissionDate:  time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC),
		Total:         decimal.RequireFromString("121.9"),
	}
	fields := HeaderFields(h)
	assert.Equal(t, Field{"FECHA EMISION", "05/03/2025"}, fields[4])
	assert.Equal(t, Field{"FECHA AUTORIZACION", ""}, fields[7])

	totals := TotalFields(h)
	require.Len(t, totals, 7)
	assert.Equal(t, Field{"VALOR TOTAL", "121.90"}, totals[6])
	assert.Equal(t, "0.00", totals[0].Value)
}

func TestItemRows(t *testing.T) {
	rows := ItemRows([]models.AggregatedLineItem{{
		AuxiliaryCode: "AUX", Description: "Clavos", Lines: 2,
		Quantity:     decimal.RequireFromString("1.5"),
		UnitPrice:    decimal.RequireFromString("3.333333"),
		NetUnitPrice: decimal.RequireFromString("3"),
		LineTotal:    decimal.RequireFromString("5"),
	}})
	require.Len(t, rows, 1)
	assert.Equal(t, "AUX", rows[0].Code, "auxiliary code when principal is blank")
	assert.Equal(t, "1.5", rows[0].Quantity)
	assert.Equal(t, "3.3333", rows[0].UnitPrice)
	assert.Equal(t, "3.0000", rows[0].NetUnitPrice)
	assert.Equal(t, "5.00", rows[0].LineTotal)
}

func TestRetentionSummary(t *testing.T) {
	assert.Nil(t, RetentionSummary(nil))

	rows := []models.RetentionDetailRow{
		{TransactionNumber: "1001", RetentionSequence: "900", Subtotal: decimal.RequireFromString("100.50"), Total: decimal.RequireFromString("115")},
		{TransactionNumber: "1001", RetentionSequence: "ignored"},
	}
	summary := RetentionSummary(rows)
	assert.Equal(t, Field{"TRANSACCION", "1001"}, summary[0])
	assert.Equal(t, Field{"RETENCION", models.LargeTaxpayer}, summary[1])
	assert.Equal(t, Field{"SUBTOTAL", "100.5"}, summary[4])
	assert.Equal(t, Field{"TOTAL", "115"}, summary[7])

	lines := RetentionRows(rows)
	require.Len(t, lines, 2)
	assert.Equal(t, "0", lines[1].Quantity)
}

func TestPaymentRows(t *testing.T) {
	rows := PaymentRows([]models.AccountingMatchRow{{TransactionNumber: "1", RetentionSequence: models.LargeTaxpayer, ClassificationCode: "0"}})
	require.Len(t, rows, 1)
	assert.Equal(t, models.LargeTaxpayer, rows[0].Retention)
	assert.Equal(t, "0", rows[0].RF1)
}
