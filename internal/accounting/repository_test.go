package accounting

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/cristhianchimbo50/sri-extractor/internal/logging"
	"github.com/cristhianchimbo50/sri-extractor/internal/models"

	"github.com/shopspring/decimal"
	"github.com/sijms/go-ora/v2/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func str(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

func TestPaymentRecord_Normalize(t *testing.T) {
	tests := []struct {
		name string
		rec  paymentRecord
		want models.AccountingMatchRow
	}{
		{
			name: "trims every column",
			rec: paymentRecord{
				TransactionNumber: str(" 1001 "), RetentionSequence: str(" 000002345 "),
				PurchaseDocument: str("001-002-000000123 "), IssuerRUC: str(" 1790012345001"),
				IssuerName: str(" ACME "), RF1: str("312 "), RF2: str(" 0"),
			},
			want: models.AccountingMatchRow{
				TransactionNumber: "1001", RetentionSequence: "000002345",
				PurchaseDocument: "001-002-000000123", IssuerRUC: "1790012345001",
				IssuerName: "ACME", ClassificationCode: "312", ClassificationAlt: "0",
			},
		},
		{
			name: "blank transaction",
			rec:  paymentRecord{RetentionSequence: str("5"), RF1: str("1")},
			want: models.AccountingMatchRow{TransactionNumber: models.NoRecord, RetentionSequence: "5", ClassificationCode: "1"},
		},
		{
			name: "no retention codes and no sequence",
			rec:  paymentRecord{TransactionNumber: str("7"), RF1: str("0"), RF2: str("0")},
			want: models.AccountingMatchRow{TransactionNumber: "7", RetentionSequence: models.LargeTaxpayer, ClassificationCode: "0", ClassificationAlt: "0"},
		},
		{
			name: "null retention codes",
			rec:  paymentRecord{TransactionNumber: str("8")},
			want: models.AccountingMatchRow{TransactionNumber: "8", RetentionSequence: models.LargeTaxpayer},
		},
		{
			name: "sequence present keeps value",
			rec:  paymentRecord{TransactionNumber: str("9"), RetentionSequence: str("123"), RF1: str("0"), RF2: str("0")},
			want: models.AccountingMatchRow{TransactionNumber: "9", RetentionSequence: "123", ClassificationCode: "0", ClassificationAlt: "0"},
		},
		{
			name: "one retention code set leaves sequence blank",
			rec:  paymentRecord{TransactionNumber: str("10"), RF1: str("0"), RF2: str("332")},
			want: models.AccountingMatchRow{TransactionNumber: "10", ClassificationCode: "0", ClassificationAlt: "332"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rec.normalize())
		})
	}
}

func TestRetentionRecord_ToModel(t *testing.T) {
	rec := retentionRecord{
		TransactionNumber: str(" 1001 "),
		RetentionSequence: str("000001700"),
		ProductName:       str(" Cemento "),
		Quantity:          decimal.NewNullDecimal(decimal.RequireFromString("2.5")),
		Total:             decimal.NewNullDecimal(decimal.RequireFromString("121.9")),
	}
	row := rec.toModel()
	assert.Equal(t, "1001", row.TransactionNumber)
	assert.Equal(t, "Cemento", row.ProductName)
	assert.True(t, row.Quantity.Equal(decimal.RequireFromString("2.5")))
	assert.True(t, row.Total.Equal(decimal.RequireFromString("121.9")))
	assert.True(t, row.Subtotal.IsZero(), "NULL amounts are zero")
}

func TestRetentionDetail_SkipsUnrecordedTransactions(t *testing.T) {
	repo := New(nil, &logging.MockLogger{})
	for _, n := range []string{"", "   ", "SIN REGISTRO", "sin registro"} {
		rows, err := repo.RetentionDetail(context.Background(), n)
		require.NoError(t, err, n)
		assert.Empty(t, rows)
	}
}

func TestHasTransaction(t *testing.T) {
	assert.True(t, HasTransaction("1001"))
	assert.False(t, HasTransaction(" "))
	assert.False(t, HasTransaction(models.NoRecord))
}

func TestOpen_RequiresHost(t *testing.T) {
	_, err := Open(Config{}, &logging.MockLogger{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestOpen_AppliesOverrides(t *testing.T) {
	repo, err := Open(Config{
		Host: "db.local", Port: 1521, ServiceName: "ORCL", User: "u", Password: "p",
		RetentionQuery: "  SELECT 1 FROM DUAL WHERE :1 IS NOT NULL ",
	}, &logging.MockLogger{})
	require.NoError(t, err)
	defer func() { _ = repo.Close() }()
	assert.Equal(t, "SELECT 1 FROM DUAL WHERE :1 IS NOT NULL", repo.retentionQuery)
}

func TestConnectionURL(t *testing.T) {
	url := ConnectionURL(Config{Host: "db.local", Port: 1521, ServiceName: "ORCL", User: "contab", Password: "s3cret"})
	assert.Contains(t, url, "oracle://")
	assert.Contains(t, url, "db.local:1521")
	assert.Contains(t, url, "ORCL")
	assert.Contains(t, url, "contab")

	cfg := Config{Host: "db.local", Port: 1521, ServiceName: "ORCL", Password: "s3cret"}
	assert.Equal(t, "db.local:1521/ORCL", cfg.String())
}

func TestWrap(t *testing.T) {
	assert.NoError(t, wrap("x", nil))

	plain := wrap("ping", errors.New("connection refused"))
	var dbErr *DBError
	require.True(t, errors.As(plain, &dbErr))
	assert.Zero(t, dbErr.Code)
	assert.Equal(t, "Oracle ping failed: connection refused", plain.Error())

	ora := &network.OracleError{ErrCode: 942, ErrMsg: "ORA-00942: table or view does not exist"}
	wrapped := wrap("suppliers query", ora)
	require.True(t, errors.As(wrapped, &dbErr))
	assert.Equal(t, 942, dbErr.Code)
	assert.Equal(t, "Oracle ORA-942: table or view does not exist", wrapped.Error())
	assert.ErrorIs(t, wrapped, ora)
}
