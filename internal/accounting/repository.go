// Package accounting reads purchase, payment and supplier records from the
// Oracle accounting database used for reconciliation.
package accounting

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cristhianchimbo50/sri-extractor/internal/logging"
	"github.com/cristhianchimbo50/sri-extractor/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	go_ora "github.com/sijms/go-ora/v2"
)

const driverName = "oracle"

// Config is the Oracle connection configuration.
type Config struct {
	Host        string
	Port        int
	ServiceName string
	User        string
	Password    string
	// RetentionQuery overrides the retention detail query. It must take the
	// transaction number as its single bind parameter.
	RetentionQuery string
	// Timeout bounds every query. Zero means no limit beyond the caller's
	// context.
	Timeout time.Duration
}

// ErrNotConfigured is returned when no Oracle host is configured.
var ErrNotConfigured = errors.New("oracle connection is not configured")

// ConnectionURL builds the go-ora connection URL for cfg.
func ConnectionURL(cfg Config) string {
	return go_ora.BuildUrl(cfg.Host, cfg.Port, cfg.ServiceName, cfg.User, cfg.Password, nil)
}

// Repository runs the accounting queries.
type Repository struct {
	db             *sqlx.DB
	retentionQuery string
	timeout        time.Duration
	logger         logging.Logger
}

// Open prepares a repository for cfg. No connection is made until the first
// query; use Ping to test connectivity.
func Open(cfg Config, logger logging.Logger) (*Repository, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, ErrNotConfigured
	}
	db, err := sqlx.Open(driverName, ConnectionURL(cfg))
	if err != nil {
		return nil, wrap("open", err)
	}
	repo := New(db, logger)
	repo.timeout = cfg.Timeout
	if q := strings.TrimSpace(cfg.RetentionQuery); q != "" {
		repo.retentionQuery = q
	}
	return repo, nil
}

// New wraps an existing database handle.
func New(db *sqlx.DB, logger logging.Logger) *Repository {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Repository{db: db, retentionQuery: retentionDetailQuery, logger: logger}
}

// Close releases the connection pool.
func (r *Repository) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *Repository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout > 0 {
		return context.WithTimeout(ctx, r.timeout)
	}
	return context.WithCancel(ctx)
}

// Ping opens a connection and checks the server answers.
func (r *Repository) Ping(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return wrap("ping", r.db.PingContext(ctx))
}

type paymentRecord struct {
	TransactionNumber sql.NullString `db:"CO_NUMERO"`
	RetentionSequence sql.NullString `db:"PM_NROSEC"`
	PurchaseDocument  sql.NullString `db:"CO_FACPRO"`
	IssuerRUC         sql.NullString `db:"PV_RUCCI"`
	IssuerName        sql.NullString `db:"PV_RAZONS"`
	RF1               sql.NullString `db:"RF_CODIGO"`
	RF2               sql.NullString `db:"RF_CODIGO2"`
}

// PaymentInvoices returns one row per purchase transaction with its payment
// and supplier data, newest transaction first.
func (r *Repository) PaymentInvoices(ctx context.Context) ([]models.AccountingMatchRow, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	var records []paymentRecord
	if err := r.db.SelectContext(ctx, &records, paymentInvoicesQuery); err != nil {
		return nil, wrap("payment invoices query", err)
	}

	rows := make([]models.AccountingMatchRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, rec.normalize())
	}
	r.logger.Debug("Loaded accounting payment rows",
		logging.Field{Key: logging.FieldCount, Value: len(rows)},
		logging.Field{Key: logging.FieldDuration, Value: time.Since(start).Milliseconds()})
	return rows, nil
}

// normalize trims every column and applies the sentinel values: a blank
// transaction is SIN REGISTRO, and a supplier with both retention codes
// unset and no retention sequence is a large taxpayer.
func (rec paymentRecord) normalize() models.AccountingMatchRow {
	row := models.AccountingMatchRow{
		TransactionNumber:  strings.TrimSpace(rec.TransactionNumber.String),
		RetentionSequence:  strings.TrimSpace(rec.RetentionSequence.String),
		PurchaseDocument:   strings.TrimSpace(rec.PurchaseDocument.String),
		IssuerRUC:          strings.TrimSpace(rec.IssuerRUC.String),
		IssuerName:         strings.TrimSpace(rec.IssuerName.String),
		ClassificationCode: strings.TrimSpace(rec.RF1.String),
		ClassificationAlt:  strings.TrimSpace(rec.RF2.String),
	}
	if row.TransactionNumber == "" {
		row.TransactionNumber = models.NoRecord
	}
	if unsetCode(row.ClassificationCode) && unsetCode(row.ClassificationAlt) && row.RetentionSequence == "" {
		row.RetentionSequence = models.LargeTaxpayer
	}
	return row
}

func unsetCode(code string) bool {
	return code == "" || code == "0"
}

type supplierRecord struct {
	RUC  sql.NullString `db:"PV_RUCCI"`
	Name sql.NullString `db:"PV_RAZONS"`
}

// Suppliers returns the supplier master ordered by legal name. Rows with a
// blank RUC are skipped.
func (r *Repository) Suppliers(ctx context.Context) ([]models.Supplier, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var records []supplierRecord
	if err := r.db.SelectContext(ctx, &records, suppliersQuery); err != nil {
		return nil, wrap("suppliers query", err)
	}

	suppliers := make([]models.Supplier, 0, len(records))
	for _, rec := range records {
		ruc := strings.TrimSpace(rec.RUC.String)
		if ruc == "" {
			continue
		}
		suppliers = append(suppliers, models.Supplier{RUC: ruc, Name: strings.TrimSpace(rec.Name.String)})
	}
	return suppliers, nil
}

type retentionRecord struct {
	TransactionNumber sql.NullString      `db:"CO_NUMERO"`
	RetentionSequence sql.NullString      `db:"PM_NROSEC"`
	ClientCode        sql.NullString      `db:"CL_CODIGO"`
	ItemCode          sql.NullString      `db:"IT_CODIGO"`
	Subtotal          decimal.NullDecimal `db:"SUBTOTAL"`
	VAT               decimal.NullDecimal `db:"IVA"`
	Base15            decimal.NullDecimal `db:"BASE15"`
	Total             decimal.NullDecimal `db:"TOTAL"`
	ProductCode       sql.NullString      `db:"CODIGO_PRODUCTO"`
	ProductName       sql.NullString      `db:"PRODUCTO"`
	Quantity          decimal.NullDecimal `db:"CANTIDAD"`
	UnitCost          decimal.NullDecimal `db:"COSTO_UNITARIO"`
	LineSubtotal      decimal.NullDecimal `db:"SUBTOTAL_LINEA"`
}

// HasTransaction reports whether coNumero refers to a recorded purchase.
func HasTransaction(coNumero string) bool {
	return models.ReceivedInvoice{TransactionNumber: coNumero}.HasTransaction()
}

// RetentionDetail returns the product lines of the withholding linked to the
// transaction coNumero. A blank or unrecorded transaction returns no rows
// without querying.
func (r *Repository) RetentionDetail(ctx context.Context, coNumero string) ([]models.RetentionDetailRow, error) {
	if !HasTransaction(coNumero) {
		return nil, nil
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var records []retentionRecord
	if err := r.db.SelectContext(ctx, &records, r.retentionQuery, strings.TrimSpace(coNumero)); err != nil {
		return nil, wrap("retention detail query", err)
	}

	rows := make([]models.RetentionDetailRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, rec.toModel())
	}
	r.logger.Debug("Loaded retention detail",
		logging.Field{Key: logging.FieldTransaction, Value: coNumero},
		logging.Field{Key: logging.FieldCount, Value: len(rows)})
	return rows, nil
}

func orZero(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}

func (rec retentionRecord) toModel() models.RetentionDetailRow {
	return models.RetentionDetailRow{
		TransactionNumber: strings.TrimSpace(rec.TransactionNumber.String),
		RetentionSequence: strings.TrimSpace(rec.RetentionSequence.String),
		ClientCode:        strings.TrimSpace(rec.ClientCode.String),
		ItemCode:          strings.TrimSpace(rec.ItemCode.String),
		Subtotal:          orZero(rec.Subtotal),
		VAT:               orZero(rec.VAT),
		Base15:            orZero(rec.Base15),
		Total:             orZero(rec.Total),
		ProductCode:       strings.TrimSpace(rec.ProductCode.String),
		ProductName:       strings.TrimSpace(rec.ProductName.String),
		Quantity:          orZero(rec.Quantity),
		UnitCost:          orZero(rec.UnitCost),
		LineSubtotal:      orZero(rec.LineSubtotal),
	}
}

// String describes the repository target without credentials.
func (c Config) String() string {
	return fmt.Sprintf("%s:%d/%s", c.Host, c.Port, c.ServiceName)
}
