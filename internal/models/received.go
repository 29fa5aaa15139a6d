package models

import (
	"strings"
	"time"
)

// Sentinel values used by the accounting system for retention sequences and
// transaction numbers.
const (
	NoRecord         = "SIN REGISTRO"
	LargeTaxpayer    = "GRAN CONTRIBUYENTE"
	NotValidated     = "NO VALIDADA"
	RetentionFloor   = "000001600"
	RetentionPadding = 9
)

// ReceivedInvoice is one row of the received-invoices listing: what the portal
// (or the local archive) knows about a document plus the accounting data
// attached during reconciliation.
type ReceivedInvoice struct {
	Seq           int       `json:"seq" yaml:"seq"`
	RowIndex      int       `json:"rowIndex" yaml:"row_index"`
	IssuerRUC     string    `json:"issuerRuc" yaml:"issuer_ruc"`
	IssuerName    string    `json:"issuerName" yaml:"issuer_name"`
	AccessKey     string    `json:"accessKey" yaml:"access_key"`
	EmissionDate  string    `json:"emissionDate" yaml:"emission_date"`
	InvoiceNumber string    `json:"invoiceNumber" yaml:"invoice_number"`
	XMLPath       string    `json:"xmlPath" yaml:"xml_path"`
	DownloadedAt  time.Time `json:"-" yaml:"-"`

	TransactionNumber  string `json:"transactionNumber" yaml:"transaction_number"`
	PurchaseDocument   string `json:"purchaseDocument" yaml:"purchase_document"`
	RetentionSequence  string `json:"retentionSequence" yaml:"retention_sequence"`
	AccountingRUC      string `json:"accountingRuc" yaml:"accounting_ruc"`
	AccountingName     string `json:"accountingName" yaml:"accounting_name"`
	ClassificationCode string `json:"classificationCode" yaml:"classification_code"`
	ClassificationAlt  string `json:"classificationAlt" yaml:"classification_alt"`

	Matched        bool `json:"matched" yaml:"matched"`
	SupplierExists bool `json:"supplierExists" yaml:"supplier_exists"`
}

// HasTransaction reports whether the invoice carries a usable accounting
// transaction number.
func (r ReceivedInvoice) HasTransaction() bool {
	n := strings.TrimSpace(r.TransactionNumber)
	return n != "" && !strings.EqualFold(n, NoRecord)
}

// ClearAccounting empties every field copied from an accounting row.
func (r *ReceivedInvoice) ClearAccounting() {
	r.TransactionNumber = ""
	r.PurchaseDocument = ""
	r.RetentionSequence = ""
	r.AccountingRUC = ""
	r.AccountingName = ""
	r.ClassificationCode = ""
	r.ClassificationAlt = ""
	r.Matched = false
}
