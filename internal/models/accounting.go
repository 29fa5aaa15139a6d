package models

import "github.com/shopspring/decimal"

// AccountingMatchRow is one purchase transaction as recorded by the accounting
// system. It is loaded fresh for each reconciliation run.
type AccountingMatchRow struct {
	TransactionNumber  string `json:"transactionNumber" yaml:"transaction_number"`
	RetentionSequence  string `json:"retentionSequence" yaml:"retention_sequence"`
	PurchaseDocument   string `json:"purchaseDocument" yaml:"purchase_document"`
	IssuerRUC          string `json:"issuerRuc" yaml:"issuer_ruc"`
	IssuerName         string `json:"issuerName" yaml:"issuer_name"`
	ClassificationCode string `json:"classificationCode" yaml:"classification_code"`
	ClassificationAlt  string `json:"classificationAlt" yaml:"classification_alt"`
}

// RetentionDetailRow is one product line of the withholding record linked to
// an accounting transaction. Header amounts repeat on every line.
type RetentionDetailRow struct {
	TransactionNumber string          `json:"transactionNumber" yaml:"transaction_number"`
	RetentionSequence string          `json:"retentionSequence" yaml:"retention_sequence"`
	ClientCode        string          `json:"clientCode" yaml:"client_code"`
	ItemCode          string          `json:"itemCode" yaml:"item_code"`
	Subtotal          decimal.Decimal `json:"subtotal" yaml:"subtotal"`
	VAT               decimal.Decimal `json:"vat" yaml:"vat"`
	Base15            decimal.Decimal `json:"base15" yaml:"base_15"`
	Total             decimal.Decimal `json:"total" yaml:"total"`
	ProductCode       string          `json:"productCode" yaml:"product_code"`
	ProductName       string          `json:"productName" yaml:"product_name"`
	Quantity          decimal.Decimal `json:"quantity" yaml:"quantity"`
	UnitCost          decimal.Decimal `json:"unitCost" yaml:"unit_cost"`
	LineSubtotal      decimal.Decimal `json:"lineSubtotal" yaml:"line_subtotal"`
}

// Supplier is an entry of the accounting supplier master.
type Supplier struct {
	RUC  string `json:"ruc" yaml:"ruc"`
	Name string `json:"name" yaml:"name"`
}

// DisabledIssuerEntry is one issuer known to the disabled-issuer registry.
type DisabledIssuerEntry struct {
	RUC      string `json:"ruc" yaml:"ruc"`
	Name     string `json:"name" yaml:"name"`
	Disabled bool   `json:"disabled" yaml:"disabled"`
}
