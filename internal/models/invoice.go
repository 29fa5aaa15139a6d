// Package models defines the core data structures shared by the decoder, the
// extraction workflow and the reconciliation step.
package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceHeader holds the header data of one authorized invoice document.
type InvoiceHeader struct {
	AccessKey           string          `json:"accessKey" yaml:"access_key"`
	AuthorizationNumber string          `json:"authorizationNumber" yaml:"authorization_number"`
	AuthorizedAt        time.Time       `json:"authorizedAt" yaml:"authorized_at"`
	IssuerRUC           string          `json:"issuerRuc" yaml:"issuer_ruc"`
	IssuerName          string          `json:"issuerName" yaml:"issuer_name"`
	IssuerTradeName     string          `json:"issuerTradeName" yaml:"issuer_trade_name"`
	InvoiceNumber       string          `json:"invoiceNumber" yaml:"invoice_number"`
	EmissionDate        time.Time       `json:"emissionDate" yaml:"emission_date"`
	Total               decimal.Decimal `json:"total" yaml:"total"`
	Subtotal15          decimal.Decimal `json:"subtotal15" yaml:"subtotal_15"`
	SubtotalNotSubject  decimal.Decimal `json:"subtotalNotSubject" yaml:"subtotal_not_subject"`
	SubtotalExempt      decimal.Decimal `json:"subtotalExempt" yaml:"subtotal_exempt"`
	SubtotalUntaxed     decimal.Decimal `json:"subtotalUntaxed" yaml:"subtotal_untaxed"`
	TotalDiscount       decimal.Decimal `json:"totalDiscount" yaml:"total_discount"`
	VAT15               decimal.Decimal `json:"vat15" yaml:"vat_15"`
	SourcePath          string          `json:"sourcePath" yaml:"source_path"`
}

// CompactInvoiceNumber returns the invoice number without hyphens, the form
// used by the accounting system for purchase document numbers.
func (h InvoiceHeader) CompactInvoiceNumber() string {
	return strings.ReplaceAll(h.InvoiceNumber, "-", "")
}

// InvoiceLineItem is one detail line of an invoice.
type InvoiceLineItem struct {
	PrincipalCode string          `json:"principalCode" yaml:"principal_code"`
	AuxiliaryCode string          `json:"auxiliaryCode" yaml:"auxiliary_code"`
	Description   string          `json:"description" yaml:"description"`
	Quantity      decimal.Decimal `json:"quantity" yaml:"quantity"`
	UnitPrice     decimal.Decimal `json:"unitPrice" yaml:"unit_price"`
	Discount      decimal.Decimal `json:"discount" yaml:"discount"`
	TaxableBase   decimal.Decimal `json:"taxableBase" yaml:"taxable_base"`
	VAT           decimal.Decimal `json:"vat" yaml:"vat"`
	LineTotal     decimal.Decimal `json:"lineTotal" yaml:"line_total"`
}

// NetUnitPrice is the unit price after spreading the line discount over the
// quantity. With a zero quantity the gross amount is taken for a single unit
// and the raw net total is returned.
func (i InvoiceLineItem) NetUnitPrice() decimal.Decimal {
	return NetUnitPrice(i.Quantity, i.UnitPrice, i.Discount)
}

// CodeKey is the grouping key of the line: the trimmed principal code, or the
// auxiliary code when the principal one is blank, uppercased.
func (i InvoiceLineItem) CodeKey() string {
	key := strings.TrimSpace(i.PrincipalCode)
	if key == "" {
		key = strings.TrimSpace(i.AuxiliaryCode)
	}
	return strings.ToUpper(key)
}

// NetUnitPrice computes (quantity*unitPrice - discount)/quantity. When quantity
// is zero the line counts as one unit and the net total is returned.
func NetUnitPrice(quantity, unitPrice, discount decimal.Decimal) decimal.Decimal {
	if quantity.IsZero() {
		return unitPrice.Sub(discount)
	}
	return quantity.Mul(unitPrice).Sub(discount).Div(quantity)
}

// AggregatedLineItem is the sum of all line items sharing one code key.
// UnitPrice is the weighted average of the member unit prices.
type AggregatedLineItem struct {
	Key           string          `json:"key" yaml:"key"`
	PrincipalCode string          `json:"principalCode" yaml:"principal_code"`
	AuxiliaryCode string          `json:"auxiliaryCode" yaml:"auxiliary_code"`
	Description   string          `json:"description" yaml:"description"`
	Lines         int             `json:"lines" yaml:"lines"`
	Quantity      decimal.Decimal `json:"quantity" yaml:"quantity"`
	UnitPrice     decimal.Decimal `json:"unitPrice" yaml:"unit_price"`
	NetUnitPrice  decimal.Decimal `json:"netUnitPrice" yaml:"net_unit_price"`
	Discount      decimal.Decimal `json:"discount" yaml:"discount"`
	TaxableBase   decimal.Decimal `json:"taxableBase" yaml:"taxable_base"`
	VAT           decimal.Decimal `json:"vat" yaml:"vat"`
	LineTotal     decimal.Decimal `json:"lineTotal" yaml:"line_total"`
}

// TotalLine is one labelled amount of the invoice totals block.
type TotalLine struct {
	Label string          `json:"label" yaml:"label"`
	Value decimal.Decimal `json:"value" yaml:"value"`
}

// Totals returns the totals block in display order.
func (h InvoiceHeader) Totals() []TotalLine {
	return []TotalLine{
		{Label: "SUBTOTAL 15%", Value: h.Subtotal15},
		{Label: "SUBTOTAL NO OBJETO DE IVA", Value: h.SubtotalNotSubject},
		{Label: "SUBTOTAL EXENTO DE IVA", Value: h.SubtotalExempt},
		{Label: "SUBTOTAL SIN IMPUESTOS", Value: h.SubtotalUntaxed},
		{Label: "TOTAL DESCUENTO", Value: h.TotalDiscount},
		{Label: "IVA 15%", Value: h.VAT15},
		{Label: "VALOR TOTAL", Value: h.Total},
	}
}
