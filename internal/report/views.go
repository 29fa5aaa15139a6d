package report

import (
	"github.com/cristhianchimbo50/sri-extractor/internal/currencyutils"
	"github.com/cristhianchimbo50/sri-extractor/internal/dateutils"
	"github.com/cristhianchimbo50/sri-extractor/internal/models"
	"github.com/cristhianchimbo50/sri-extractor/internal/reconcile"

	"github.com/shopspring/decimal"
)

func yesNo(b bool) string {
	if b {
		return "SI"
	}
	return "NO"
}

// InvoiceRow is one line of the received-invoices listing.
type InvoiceRow struct {
	Seq            int    `csv:"seq" json:"seq" yaml:"seq"`
	IssuerRUC      string `csv:"ruc" json:"ruc" yaml:"ruc"`
	IssuerName     string `csv:"issuer" json:"issuer" yaml:"issuer"`
	InvoiceNumber  string `csv:"invoice" json:"invoice" yaml:"invoice"`
	EmissionDate   string `csv:"emission" json:"emission" yaml:"emission"`
	Transaction    string `csv:"transaction" json:"transaction" yaml:"transaction"`
	Retention      string `csv:"retention" json:"retention" yaml:"retention"`
	Matched        string `csv:"matched" json:"matched" yaml:"matched"`
	SupplierExists string `csv:"supplier" json:"supplier" yaml:"supplier"`
	AccessKey      string `csv:"access_key" json:"accessKey" yaml:"access_key"`
	XMLPath        string `csv:"xml" json:"xml" yaml:"xml"`
}

// InvoiceRows builds the listing view. Retention sequences below the floor
// are shown as not validated.
func InvoiceRows(invoices []models.ReceivedInvoice) []InvoiceRow {
	rows := make([]InvoiceRow, 0, len(invoices))
	for _, inv := range invoices {
		rows = append(rows, InvoiceRow{
			Seq:            inv.Seq,
			IssuerRUC:      inv.IssuerRUC,
			IssuerName:     inv.IssuerName,
			InvoiceNumber:  inv.InvoiceNumber,
			EmissionDate:   inv.EmissionDate,
			Transaction:    reconcile.TransactionDisplay(inv.TransactionNumber),
			Retention:      reconcile.RetentionDisplay(inv.RetentionSequence, reconcile.ListingRetentionLabel),
			Matched:        yesNo(inv.Matched),
			SupplierExists: yesNo(inv.SupplierExists),
			AccessKey:      inv.AccessKey,
			XMLPath:        inv.XMLPath,
		})
	}
	return rows
}

// Field is a labelled value, used for header and totals blocks.
type Field struct {
	Name  string `csv:"field" json:"field" yaml:"field"`
	Value string `csv:"value" json:"value" yaml:"value"`
}

// HeaderFields lists the invoice header in display order.
func HeaderFields(h models.InvoiceHeader) []Field {
	return []Field{
		{"RUC", h.IssuerRUC},
		{"RAZON SOCIAL", h.IssuerName},
		{"NOMBRE COMERCIAL", h.IssuerTradeName},
		{"FACTURA", h.InvoiceNumber},
		{"FECHA EMISION", dateutils.FormatDisplayDate(h.EmissionDate)},
		{"CLAVE DE ACCESO", h.AccessKey},
		{"AUTORIZACION", h.AuthorizationNumber},
		{"FECHA AUTORIZACION", dateutils.FormatDisplayDateTime(h.AuthorizedAt)},
	}
}

// TotalFields renders the totals block with two decimals.
func TotalFields(h models.InvoiceHeader) []Field {
	totals := h.Totals()
	fields := make([]Field, 0, len(totals))
	for _, t := range totals {
		fields = append(fields, Field{Name: t.Label, Value: t.Value.StringFixed(2)})
	}
	return fields
}

// ItemRow is one aggregated product line of an invoice.
type ItemRow struct {
	Code         string `csv:"code" json:"code" yaml:"code"`
	Description  string `csv:"description" json:"description" yaml:"description"`
	Lines        int    `csv:"lines" json:"lines" yaml:"lines"`
	Quantity     string `csv:"quantity" json:"quantity" yaml:"quantity"`
	UnitPrice    string `csv:"unit_price" json:"unitPrice" yaml:"unit_price"`
	NetUnitPrice string `csv:"net_unit_price" json:"netUnitPrice" yaml:"net_unit_price"`
	Discount     string `csv:"discount" json:"discount" yaml:"discount"`
	TaxableBase  string `csv:"base" json:"base" yaml:"base"`
	VAT          string `csv:"vat" json:"vat" yaml:"vat"`
	LineTotal    string `csv:"total" json:"total" yaml:"total"`
}

func fixed(d decimal.Decimal, places int32) string {
	return d.StringFixed(places)
}

// ItemRows renders aggregated items. Unit prices keep four decimals.
func ItemRows(items []models.AggregatedLineItem) []ItemRow {
	rows := make([]ItemRow, 0, len(items))
	for _, it := range items {
		code := it.PrincipalCode
		if code == "" {
			code = it.AuxiliaryCode
		}
		rows = append(rows, ItemRow{
			Code:         code,
			Description:  it.Description,
			Lines:        it.Lines,
			Quantity:     it.Quantity.String(),
			UnitPrice:    fixed(it.UnitPrice, 4),
			NetUnitPrice: fixed(it.NetUnitPrice, 4),
			Discount:     fixed(it.Discount, 2),
			TaxableBase:  fixed(it.TaxableBase, 2),
			VAT:          fixed(it.VAT, 2),
			LineTotal:    fixed(it.LineTotal, 2),
		})
	}
	return rows
}

// ProviderRow is one disabled-issuer registry entry.
type ProviderRow struct {
	RUC      string `csv:"ruc" json:"ruc" yaml:"ruc"`
	Name     string `csv:"name" json:"name" yaml:"name"`
	Disabled string `csv:"disabled" json:"disabled" yaml:"disabled"`
}

// ProviderRows renders registry entries.
func ProviderRows(entries []models.DisabledIssuerEntry) []ProviderRow {
	rows := make([]ProviderRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, ProviderRow{RUC: e.RUC, Name: e.Name, Disabled: yesNo(e.Disabled)})
	}
	return rows
}

// PaymentRow is one accounting payment-invoice row.
type PaymentRow struct {
	Transaction      string `csv:"transaction" json:"transaction" yaml:"transaction"`
	Retention        string `csv:"retention" json:"retention" yaml:"retention"`
	PurchaseDocument string `csv:"purchase_document" json:"purchaseDocument" yaml:"purchase_document"`
	RUC              string `csv:"ruc" json:"ruc" yaml:"ruc"`
	Name             string `csv:"name" json:"name" yaml:"name"`
	RF1              string `csv:"rf_codigo" json:"rfCodigo" yaml:"rf_codigo"`
	RF2              string `csv:"rf_codigo2" json:"rfCodigo2" yaml:"rf_codigo2"`
}

// PaymentRows renders accounting rows as loaded.
func PaymentRows(rows []models.AccountingMatchRow) []PaymentRow {
	out := make([]PaymentRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, PaymentRow{
			Transaction:      r.TransactionNumber,
			Retention:        r.RetentionSequence,
			PurchaseDocument: r.PurchaseDocument,
			RUC:              r.IssuerRUC,
			Name:             r.IssuerName,
			RF1:              r.ClassificationCode,
			RF2:              r.ClassificationAlt,
		})
	}
	return out
}

// SupplierRow is one supplier master entry.
type SupplierRow struct {
	RUC  string `csv:"ruc" json:"ruc" yaml:"ruc"`
	Name string `csv:"name" json:"name" yaml:"name"`
}

// SupplierRows renders the supplier master.
func SupplierRows(suppliers []models.Supplier) []SupplierRow {
	rows := make([]SupplierRow, 0, len(suppliers))
	for _, s := range suppliers {
		rows = append(rows, SupplierRow{RUC: s.RUC, Name: s.Name})
	}
	return rows
}

// RetentionRow is one product line of a withholding record.
type RetentionRow struct {
	ProductCode  string `csv:"product_code" json:"productCode" yaml:"product_code"`
	Product      string `csv:"product" json:"product" yaml:"product"`
	Quantity     string `csv:"quantity" json:"quantity" yaml:"quantity"`
	UnitCost     string `csv:"unit_cost" json:"unitCost" yaml:"unit_cost"`
	LineSubtotal string `csv:"subtotal" json:"subtotal" yaml:"subtotal"`
}

// RetentionRows renders withholding product lines.
func RetentionRows(rows []models.RetentionDetailRow) []RetentionRow {
	out := make([]RetentionRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, RetentionRow{
			ProductCode:  r.ProductCode,
			Product:      r.ProductName,
			Quantity:     currencyutils.FormatAmount(r.Quantity),
			UnitCost:     currencyutils.FormatAmount(r.UnitCost),
			LineSubtotal: currencyutils.FormatAmount(r.LineSubtotal),
		})
	}
	return out
}

// RetentionSummary is the header of a withholding record, taken from its
// first line. An empty slice yields nil.
func RetentionSummary(rows []models.RetentionDetailRow) []Field {
	if len(rows) == 0 {
		return nil
	}
	r := rows[0]
	return []Field{
		{"TRANSACCION", reconcile.TransactionDisplay(r.TransactionNumber)},
		{"RETENCION", reconcile.RetentionDisplay(r.RetentionSequence, reconcile.DetailRetentionLabel)},
		{"CLIENTE", r.ClientCode},
		{"ITEM", r.ItemCode},
		{"SUBTOTAL", currencyutils.FormatAmount(r.Subtotal)},
		{"BASE 15%", currencyutils.FormatAmount(r.Base15)},
		{"IVA", currencyutils.FormatAmount(r.VAT)},
		{"TOTAL", currencyutils.FormatAmount(r.Total)},
	}
}

// DetailView is the full document view of one invoice.
type DetailView struct {
	Header    []Field        `json:"header" yaml:"header"`
	Items     []ItemRow      `json:"items" yaml:"items"`
	Totals    []Field        `json:"totals" yaml:"totals"`
	Retention *RetentionView `json:"retention,omitempty" yaml:"retention,omitempty"`
}

// RetentionView is the withholding record linked to an invoice.
type RetentionView struct {
	Transaction string         `json:"transaction" yaml:"transaction"`
	Summary     []Field        `json:"summary" yaml:"summary"`
	Lines       []RetentionRow `json:"lines" yaml:"lines"`
	Status      string         `json:"status,omitempty" yaml:"status,omitempty"`
}
