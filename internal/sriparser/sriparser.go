// Package sriparser decodes SRI authorization envelopes into invoice headers
// and line items.
//
// An envelope wraps the authorized document as text inside <comprobante>; the
// embedded document is a complete XML file of its own whose root must be
// <factura>.
package sriparser

import (
	"fmt"
	"os"
	"strings"

	"github.com/cristhianchimbo50/sri-extractor/internal/currencyutils"
	"github.com/cristhianchimbo50/sri-extractor/internal/dateutils"
	"github.com/cristhianchimbo50/sri-extractor/internal/models"
	"github.com/cristhianchimbo50/sri-extractor/internal/parsererror"
	"github.com/cristhianchimbo50/sri-extractor/internal/xmlutils"

	"github.com/shopspring/decimal"
	"gopkg.in/xmlpath.v2"
)

// Tax table codes used by the SRI.
const (
	TaxCodeVAT          = "2"
	RateCodeVAT15       = "4"
	RateCodeNotSubject  = "6"
	RateCodeExempt      = "7"
	vat15Rate           = 15
	elementAutorizacion = "autorizacion"
	elementComprobante  = "comprobante"
	elementFactura      = "factura"
)

// Decode decodes the text of an authorization envelope. sourcePath is only
// recorded on the header and used in error messages.
func Decode(xmlText, sourcePath string) (models.InvoiceHeader, []models.InvoiceLineItem, error) {
	root, err := xmlutils.ParseString(xmlText)
	if err != nil {
		return models.InvoiceHeader{}, nil, parsererror.Unparseable(sourcePath, "", err)
	}
	return decodeEnvelope(root, sourcePath)
}

// DecodeFile reads and decodes the envelope stored at path, honouring the
// encoding declared by the file.
func DecodeFile(path string) (models.InvoiceHeader, []models.InvoiceLineItem, error) {
	if _, err := os.Stat(path); err != nil {
		return models.InvoiceHeader{}, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	root, err := xmlutils.LoadXMLFile(path)
	if err != nil {
		return models.InvoiceHeader{}, nil, parsererror.Unparseable(path, "", err)
	}
	return decodeEnvelope(root, path)
}

func decodeEnvelope(root *xmlpath.Node, sourcePath string) (models.InvoiceHeader, []models.InvoiceLineItem, error) {
	auth, ok := xmlutils.First(root, "//"+elementAutorizacion)
	if !ok {
		return models.InvoiceHeader{}, nil, parsererror.Missing(sourcePath, elementAutorizacion)
	}

	payload, _ := xmlutils.RawValue(auth, elementComprobante)
	if strings.TrimSpace(payload) == "" {
		return models.InvoiceHeader{}, nil, parsererror.Missing(sourcePath, elementComprobante)
	}

	doc, err := xmlutils.ParseString(payload)
	if err != nil {
		return models.InvoiceHeader{}, nil, parsererror.Unparseable(sourcePath, elementComprobante, err)
	}
	invoice, ok := xmlutils.First(doc, "/"+elementFactura)
	if !ok {
		return models.InvoiceHeader{}, nil, parsererror.Missing(sourcePath, elementFactura)
	}

	header := decodeHeader(invoice)
	header.AuthorizationNumber = xmlutils.Value(auth, "numeroAutorizacion")
	header.AuthorizedAt = dateutils.ParseAuthorizationTime(xmlutils.Value(auth, "fechaAutorizacion"))
	header.SourcePath = sourcePath

	return header, decodeItems(invoice), nil
}

func decodeHeader(invoice *xmlpath.Node) models.InvoiceHeader {
	trib, _ := xmlutils.First(invoice, "infoTributaria")
	info, _ := xmlutils.First(invoice, "infoFactura")

	header := models.InvoiceHeader{
		AccessKey:       xmlutils.Value(trib, "claveAcceso"),
		IssuerRUC:       xmlutils.Value(trib, "ruc"),
		IssuerName:      xmlutils.Value(trib, "razonSocial"),
		IssuerTradeName: xmlutils.Value(trib, "nombreComercial"),
		InvoiceNumber: strings.Join([]string{
			xmlutils.Value(trib, "estab"),
			xmlutils.Value(trib, "ptoEmi"),
			xmlutils.Value(trib, "secuencial"),
		}, "-"),
		EmissionDate:    dateutils.ParseEmissionDate(xmlutils.Value(info, "fechaEmision")),
		Total:           amount(info, "importeTotal"),
		SubtotalUntaxed: amount(info, "totalSinImpuestos"),
		TotalDiscount:   amount(info, "totalDescuento"),
	}

	xmlutils.Each(info, "totalConImpuestos/totalImpuesto", func(tax *xmlpath.Node) {
		accumulateTotal(&header, tax)
	})

	return header
}

// accumulateTotal adds one totalImpuesto entry to the matching bucket.
func accumulateTotal(header *models.InvoiceHeader, tax *xmlpath.Node) {
	if xmlutils.Value(tax, "codigo") != TaxCodeVAT {
		return
	}

	base := amount(tax, "baseImponible")
	rateCode := xmlutils.Value(tax, "codigoPorcentaje")
	rate := amount(tax, "tarifa")

	switch {
	case rateCode == RateCodeVAT15 || rate.Equal(decimal.NewFromInt(vat15Rate)):
		header.Subtotal15 = header.Subtotal15.Add(base)
		header.VAT15 = header.VAT15.Add(amount(tax, "valor"))
	case rateCode == RateCodeNotSubject:
		header.SubtotalNotSubject = header.SubtotalNotSubject.Add(base)
	case rateCode == RateCodeExempt:
		header.SubtotalExempt = header.SubtotalExempt.Add(base)
	}
}

func decodeItems(invoice *xmlpath.Node) []models.InvoiceLineItem {
	items := []models.InvoiceLineItem{}

	xmlutils.Each(invoice, "detalles/detalle", func(det *xmlpath.Node) {
		item := models.InvoiceLineItem{
			PrincipalCode: xmlutils.Value(det, "codigoPrincipal"),
			AuxiliaryCode: xmlutils.Value(det, "codigoAuxiliar"),
			Description:   xmlutils.Value(det, "descripcion"),
			Quantity:      amount(det, "cantidad"),
			UnitPrice:     amount(det, "precioUnitario"),
			Discount:      amount(det, "descuento"),
			LineTotal:     amount(det, "precioTotalSinImpuesto"),
		}

		// Only the first VAT entry of the line counts.
		found := false
		xmlutils.Each(det, "impuestos/impuesto", func(tax *xmlpath.Node) {
			if found || xmlutils.Value(tax, "codigo") != TaxCodeVAT {
				return
			}
			found = true
			item.TaxableBase = amount(tax, "baseImponible")
			item.VAT = amount(tax, "valor")
		})

		items = append(items, item)
	})

	return items
}

func amount(node *xmlpath.Node, xpath string) decimal.Decimal {
	return currencyutils.ParseAmountOrZero(xmlutils.Value(node, xpath))
}
