// Package sritest builds SRI authorization envelopes for tests.
package sritest

import (
	"fmt"
	"html"
	"strings"
)

// Line is one detalle of a fixture invoice.
type Line struct {
	Code      string
	AuxCode   string
	Desc      string
	Qty       string
	UnitPrice string
	Discount  string
	Total     string
	VATBase   string
	VAT       string
}

// Invoice describes a fixture invoice. Zero values get sensible defaults.
type Invoice struct {
	AccessKey   string
	RUC         string
	Name        string
	TradeName   string
	Estab       string
	PtoEmi      string
	Sequence    string
	Emission    string
	AuthNumber  string
	AuthDate    string
	Total       string
	Untaxed     string
	Discount    string
	Base15      string
	VAT15       string
	NotSubject  string
	Exempt      string
	Lines       []Line
	UseCDATA    bool
	WrapInReply bool
}

func or(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// Comprobante renders the inner <factura> document.
func (inv Invoice) Comprobante() string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	b.WriteString(`<factura id="comprobante" version="1.1.0"><infoTributaria>`)
	fmt.Fprintf(&b, "<ambiente>2</ambiente><razonSocial>%s</razonSocial><nombreComercial>%s</nombreComercial>",
		esc(or(inv.Name, "PROVEEDOR DE PRUEBA S.A.")), esc(or(inv.TradeName, "PRUEBA")))
	fmt.Fprintf(&b, "<ruc>%s</ruc><claveAcceso>%s</claveAcceso><codDoc>01</codDoc>",
		or(inv.RUC, "1790012345001"), or(inv.AccessKey, "0503202501179001234500120010020000001231234567811"))
	fmt.Fprintf(&b, "<estab>%s</estab><ptoEmi>%s</ptoEmi><secuencial>%s</secuencial>",
		or(inv.Estab, "001"), or(inv.PtoEmi, "002"), or(inv.Sequence, "000000123"))
	b.WriteString(`</infoTributaria><infoFactura>`)
	fmt.Fprintf(&b, "<fechaEmision>%s</fechaEmision>", or(inv.Emission, "05/03/2025"))
	fmt.Fprintf(&b, "<totalSinImpuestos>%s</totalSinImpuestos><totalDescuento>%s</totalDescuento>",
		or(inv.Untaxed, "0.00"), or(inv.Discount, "0.00"))
	b.WriteString("<totalConImpuestos>")
	if inv.Base15 != "" || inv.VAT15 != "" {
		fmt.Fprintf(&b, "<totalImpuesto><codigo>2</codigo><codigoPorcentaje>4</codigoPorcentaje><baseImponible>%s</baseImponible><tarifa>15</tarifa><valor>%s</valor></totalImpuesto>",
			or(inv.Base15, "0.00"), or(inv.VAT15, "0.00"))
	}
	if inv.NotSubject != "" {
		fmt.Fprintf(&b, "<totalImpuesto><codigo>2</codigo><codigoPorcentaje>6</codigoPorcentaje><baseImponible>%s</baseImponible><valor>0.00</valor></totalImpuesto>", inv.NotSubject)
	}
	if inv.Exempt != "" {
		fmt.Fprintf(&b, "<totalImpuesto><codigo>2</codigo><codigoPorcentaje>7</codigoPorcentaje><baseImponible>%s</baseImponible><valor>0.00</valor></totalImpuesto>", inv.Exempt)
	}
	b.WriteString("</totalConImpuestos>")
	fmt.Fprintf(&b, "<importeTotal>%s</importeTotal><moneda>DOLAR</moneda>", or(inv.Total, "0.00"))
	b.WriteString("</infoFactura><detalles>")
	for _, l := range inv.Lines {
		b.WriteString("<detalle>")
		if l.Code != "" {
			fmt.Fprintf(&b, "<codigoPrincipal>%s</codigoPrincipal>", esc(l.Code))
		}
		if l.AuxCode != "" {
			fmt.Fprintf(&b, "<codigoAuxiliar>%s</codigoAuxiliar>", esc(l.AuxCode))
		}
		fmt.Fprintf(&b, "<descripcion>%s</descripcion><cantidad>%s</cantidad><precioUnitario>%s</precioUnitario><descuento>%s</descuento><precioTotalSinImpuesto>%s</precioTotalSinImpuesto>",
			esc(l.Desc), or(l.Qty, "0"), or(l.UnitPrice, "0"), or(l.Discount, "0"), or(l.Total, "0"))
		b.WriteString("<impuestos>")
		b.WriteString("<impuesto><codigo>3</codigo><codigoPorcentaje>3072</codigoPorcentaje><tarifa>5</tarifa><baseImponible>99</baseImponible><valor>99</valor></impuesto>")
		if l.VATBase != "" || l.VAT != "" {
			fmt.Fprintf(&b, "<impuesto><codigo>2</codigo><codigoPorcentaje>4</codigoPorcentaje><tarifa>15</tarifa><baseImponible>%s</baseImponible><valor>%s</valor></impuesto>",
				or(l.VATBase, "0"), or(l.VAT, "0"))
		}
		b.WriteString("</impuestos></detalle>")
	}
	b.WriteString("</detalles></factura>")
	return b.String()
}

// Envelope renders the full authorization envelope.
func (inv Invoice) Envelope() string {
	payload := inv.Comprobante()
	if inv.UseCDATA {
		payload = "<![CDATA[" + payload + "]]>"
	} else {
		payload = esc(payload)
	}

	auth := fmt.Sprintf("<autorizacion><estado>AUTORIZADO</estado><numeroAutorizacion>%s</numeroAutorizacion><fechaAutorizacion>%s</fechaAutorizacion><ambiente>PRODUCCIÓN</ambiente><comprobante>%s</comprobante></autorizacion>",
		or(inv.AuthNumber, or(inv.AccessKey, "0503202501179001234500120010020000001231234567811")),
		or(inv.AuthDate, "2025-03-05T10:11:12-05:00"),
		payload)

	if inv.WrapInReply {
		return `<?xml version="1.0" encoding="UTF-8"?><RespuestaAutorizacionComprobante><autorizaciones>` + auth + `</autorizaciones></RespuestaAutorizacionComprobante>`
	}
	return `<?xml version="1.0" encoding="UTF-8"?>` + auth
}

func esc(s string) string {
	return html.EscapeString(s)
}
