package sriparser

import (
	"github.com/cristhianchimbo50/sri-extractor/internal/currencyutils"
	"github.com/cristhianchimbo50/sri-extractor/internal/models"

	"github.com/shopspring/decimal"
)

// GroupLineItems merges line items sharing a code key. Groups keep the order
// in which their key first appears and the codes and description of their
// first member. Additive fields are summed; prices are recomputed from the
// sums:
//
//	UnitPrice    = sum(lineTotal) / sum(quantity)
//	NetUnitPrice = (sum(quantity*unitPrice) - sum(discount)) / sum(quantity)
//
// Both are zero when the summed quantity is zero.
func GroupLineItems(items []models.InvoiceLineItem) []models.AggregatedLineItem {
	order := []string{}
	members := map[string][]models.InvoiceLineItem{}
	for _, item := range items {
		key := item.CodeKey()
		if _, ok := members[key]; !ok {
			order = append(order, key)
		}
		members[key] = append(members[key], item)
	}

	result := make([]models.AggregatedLineItem, 0, len(order))
	for _, key := range order {
		result = append(result, aggregate(key, members[key]))
	}
	return result
}

func aggregate(key string, lines []models.InvoiceLineItem) models.AggregatedLineItem {
	first := lines[0]
	agg := models.AggregatedLineItem{
		Key:           key,
		PrincipalCode: first.PrincipalCode,
		AuxiliaryCode: first.AuxiliaryCode,
		Description:   first.Description,
		Lines:         len(lines),
		Quantity:      sum(lines, func(l models.InvoiceLineItem) decimal.Decimal { return l.Quantity }),
		LineTotal:     sum(lines, func(l models.InvoiceLineItem) decimal.Decimal { return l.LineTotal }),
		Discount:      sum(lines, func(l models.InvoiceLineItem) decimal.Decimal { return l.Discount }),
		TaxableBase:   sum(lines, func(l models.InvoiceLineItem) decimal.Decimal { return l.TaxableBase }),
		VAT:           sum(lines, func(l models.InvoiceLineItem) decimal.Decimal { return l.VAT }),
	}
	gross := sum(lines, func(l models.InvoiceLineItem) decimal.Decimal { return l.Quantity.Mul(l.UnitPrice) })

	agg.UnitPrice = currencyutils.SafeDiv(agg.LineTotal, agg.Quantity)
	agg.NetUnitPrice = currencyutils.SafeDiv(gross.Sub(agg.Discount), agg.Quantity)
	return agg
}

func sum(lines []models.InvoiceLineItem, field func(models.InvoiceLineItem) decimal.Decimal) decimal.Decimal {
	values := make([]decimal.Decimal, len(lines))
	for i, l := range lines {
		values[i] = field(l)
	}
	return currencyutils.Sum(values...)
}
