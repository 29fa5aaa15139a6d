package sriparser

import (
	"testing"

	"github.com/cristhianchimbo50/sri-extractor/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(principal, aux, qty, price, discount, total, base, vat string) models.InvoiceLineItem {
	return models.InvoiceLineItem{
		PrincipalCode: principal,
		AuxiliaryCode: aux,
		Description:   "item " + principal + aux,
		Quantity:      d(qty),
		UnitPrice:     d(price),
		Discount:      d(discount),
		LineTotal:     d(total),
		TaxableBase:   d(base),
		VAT:           d(vat),
	}
}

func TestGroupLineItems_SumsAndOrder(t *testing.T) {
	items := []models.InvoiceLineItem{
		line("b-1", "", "2", "10", "1", "19", "19", "2.85"),
		line("A", "", "1", "5", "0", "5", "5", "0.75"),
		line(" B-1 ", "", "3", "12", "2", "34", "34", "5.10"),
		line("", "x9", "1", "1", "0", "1", "0", "0"),
	}

	groups := GroupLineItems(items)
	require.Len(t, groups, 3)

	assert.Equal(t, []string{"B-1", "A", "X9"}, []string{groups[0].Key, groups[1].Key, groups[2].Key})

	g := groups[0]
	assert.Equal(t, "b-1", g.PrincipalCode, "first member's codes are kept")
	assert.Equal(t, 2, g.Lines)
	assert.True(t, d("5").Equal(g.Quantity))
	assert.True(t, d("53").Equal(g.LineTotal))
	assert.True(t, d("3").Equal(g.Discount))
	assert.True(t, d("53").Equal(g.TaxableBase))
	assert.True(t, d("7.95").Equal(g.VAT))
	assert.True(t, d("10.6").Equal(g.UnitPrice))
	// (2*10 + 3*12 - 3) / 5
	assert.True(t, d("10.6").Equal(g.NetUnitPrice))
}

func TestGroupLineItems_SumInvariant(t *testing.T) {
	items := []models.InvoiceLineItem{
		line("K", "", "1.5", "3.3", "0.1", "4.85", "4.85", "0.73"),
		line("k", "", "2.25", "3.1", "0", "6.98", "6.98", "1.05"),
		line("K ", "", "0.25", "3", "0.05", "0.7", "0.7", "0.11"),
	}

	groups := GroupLineItems(items)
	require.Len(t, groups, 1)

	sum := func(f func(models.InvoiceLineItem) decimal.Decimal) decimal.Decimal {
		total := decimal.Zero
		for _, it := range items {
			total = total.Add(f(it))
		}
		return total
	}

	g := groups[0]
	assert.True(t, sum(func(i models.InvoiceLineItem) decimal.Decimal { return i.Quantity }).Equal(g.Quantity))
	assert.True(t, sum(func(i models.InvoiceLineItem) decimal.Decimal { return i.LineTotal }).Equal(g.LineTotal))
	assert.True(t, sum(func(i models.InvoiceLineItem) decimal.Decimal { return i.Discount }).Equal(g.Discount))
	assert.True(t, sum(func(i models.InvoiceLineItem) decimal.Decimal { return i.TaxableBase }).Equal(g.TaxableBase))
	assert.True(t, sum(func(i models.InvoiceLineItem) decimal.Decimal { return i.VAT }).Equal(g.VAT))
}

func TestGroupLineItems_ZeroQuantity(t *testing.T) {
	groups := GroupLineItems([]models.InvoiceLineItem{
		line("Z", "", "0", "10", "1", "9", "9", "1.35"),
		line("Z", "", "0", "4", "0", "4", "4", "0.6"),
	})
	require.Len(t, groups, 1)

	assert.True(t, groups[0].Quantity.IsZero())
	assert.True(t, groups[0].UnitPrice.IsZero())
	assert.True(t, groups[0].NetUnitPrice.IsZero())
	assert.True(t, d("13").Equal(groups[0].LineTotal))
}

func TestGroupLineItems_Empty(t *testing.T) {
	assert.Empty(t, GroupLineItems(nil))
}
