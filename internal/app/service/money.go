package service

import (
	"errors"

	"github.com/mkweon/barunpos-backend/internal/app/model"
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

var ErrNegativeAmount = errors.New("amount must not be negative")

// SaleTotals aggregates line amounts for a sale. Subtotal is the gross sum
// of quantity times unit price before discounts; TotalAmount = Subtotal -
// DiscountTotal + TaxAmount, which equals the sum of the line totals.
type SaleTotals struct {
	Subtotal      decimal.Decimal
	DiscountTotal decimal.Decimal
	TaxAmount     decimal.Decimal
	TotalAmount   decimal.Decimal
}

// BuildSaleItem snapshots product price and tax rate into a sale line and
// computes its amounts. A percent discount takes precedence over an absolute
// one when both are given. Each derived amount is rounded to 2 places at the
// line level, so totals are exact sums of what the receipt shows. LineTotal
// is the tax-inclusive amount due for the line:
// quantity*unitPrice - discountAmount + taxAmount.
func BuildSaleItem(product *model.Product, quantity, discountPercent, discountAmount decimal.Decimal) (model.SaleItem, error) {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return model.SaleItem{}, ErrInvalidQuantity
	}
	if discountPercent.IsNegative() || discountAmount.IsNegative() || product.SellingPrice.IsNegative() {
		return model.SaleItem{}, ErrNegativeAmount
	}

	gross := product.SellingPrice.Mul(quantity)
	if discountPercent.IsPositive() {
		discountAmount = gross.Mul(discountPercent).Div(oneHundred).Round(2)
	} else {
		discountAmount = discountAmount.Round(2)
	}
	net := gross.Sub(discountAmount)

	taxRate := product.TaxRate
	if product.TaxType == model.TaxNone {
		taxRate = decimal.Zero
	}
	taxAmount := net.Mul(taxRate).Div(oneHundred).Round(2)

	return model.SaleItem{
		ProductID:       product.ID,
		Quantity:        quantity,
		UnitPrice:       product.SellingPrice,
		TaxRate:         taxRate,
		TaxAmount:       taxAmount,
		DiscountPercent: discountPercent,
		DiscountAmount:  discountAmount,
		LineTotal:       net.Add(taxAmount).Round(2),
	}, nil
}

// SumSaleItems totals already-built sale lines. TotalAmount always equals
// the sum of the individual line totals.
func SumSaleItems(items []model.SaleItem) SaleTotals {
	totals := SaleTotals{
		Subtotal:      decimal.Zero,
		DiscountTotal: decimal.Zero,
		TaxAmount:     decimal.Zero,
		TotalAmount:   decimal.Zero,
	}
	for _, item := range items {
		totals.Subtotal = totals.Subtotal.Add(item.UnitPrice.Mul(item.Quantity))
		totals.DiscountTotal = totals.DiscountTotal.Add(item.DiscountAmount)
		totals.TaxAmount = totals.TaxAmount.Add(item.TaxAmount)
	}
	totals.TotalAmount = totals.Subtotal.Sub(totals.DiscountTotal).Add(totals.TaxAmount)
	return totals
}
