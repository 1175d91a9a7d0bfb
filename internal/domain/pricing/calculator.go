// Package pricing computes document totals for purchase entries and sale
// invoices. The stage order is fixed: line totals, subtotal, discount,
// taxable amount, tax, grand total. Discount is always applied before tax;
// tax is computed on the post-discount amount, never on the raw subtotal.
package pricing

import (
	"aushadhi/internal/core/apperror"
	"aushadhi/internal/core/types"
	"aushadhi/internal/domain/tax"
)

// Totals is the priced result of one document.
type Totals struct {
	SubTotal       types.Money `json:"subTotal"`
	DiscountAmount types.Money `json:"discountAmount"`
	TaxableAmount  types.Money `json:"taxableAmount"`
	Tax            types.Money `json:"tax"`
	GrandTotal     types.Money `json:"grandTotal"`
}

// LineTotal returns price * quantity rounded to 2 places.
// The price is per unit of whatever the quantity counts: per sub-unit for
// sale lines, per main unit for purchase lines.
func LineTotal(price types.Money, quantity types.Quantity) types.Money {
	return types.RoundMoney(price.Mul(quantity.Decimal()))
}

// SubTotal sums line totals.
func SubTotal(lineTotals []types.Money) types.Money {
	total := types.ZeroMoney()
	for _, lt := range lineTotals {
		total = total.Add(lt)
	}
	return total
}

// DiscountAmount returns the discount on a subtotal.
func DiscountAmount(subTotal, discountPercent types.Money) (types.Money, error) {
	if discountPercent.IsNegative() || discountPercent.GreaterThan(types.NewMoney(100)) {
		return types.ZeroMoney(), apperror.NewValidation("discount must be between 0 and 100").
			WithDetail("field", "discount").
			WithDetail("value", discountPercent.String())
	}
	return types.RoundMoney(subTotal.Mul(discountPercent).Div(types.NewMoney(100))), nil
}

// TaxableAmount is the subtotal less discount, clamped at zero so a
// discount exceeding the subtotal cannot produce a negative tax base.
func TaxableAmount(subTotal, discountAmount types.Money) types.Money {
	taxable := subTotal.Sub(discountAmount)
	if taxable.IsNegative() {
		return types.ZeroMoney()
	}
	return taxable
}

// Calculate runs the full pipeline over the given line totals.
func Calculate(lineTotals []types.Money, discountPercent types.Money, regime tax.Regime) (Totals, error) {
	subTotal := SubTotal(lineTotals)

	discount, err := DiscountAmount(subTotal, discountPercent)
	if err != nil {
		return Totals{}, err
	}

	taxable := TaxableAmount(subTotal, discount)

	taxAmount, err := tax.Compute(taxable, regime)
	if err != nil {
		return Totals{}, err
	}

	grand := taxable.Add(taxAmount)
	if grand.IsNegative() {
		grand = types.ZeroMoney()
	}

	return Totals{
		SubTotal:       subTotal,
		DiscountAmount: discount,
		TaxableAmount:  taxable,
		Tax:            taxAmount,
		GrandTotal:     grand,
	}, nil
}
