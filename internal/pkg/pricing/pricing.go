package pricing

import "github.com/shopspring/decimal"

// ClearanceThreshold is the discount percent at or above which a product is
// classified as clearance. Used only for notification copy, never for math.
const ClearanceThreshold = 50

// Line is one cart entry as consumed by the pricing engine.
type Line struct {
	Quantity        int
	UnitListPrice   decimal.Decimal
	DiscountPercent int
}

// DiscountedUnitPrice applies a percentage discount and rounds half-up to
// 2 decimal places. A zero or negative discount returns the list price
// unchanged, with no rounding applied, so non-discounted items carry no
// rounding noise.
func DiscountedUnitPrice(listPrice decimal.Decimal, discountPercent int) decimal.Decimal {
	if discountPercent <= 0 {
		return listPrice
	}
	factor := decimal.NewFromInt(1).Sub(
		decimal.NewFromInt(int64(discountPercent)).Div(decimal.NewFromInt(100)),
	)
	// Round is half-away-from-zero; prices are non-negative so this is half-up.
	return listPrice.Mul(factor).Round(2)
}

// LineTotal is the discounted unit price times quantity.
func LineTotal(l Line) decimal.Decimal {
	return DiscountedUnitPrice(l.UnitListPrice, l.DiscountPercent).
		Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartTotal sums line totals and rounds half-up to 2 decimal places.
func CartTotal(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(LineTotal(l))
	}
	return total.Round(2)
}

// IsClearance reports whether a discount percent classifies a product as a
// clearance item.
func IsClearance(discountPercent int) bool {
	return discountPercent >= ClearanceThreshold
}
