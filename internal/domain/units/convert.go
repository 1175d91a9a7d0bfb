// Package units provides conversion between main units (bottle, box, strip)
// and sub-units (tablet, ml). It is the single source of truth for the
// 2-decimal rounding applied to every converted quantity; all other
// components convert through these functions, never on their own.
package units

import (
	"aushadhi/internal/core/apperror"
	"aushadhi/internal/core/types"
)

// ToSubUnits converts a main-unit quantity to sub-units.
// factor is the number of sub-units per main unit and must be at least 1.
func ToSubUnits(mainUnits types.Quantity, factor int64) (types.Quantity, error) {
	if err := check(mainUnits, factor); err != nil {
		return 0, err
	}
	// Exact in fixed point: the scale is preserved by integer multiplication.
	return types.QuantityFromInt64Scaled(mainUnits.Int64Scaled() * factor), nil
}

// ToMainUnits converts a sub-unit quantity back to main units,
// rounding half-up to 2 decimal places.
func ToMainUnits(subUnits types.Quantity, factor int64) (types.Quantity, error) {
	if err := check(subUnits, factor); err != nil {
		return 0, err
	}
	scaled := subUnits.Int64Scaled()
	return types.QuantityFromInt64Scaled((2*scaled + factor) / (2 * factor)), nil
}

func check(qty types.Quantity, factor int64) error {
	if factor < 1 {
		return apperror.NewValidation("conversion factor must be at least 1").
			WithDetail("field", "totalQuantityInAUnit").
			WithDetail("factor", factor)
	}
	if qty.IsNegative() {
		return apperror.NewValidation("quantity must not be negative").
			WithDetail("quantity", qty.String())
	}
	return nil
}
