// Package tax computes GST for purchase entries.
//
// Indian GST has two mutually exclusive regimes per transaction: central
// (a single IGST rate) and state (split CGST+SGST). Regimes are modeled as
// a closed set of variant types rather than one flat struct of rates, so a
// central regime carrying CGST, or a state regime carrying IGST, cannot be
// represented at all.
package tax

import (
	"aushadhi/internal/core/apperror"
	"aushadhi/internal/core/types"
)

// Kind identifies the tax regime of a transaction.
type Kind string

const (
	KindNoTax   Kind = "noTax"
	KindCentral Kind = "central"
	KindState   Kind = "state"
)

// Regime is the closed set of tax regimes. Construct values with NoTax{},
// NewCentral, NewState or FromFields; the interface cannot be implemented
// outside this package.
type Regime interface {
	Kind() Kind

	// Rates reports the regime's percentage rates for persistence and
	// line-item display. Rates not owned by the regime are zero.
	Rates() (cgst, sgst, igst types.Money)

	sealed()
}

// NoTax is the regime of untaxed transactions. Sale invoices always use it.
type NoTax struct{}

func (NoTax) Kind() Kind { return KindNoTax }
func (NoTax) Rates() (types.Money, types.Money, types.Money) {
	return types.ZeroMoney(), types.ZeroMoney(), types.ZeroMoney()
}
func (NoTax) sealed() {}

// Central is the single-rate IGST regime.
type Central struct {
	igst types.Money
}

// NewCentral creates a central regime with the given IGST percentage.
func NewCentral(igst types.Money) Central {
	return Central{igst: igst}
}

func (c Central) Kind() Kind { return KindCentral }
func (c Central) Rates() (types.Money, types.Money, types.Money) {
	return types.ZeroMoney(), types.ZeroMoney(), c.igst
}
func (Central) sealed() {}

// State is the split CGST+SGST regime. One of the two rates may be zero
// (partial state tax is accepted); both zero against a non-zero taxable
// amount is reported as a misconfiguration.
type State struct {
	cgst types.Money
	sgst types.Money
}

// NewState creates a state regime with the given CGST and SGST percentages.
func NewState(cgst, sgst types.Money) State {
	return State{cgst: cgst, sgst: sgst}
}

func (s State) Kind() Kind { return KindState }
func (s State) Rates() (types.Money, types.Money, types.Money) {
	return s.cgst, s.sgst, types.ZeroMoney()
}
func (State) sealed() {}

// Split returns the CGST and SGST amounts for a taxable base as two
// independent amounts, each rounded to 2 places. They are displayed as
// separate invoice components, so they are never folded into one rate.
func (s State) Split(taxable types.Money) (cgstAmount, sgstAmount types.Money) {
	hundred := types.NewMoney(100)
	cgstAmount = types.RoundMoney(taxable.Mul(s.cgst).Div(hundred))
	sgstAmount = types.RoundMoney(taxable.Mul(s.sgst).Div(hundred))
	return cgstAmount, sgstAmount
}

// FromFields builds a Regime from the flat taxType + rate fields of a DTO
// or a stored row. Rates not owned by the requested kind are discarded,
// which reproduces the regime-switch behavior: selecting "central" zeroes
// cgst/sgst, selecting "noTax" zeroes all three.
func FromFields(kind Kind, cgst, sgst, igst types.Money) (Regime, error) {
	switch kind {
	case KindNoTax:
		return NoTax{}, nil
	case KindCentral:
		if err := checkRate("igst", igst); err != nil {
			return nil, err
		}
		return NewCentral(igst), nil
	case KindState:
		if err := checkRate("cgst", cgst); err != nil {
			return nil, err
		}
		if err := checkRate("sgst", sgst); err != nil {
			return nil, err
		}
		return NewState(cgst, sgst), nil
	default:
		return nil, apperror.NewValidation("unknown tax type").
			WithDetail("field", "taxType").
			WithDetail("value", string(kind))
	}
}

// Compute returns the tax amount for a taxable base under the given regime.
// The taxable base is the post-discount amount; discount ordering is owned
// by the pricing package.
func Compute(taxable types.Money, r Regime) (types.Money, error) {
	if err := Validate(taxable, r); err != nil {
		return types.ZeroMoney(), err
	}

	hundred := types.NewMoney(100)
	switch regime := r.(type) {
	case NoTax:
		return types.ZeroMoney(), nil
	case Central:
		return types.RoundMoney(taxable.Mul(regime.igst).Div(hundred)), nil
	case State:
		cgstAmount, sgstAmount := regime.Split(taxable)
		return cgstAmount.Add(sgstAmount), nil
	default:
		// Unreachable: Regime is sealed.
		return types.ZeroMoney(), apperror.NewInvalidTaxConfig("unsupported tax regime")
	}
}

// Validate checks regime rates against the taxable amount.
// A state regime with both rates at zero is only an error when there is a
// non-zero base to tax; the caller decides whether to warn or block.
func Validate(taxable types.Money, r Regime) error {
	switch regime := r.(type) {
	case NoTax:
		return nil
	case Central:
		return checkRate("igst", regime.igst)
	case State:
		if err := checkRate("cgst", regime.cgst); err != nil {
			return err
		}
		if err := checkRate("sgst", regime.sgst); err != nil {
			return err
		}
		if regime.cgst.IsZero() && regime.sgst.IsZero() && !taxable.IsZero() {
			return apperror.NewInvalidTaxConfig("state tax selected but both cgst and sgst are zero").
				WithDetail("taxable_amount", taxable.String())
		}
		return nil
	default:
		return apperror.NewInvalidTaxConfig("unsupported tax regime")
	}
}

func checkRate(field string, rate types.Money) error {
	if rate.IsNegative() || rate.GreaterThan(types.NewMoney(100)) {
		return apperror.NewInvalidTaxConfig("tax rate must be between 0 and 100").
			WithDetail("field", field).
			WithDetail("value", rate.String())
	}
	return nil
}
