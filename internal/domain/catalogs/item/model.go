// Package item provides the item definition catalog: the medicines and
// panchakarma supplies the pharmacy stocks. Item metadata is read-only to
// the stock and pricing components; only the catalog service writes it.
package item

import (
	"context"

	"aushadhi/internal/core/apperror"
	"aushadhi/internal/core/entity"
)

// Kind classifies an item.
type Kind string

const (
	KindMedicine    Kind = "medicine"
	KindPanchakarma Kind = "panchakarma"
)

// Item is an item definition. Each item is purchased and sold in a main
// unit (bottle, box, strip) that decomposes into a fixed number of
// sub-units (tablet, ml), the smallest tracked stock unit. Batch
// quantities are always stored in sub-units.
type Item struct {
	entity.Catalog

	// Kind is the item category
	Kind Kind `db:"kind" json:"kind"`

	// UnitType is the main-unit label, e.g. "bottle"
	UnitType string `db:"unit_type" json:"unitType"`

	// SubUnitLabel is the sub-unit label, e.g. "tablet"
	SubUnitLabel string `db:"sub_unit_label" json:"subUnitLabel"`

	// SubUnitsPerUnit is the number of sub-units in one main unit.
	// Always at least 1; an item sold whole has factor 1.
	SubUnitsPerUnit int64 `db:"sub_units_per_unit" json:"totalQuantityInAUnit"`
}

// New creates an item definition.
func New(code, name string, kind Kind, unitType string, subUnitsPerUnit int64) *Item {
	return &Item{
		Catalog:         entity.NewCatalog(code, name),
		Kind:            kind,
		UnitType:        unitType,
		SubUnitsPerUnit: subUnitsPerUnit,
	}
}

// Validate implements entity.Validatable.
func (i *Item) Validate(ctx context.Context) error {
	if err := i.Catalog.Validate(ctx); err != nil {
		return err
	}

	switch i.Kind {
	case KindMedicine, KindPanchakarma:
	default:
		return apperror.NewValidation("invalid item kind").
			WithDetail("field", "kind").
			WithDetail("value", string(i.Kind))
	}

	if i.UnitType == "" {
		return apperror.NewValidation("unit type is required").
			WithDetail("field", "unitType")
	}

	if i.SubUnitsPerUnit < 1 {
		return apperror.NewValidation("sub-units per unit must be at least 1").
			WithDetail("field", "totalQuantityInAUnit").
			WithDetail("value", i.SubUnitsPerUnit)
	}

	return nil
}
