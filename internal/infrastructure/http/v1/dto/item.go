package dto

import (
	"aushadhi/internal/domain/catalogs/item"
)

// CreateItemRequest for creating an item definition.
type CreateItemRequest struct {
	Code                 string `json:"code"`
	Name                 string `json:"name" binding:"required"`
	Kind                 string `json:"kind" binding:"required,oneof=medicine panchakarma"`
	UnitType             string `json:"unitType" binding:"required"`
	SubUnitLabel         string `json:"subUnitLabel"`
	TotalQuantityInAUnit int64  `json:"totalQuantityInAUnit" binding:"required,min=1"`
}

// ToEntity converts the request to an item.
func (r CreateItemRequest) ToEntity() *item.Item {
	it := item.New(r.Code, r.Name, item.Kind(r.Kind), r.UnitType, r.TotalQuantityInAUnit)
	it.SubUnitLabel = r.SubUnitLabel
	return it
}

// UpdateItemRequest for updating an item definition.
// The unit factor is immutable and deliberately absent.
type UpdateItemRequest struct {
	Name         *string `json:"name"`
	Kind         *string `json:"kind" binding:"omitempty,oneof=medicine panchakarma"`
	UnitType     *string `json:"unitType"`
	SubUnitLabel *string `json:"subUnitLabel"`
	Version      int     `json:"version" binding:"required,min=1"`
}

// ApplyTo applies the update to an existing item.
func (r UpdateItemRequest) ApplyTo(it *item.Item) {
	if r.Name != nil {
		it.Name = *r.Name
	}
	if r.Kind != nil {
		it.Kind = item.Kind(*r.Kind)
	}
	if r.UnitType != nil {
		it.UnitType = *r.UnitType
	}
	if r.SubUnitLabel != nil {
		it.SubUnitLabel = *r.SubUnitLabel
	}
	it.Version = r.Version
}

// ItemResponse contains item fields.
type ItemResponse struct {
	ID                   string `json:"id"`
	Code                 string `json:"code"`
	Name                 string `json:"name"`
	Kind                 string `json:"kind"`
	UnitType             string `json:"unitType"`
	SubUnitLabel         string `json:"subUnitLabel"`
	TotalQuantityInAUnit int64  `json:"totalQuantityInAUnit"`
	DeletionMark         bool   `json:"deletionMark"`
	Version              int    `json:"version"`
}

// FromItem creates ItemResponse from an item.
func FromItem(it *item.Item) ItemResponse {
	return ItemResponse{
		ID:                   it.ID.String(),
		Code:                 it.Code,
		Name:                 it.Name,
		Kind:                 string(it.Kind),
		UnitType:             it.UnitType,
		SubUnitLabel:         it.SubUnitLabel,
		TotalQuantityInAUnit: it.SubUnitsPerUnit,
		DeletionMark:         it.DeletionMark,
		Version:              it.Version,
	}
}

// FromItems maps a slice of items.
func FromItems(items []*item.Item) []ItemResponse {
	out := make([]ItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, FromItem(it))
	}
	return out
}
