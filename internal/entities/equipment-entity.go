package entities

import (
	"inventory-system/pkg/types"
)

type LifecycleState string

const (
	StateOperational       LifecycleState = "OPERATIONAL"
	StatePendingValidation LifecycleState = "PENDING_VALIDATION"
	StateUnderWarranty     LifecycleState = "UNDER_WARRANTY"
	StateInoperative       LifecycleState = "INOPERATIVE"
	StateRetired           LifecycleState = "RETIRED"
)

func (s LifecycleState) Valid() bool {
	switch s {
	case StateOperational, StatePendingValidation, StateUnderWarranty, StateInoperative, StateRetired:
		return true
	}
	return false
}

type Equipment struct {
	ID            uint64
	SerialNumber  *string
	InventoryCode *string

	CategoryID    uint64
	SubcategoryID uint64
	BrandID       uint64
	ModelID       uint64

	LifecycleState LifecycleState
	Location       Location

	// Слабая ссылка на "родительскую" единицу, к которой подключён аксессуар.
	ParentID *uint64

	OS     *string
	Notes  *string
	Active bool

	types.BaseEntity

	// Поля для связанных данных (не колонки в таблице)
	ModelName string `db:"-"`
	BrandName string `db:"-"`
}

func (e *Equipment) IsInTransit() bool {
	return e.Location != nil && e.Location.Kind() == LocationInTransit
}

func (e *Equipment) Classification() Classification {
	return Classification{
		CategoryID:    e.CategoryID,
		SubcategoryID: e.SubcategoryID,
		BrandID:       e.BrandID,
		ModelID:       e.ModelID,
	}
}
