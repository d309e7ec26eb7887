package dto

import (
	"github.com/aarondl/null/v8"
)

type CreateEquipmentDTO struct {
	SerialNumber  *string `json:"serial_number"  validate:"omitempty,max=100"`
	InventoryCode *string `json:"inventory_code" validate:"omitempty,max=100"`

	CategoryID    uint64 `json:"category_id"    validate:"required"`
	SubcategoryID uint64 `json:"subcategory_id" validate:"required"`
	BrandID       uint64 `json:"brand_id"       validate:"required"`
	ModelID       uint64 `json:"model_id"       validate:"required"`

	LifecycleState string       `json:"lifecycle_state" validate:"omitempty,lifecycle_state"`
	Location       *LocationDTO `json:"location"        validate:"omitempty"`

	ParentID *uint64 `json:"parent_id" validate:"omitempty,gt=0"`
	OS       *string `json:"os"        validate:"omitempty,max=100"`
	Notes    *string `json:"notes"`
}

// UpdateEquipmentDTO - частичное обновление. Местонахождение и состояние сюда не входят:
// их меняет только оркестратор перемещений.
type UpdateEquipmentDTO struct {
	SerialNumber  null.String `json:"serial_number"`
	InventoryCode null.String `json:"inventory_code"`

	CategoryID    *uint64 `json:"category_id"    validate:"omitempty,gt=0"`
	SubcategoryID *uint64 `json:"subcategory_id" validate:"omitempty,gt=0"`
	BrandID       *uint64 `json:"brand_id"       validate:"omitempty,gt=0"`
	ModelID       *uint64 `json:"model_id"       validate:"omitempty,gt=0"`

	ParentID null.Uint64 `json:"parent_id"`
	OS       null.String `json:"os"`
	Notes    null.String `json:"notes"`

	// Поля, которые реально пришли в теле запроса (нужно, чтобы отличить null от отсутствия).
	SentFields map[string]bool `json:"-"`
}

func (d UpdateEquipmentDTO) Sent(field string) bool {
	return d.SentFields[field]
}

// QuickEditDTO - "быстрое редактирование" из списка: состояние и метаданные без местонахождения.
type QuickEditDTO struct {
	LifecycleState *string     `json:"lifecycle_state" validate:"omitempty,lifecycle_state"`
	OS             null.String `json:"os"`
	Hostname       null.String `json:"hostname"`
	Notes          null.String `json:"notes"`
}

// ReactivateEquipmentDTO - при восстановлении обязательные поля классификации передаются заново.
type ReactivateEquipmentDTO struct {
	CategoryID    uint64  `json:"category_id"    validate:"required"`
	SubcategoryID uint64  `json:"subcategory_id" validate:"required"`
	BrandID       uint64  `json:"brand_id"       validate:"required"`
	ModelID       uint64  `json:"model_id"       validate:"required"`
	SerialNumber  *string `json:"serial_number"  validate:"omitempty,max=100"`
	InventoryCode *string `json:"inventory_code" validate:"omitempty,max=100"`
}

type EquipmentDTO struct {
	ID            uint64  `json:"id"`
	SerialNumber  *string `json:"serial_number"`
	InventoryCode *string `json:"inventory_code"`

	CategoryID    uint64 `json:"category_id"`
	SubcategoryID uint64 `json:"subcategory_id"`
	BrandID       uint64 `json:"brand_id"`
	ModelID       uint64 `json:"model_id"`
	BrandName     string `json:"brand_name,omitempty"`
	ModelName     string `json:"model_name,omitempty"`

	LifecycleState string      `json:"lifecycle_state"`
	Location       LocationDTO `json:"location"`

	ParentID *uint64 `json:"parent_id"`
	OS       *string `json:"os"`
	Notes    *string `json:"notes"`
	Active   bool    `json:"active"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type ChangeLifecycleDTO struct {
	LifecycleState string `json:"lifecycle_state" validate:"required,lifecycle_state"`
}
