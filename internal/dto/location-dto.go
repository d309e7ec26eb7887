package dto

import "time"

// LocationDTO - плоская форма местонахождения/пункта назначения в API.
// Заполняются только поля, относящиеся к Kind.
type LocationDTO struct {
	Kind string `json:"kind" validate:"required,location_kind"`

	StoreID  *uint64 `json:"store_id,omitempty"  validate:"omitempty,gt=0"`
	Position *string `json:"position,omitempty"  validate:"omitempty,max=100"`
	Area     *string `json:"area,omitempty"      validate:"omitempty,max=100"`
	Hostname *string `json:"hostname,omitempty"  validate:"omitempty,max=100"`

	PersonID   *uint64    `json:"person_id,omitempty"   validate:"omitempty,gt=0"`
	AssignedAt *time.Time `json:"assigned_at,omitempty"`
	ActCode    *string    `json:"act_code,omitempty"    validate:"omitempty,act_code"`

	MovementID *uint64 `json:"movement_id,omitempty"`
}
