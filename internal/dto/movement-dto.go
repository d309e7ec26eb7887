package dto

import "time"

type BatchMovementDTO struct {
	EquipmentIDs []uint64    `json:"equipment_ids" validate:"required,min=1,dive,gt=0"`
	Destination  LocationDTO `json:"destination"   validate:"required"`

	// ImmediateComplete - сразу закрыть перемещение без стадии "в пути".
	ImmediateComplete bool `json:"immediate_complete"`
	// DepartAt - плановое отправление (RFC 3339). В будущем даёт статус PENDING.
	DepartAt *time.Time `json:"depart_at"`
	Note     *string    `json:"note" validate:"omitempty,max=500"`
}

type ReturnToWarehouseDTO struct {
	ImmediateComplete bool       `json:"immediate_complete"`
	DepartAt          *time.Time `json:"depart_at"`
	Note              *string    `json:"note" validate:"omitempty,max=500"`
}

type MovementResultDTO struct {
	EquipmentID uint64  `json:"equipment_id"`
	Outcome     string  `json:"outcome"`
	Reason      string  `json:"reason,omitempty"`
	ErrorCode   string  `json:"error_code,omitempty"`
	MovementID  *uint64 `json:"movement_id,omitempty"`
}

type BatchMovementResultDTO struct {
	BatchID   string              `json:"batch_id"`
	Total     int                 `json:"total"`
	Succeeded int                 `json:"succeeded"`
	Failed    int                 `json:"failed"`
	Results   []MovementResultDTO `json:"results"`
}

type MovementDTO struct {
	ID          uint64      `json:"id"`
	EquipmentID uint64      `json:"equipment_id"`
	BatchID     string      `json:"batch_id"`
	Origin      LocationDTO `json:"origin"`
	Destination LocationDTO `json:"destination"`
	Status      string      `json:"status"`
	DepartedAt  string      `json:"departed_at"`
	ArrivedAt   *string     `json:"arrived_at"`
	CancelledAt *string     `json:"cancelled_at"`
	ActorID     *uint64     `json:"actor_id"`
	Note        *string     `json:"note"`
}

// StuckMovementDTO - открытое перемещение старше порога для оповещения "застряло в пути".
type StuckMovementDTO struct {
	MovementDTO
	InTransitFor     string `json:"in_transit_for"`
	InTransitSeconds uint64 `json:"in_transit_seconds"`
}
