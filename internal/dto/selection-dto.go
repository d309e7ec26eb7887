package dto

import "time"

type ToggleSelectionDTO struct {
	EquipmentID uint64 `json:"equipment_id" validate:"required,gt=0"`
}

type ReconcileSelectionDTO struct {
	PageIDs []uint64 `json:"page_ids" validate:"dive,gt=0"`
}

type SelectionDTO struct {
	SelectedIDs   []uint64 `json:"selected_ids"`
	SelectedCount int      `json:"selected_count"`
}

type PageSelectionDTO struct {
	Checked       map[uint64]bool `json:"checked"`
	SelectedCount int             `json:"selected_count"`
	OnPageCount   int             `json:"on_page_count"`
	OffPageCount  int             `json:"off_page_count"`
	ExceedsPage   bool            `json:"exceeds_page"`
}

type SubmitSelectionDTO struct {
	Destination       LocationDTO `json:"destination" validate:"required"`
	ImmediateComplete bool        `json:"immediate_complete"`
	DepartAt          *time.Time  `json:"depart_at"`
	Note              *string     `json:"note" validate:"omitempty,max=500"`
}
