package types

type CountByGroup struct {
	GroupName string `json:"group_name" db:"group_name"`
	Count     int64  `json:"count" db:"count"`
}

type ChartData struct {
	Label string `json:"label" db:"label"`
	Value int64  `json:"value" db:"value"`
}

type EquipmentStats struct {
	Total             int64          `json:"total"`
	ByLocation        []CountByGroup `json:"by_location"`
	ByLifecycleState  []CountByGroup `json:"by_lifecycle_state"`
	MovementsByMonth  []ChartData    `json:"movements_by_month"`
	OpenMovementCount int64          `json:"open_movement_count"`
}
