package authz

// --- ПРАВА, КОТОРЫЕ ПРОВЕРЯЕТ ОРКЕСТРАТОР ---

const (
	// Глобальные
	Superuser = "superuser"

	// Оборудование
	EquipmentRetire = "equipment:retire"
	EquipmentDelete = "equipment:delete"
)
