package events

import "inventory-system/pkg/constants"

// EquipmentLocationChangedEvent публикуется после каждой успешной записи оркестратора:
// перемещение, прибытие, отмена, смена состояния.
type EquipmentLocationChangedEvent struct {
	EquipmentIDs []uint64
	MovementID   *uint64
	BatchID      string
	Reason       string
	ActorID      *uint64
}

func (e EquipmentLocationChangedEvent) Name() string {
	return constants.EventEquipmentLocationChanged
}

// EquipmentRecordChangedEvent - изменение карточки без смены местонахождения
// (создание, редактирование, удаление, восстановление).
type EquipmentRecordChangedEvent struct {
	EquipmentIDs []uint64
	Reason       string
	ActorID      *uint64
}

func (e EquipmentRecordChangedEvent) Name() string {
	return constants.EventEquipmentRecordChanged
}

const (
	ReasonDeparture       = "departure"
	ReasonLateral         = "lateral"
	ReasonArrival         = "arrival"
	ReasonCancel          = "cancel"
	ReasonLifecycle       = "lifecycle"
	ReasonQuickEdit       = "quick_edit"
	ReasonCreated         = "created"
	ReasonUpdated         = "updated"
	ReasonDeleted         = "deleted"
	ReasonReactivated     = "reactivated"
	ReasonAccessoryDetach = "accessory_detached"
)
