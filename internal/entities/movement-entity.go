package entities

import "time"

type MovementStatus string

const (
	MovementPending   MovementStatus = "PENDING"
	MovementInTransit MovementStatus = "IN_TRANSIT"
	MovementCompleted MovementStatus = "COMPLETED"
	MovementCancelled MovementStatus = "CANCELLED"
)

// IsOpen - перемещение ещё не завершено и не отменено.
func (s MovementStatus) IsOpen() bool {
	return s == MovementPending || s == MovementInTransit
}

type Movement struct {
	ID          uint64
	EquipmentID uint64
	BatchID     string

	// Origin - полный снимок местонахождения на момент отправки; к нему
	// возвращается единица при отмене.
	Origin      Location
	Destination Location

	Status      MovementStatus
	DepartedAt  time.Time
	ArrivedAt   *time.Time
	CancelledAt *time.Time
	ActorID     *uint64
	Note        *string
	CreatedAt   time.Time
}
