package websocket

import "time"

// Envelope - конверт сообщения. По Type фронтенд решает, какие данные перезапросить.
type Envelope struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

const (
	MessageLocationChanged  = "equipment.location.changed"
	MessageSelectionChanged = "selection.changed"
)

// LocationChangedPayload - сигнал представлениям, зависящим от местонахождения.
type LocationChangedPayload struct {
	EquipmentIDs []uint64 `json:"equipmentIds"`
	MovementID   *uint64  `json:"movementId,omitempty"`
	Reason       string   `json:"reason"`
	ActorID      *uint64  `json:"actorId,omitempty"`
}
