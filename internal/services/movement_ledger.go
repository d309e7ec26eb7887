package services

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"inventory-system/internal/entities"
	"inventory-system/internal/repositories"
	apperrors "inventory-system/pkg/errors"
)

// Departure - данные для записи отправления.
type Departure struct {
	EquipmentID uint64
	BatchID     string
	Origin      entities.Location
	Destination entities.Location
	At          time.Time
	ActorID     *uint64
	Note        *string
}

// MovementLedger - журнал перемещений. Записи только добавляются; меняется лишь
// статус открытой записи. Пишущие методы работают внутри транзакции вызывающего.
type MovementLedger struct {
	movementRepo repositories.MovementRepositoryInterface
	now          func() time.Time
	logger       *zap.Logger
}

func NewMovementLedger(movementRepo repositories.MovementRepositoryInterface, now func() time.Time, logger *zap.Logger) *MovementLedger {
	if now == nil {
		now = time.Now
	}
	return &MovementLedger{movementRepo: movementRepo, now: now, logger: logger}
}

// RecordDeparture создаёт перемещение. Если у единицы уже есть открытое перемещение,
// возвращается ConflictError и существующая запись не меняется. Отправление в будущем
// получает статус PENDING, иначе IN_TRANSIT.
func (l *MovementLedger) RecordDeparture(ctx context.Context, tx pgx.Tx, d Departure) (*entities.Movement, error) {
	open, err := l.movementRepo.FindOpenByEquipment(ctx, tx, d.EquipmentID)
	if err == nil {
		return nil, apperrors.NewConflictError("у единицы %d уже есть открытое перемещение %d", d.EquipmentID, open.ID)
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	at := d.At
	if at.IsZero() {
		at = l.now()
	}
	status := entities.MovementInTransit
	if at.After(l.now()) {
		status = entities.MovementPending
	}

	m := entities.Movement{
		EquipmentID: d.EquipmentID,
		BatchID:     d.BatchID,
		Origin:      d.Origin,
		Destination: d.Destination,
		Status:      status,
		DepartedAt:  at,
		ActorID:     d.ActorID,
		Note:        d.Note,
	}
	id, err := l.movementRepo.Create(ctx, tx, m)
	if err != nil {
		return nil, err
	}
	m.ID = id
	m.CreatedAt = l.now()

	l.logger.Info("Отправление записано в журнал",
		zap.Uint64("movementID", id),
		zap.Uint64("equipmentID", d.EquipmentID),
		zap.String("status", string(status)),
	)
	return &m, nil
}

// RecordArrival закрывает перемещение как COMPLETED. Время прибытия не может быть
// раньше отправления.
func (l *MovementLedger) RecordArrival(ctx context.Context, tx pgx.Tx, movementID uint64, at time.Time) (*entities.Movement, error) {
	m, err := l.lockOpen(ctx, tx, movementID, "подтвердить прибытие")
	if err != nil {
		return nil, err
	}
	if at.IsZero() {
		at = l.now()
	}
	if at.Before(m.DepartedAt) {
		at = m.DepartedAt
	}

	if err := l.movementRepo.UpdateStatus(ctx, tx, movementID, entities.MovementCompleted, at); err != nil {
		return nil, err
	}
	m.Status = entities.MovementCompleted
	m.ArrivedAt = &at
	return m, nil
}

// Cancel закрывает перемещение как CANCELLED. Допустимо только из PENDING/IN_TRANSIT.
func (l *MovementLedger) Cancel(ctx context.Context, tx pgx.Tx, movementID uint64) (*entities.Movement, error) {
	m, err := l.lockOpen(ctx, tx, movementID, "отменить")
	if err != nil {
		return nil, err
	}
	at := l.now()
	if err := l.movementRepo.UpdateStatus(ctx, tx, movementID, entities.MovementCancelled, at); err != nil {
		return nil, err
	}
	m.Status = entities.MovementCancelled
	m.CancelledAt = &at
	return m, nil
}

func (l *MovementLedger) lockOpen(ctx context.Context, tx pgx.Tx, movementID uint64, action string) (*entities.Movement, error) {
	m, err := l.movementRepo.FindForUpdate(ctx, tx, movementID)
	if err != nil {
		return nil, err
	}
	if !m.Status.IsOpen() {
		return nil, apperrors.NewInvalidStateError(string(m.Status), "нельзя %s перемещение %d", action, movementID)
	}
	return m, nil
}

// Find читает перемещение без блокировки.
func (l *MovementLedger) Find(ctx context.Context, movementID uint64) (*entities.Movement, error) {
	return l.movementRepo.FindByID(ctx, nil, movementID)
}

// History - перемещения единицы в хронологическом порядке. Каждый вызов заново читает журнал.
func (l *MovementLedger) History(ctx context.Context, equipmentID uint64) ([]entities.Movement, error) {
	return l.movementRepo.History(ctx, equipmentID)
}

// OpenMovementsOlderThan - открытые перемещения, отправленные раньше чем thresholdDays назад.
func (l *MovementLedger) OpenMovementsOlderThan(ctx context.Context, thresholdDays int) ([]entities.Movement, error) {
	if thresholdDays < 0 {
		return nil, apperrors.NewValidationError("days", "порог не может быть отрицательным")
	}
	before := l.now().Add(-time.Duration(thresholdDays) * 24 * time.Hour)
	return l.movementRepo.OpenDepartedBefore(ctx, before)
}
