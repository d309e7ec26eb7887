package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"inventory-system/internal/authz"
	"inventory-system/internal/dto"
	"inventory-system/internal/entities"
	"inventory-system/internal/events"
	"inventory-system/internal/repositories"
	apperrors "inventory-system/pkg/errors"
	"inventory-system/pkg/eventbus"
	"inventory-system/pkg/metrics"
	"inventory-system/pkg/utils"
)

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// EventPublisher - то, что нужно сервисам от шины событий.
type EventPublisher interface {
	Publish(ctx context.Context, event eventbus.Event) error
}

// MoveOptions - параметры перемещения, общие для всех единиц пакета.
type MoveOptions struct {
	// ImmediateComplete закрывает перемещение сразу, без стадии "в пути".
	ImmediateComplete bool
	// DepartAt - плановое время отправления; в будущем даёт статус PENDING.
	DepartAt *time.Time
	Note     *string
}

// Scheduled - отправление назначено на момент позже now.
func (o MoveOptions) Scheduled(now time.Time) bool {
	return o.DepartAt != nil && o.DepartAt.After(now)
}

// Validate отклоняет запланированное отправление с немедленным закрытием: прибытие
// оказалось бы в будущем.
func (o MoveOptions) Validate(now time.Time) error {
	if o.ImmediateComplete && o.Scheduled(now) {
		return apperrors.NewValidationError("depart_at", "запланированное отправление нельзя закрыть сразу (immediate_complete)")
	}
	return nil
}

type MovementOrchestratorInterface interface {
	Execute(ctx context.Context, equipmentIDs []uint64, destination entities.Location, opts MoveOptions) (*dto.BatchMovementResultDTO, error)
	ReturnToWarehouse(ctx context.Context, equipmentID uint64, opts MoveOptions) (*dto.MovementDTO, error)
	ConfirmArrival(ctx context.Context, movementID uint64) (*dto.MovementDTO, error)
	CancelMovement(ctx context.Context, movementID uint64) (*dto.MovementDTO, error)
	ChangeLifecycle(ctx context.Context, equipmentID uint64, state entities.LifecycleState) (*dto.EquipmentDTO, error)
	QuickEdit(ctx context.Context, equipmentID uint64, d dto.QuickEditDTO) (*dto.EquipmentDTO, error)
	History(ctx context.Context, equipmentID uint64) ([]dto.MovementDTO, error)
	StuckMovements(ctx context.Context, thresholdDays int) ([]dto.StuckMovementDTO, error)
}

// MovementOrchestrator - единственный, кто меняет местонахождение и состояние
// жизненного цикла единиц. Каждая единица обрабатывается в своей транзакции.
type MovementOrchestrator struct {
	txManager     repositories.TxManagerInterface
	equipmentRepo repositories.EquipmentRepositoryInterface
	ledger        *MovementLedger
	publisher     EventPublisher
	retireChecker authz.PermissionChecker
	metrics       *metrics.Metrics
	now           func() time.Time
	logger        *zap.Logger
}

func NewMovementOrchestrator(
	txManager repositories.TxManagerInterface,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	ledger *MovementLedger,
	publisher EventPublisher,
	retireChecker authz.PermissionChecker,
	m *metrics.Metrics,
	now func() time.Time,
	logger *zap.Logger,
) *MovementOrchestrator {
	if now == nil {
		now = time.Now
	}
	return &MovementOrchestrator{
		txManager:     txManager,
		equipmentRepo: equipmentRepo,
		ledger:        ledger,
		publisher:     publisher,
		retireChecker: retireChecker,
		metrics:       m,
		now:           now,
		logger:        logger,
	}
}

func actorFromCtx(ctx context.Context) *uint64 {
	if userID, err := utils.GetUserIDFromCtx(ctx); err == nil {
		return &userID
	}
	return nil
}

// Execute перемещает набор единиц в один пункт назначения. Ошибка одной единицы не
// прерывает пакет: для каждого ID возвращается свой результат. Дубликаты ID
// обрабатываются один раз.
func (o *MovementOrchestrator) Execute(ctx context.Context, equipmentIDs []uint64, destination entities.Location, opts MoveOptions) (*dto.BatchMovementResultDTO, error) {
	ids := uniqueIDs(equipmentIDs)
	if len(ids) == 0 {
		return nil, apperrors.NewValidationError("equipment_ids", "не выбрано ни одной единицы")
	}
	if destination == nil {
		return nil, apperrors.NewValidationError("destination", "пункт назначения не указан")
	}
	if err := opts.Validate(o.now()); err != nil {
		return nil, err
	}

	batchID := uuid.NewString()
	actorID := actorFromCtx(ctx)
	o.metrics.ObserveBatch(len(ids))

	result := &dto.BatchMovementResultDTO{
		BatchID: batchID,
		Total:   len(ids),
		Results: make([]dto.MovementResultDTO, 0, len(ids)),
	}
	moved := make([]uint64, 0, len(ids))

	for _, id := range ids {
		movement, err := o.moveOne(ctx, batchID, id, destination, opts, actorID)
		item := dto.MovementResultDTO{EquipmentID: id, Outcome: OutcomeSuccess}
		if err != nil {
			item.Outcome = OutcomeError
			item.Reason = err.Error()
			item.ErrorCode = apperrors.Code(err)
			result.Failed++
			o.logger.Warn("Единица не перемещена",
				zap.String("batchID", batchID),
				zap.Uint64("equipmentID", id),
				zap.Error(err),
			)
		} else {
			item.MovementID = &movement.ID
			result.Succeeded++
			moved = append(moved, id)
		}
		o.metrics.ObserveMovement("execute", err == nil)
		result.Results = append(result.Results, item)
	}

	if len(moved) > 0 {
		o.publish(ctx, events.EquipmentLocationChangedEvent{
			EquipmentIDs: moved,
			BatchID:      batchID,
			Reason:       events.ReasonDeparture,
			ActorID:      actorID,
		})
	}

	o.logger.Info("Пакетное перемещение обработано",
		zap.String("batchID", batchID),
		zap.Int("total", result.Total),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

// ReturnToWarehouse - перемещение одной единицы на склад. Ошибка возвращается как есть.
func (o *MovementOrchestrator) ReturnToWarehouse(ctx context.Context, equipmentID uint64, opts MoveOptions) (*dto.MovementDTO, error) {
	if err := opts.Validate(o.now()); err != nil {
		return nil, err
	}
	actorID := actorFromCtx(ctx)
	batchID := uuid.NewString()

	movement, err := o.moveOne(ctx, batchID, equipmentID, entities.AtWarehouse{}, opts, actorID)
	o.metrics.ObserveMovement("return", err == nil)
	if err != nil {
		return nil, err
	}

	o.publish(ctx, events.EquipmentLocationChangedEvent{
		EquipmentIDs: []uint64{equipmentID},
		MovementID:   &movement.ID,
		BatchID:      batchID,
		Reason:       events.ReasonDeparture,
		ActorID:      actorID,
	})
	res := MovementToDTO(movement)
	return &res, nil
}

// moveOne - одна единица, одна транзакция: блокировка строки, проверка перехода,
// запись в журнал, обновление местонахождения.
func (o *MovementOrchestrator) moveOne(ctx context.Context, batchID string, equipmentID uint64, destination entities.Location, opts MoveOptions, actorID *uint64) (*entities.Movement, error) {
	var movement *entities.Movement

	err := o.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		equipment, err := o.equipmentRepo.FindForUpdate(ctx, tx, equipmentID)
		if err != nil {
			return err
		}

		kind, err := PlanTransition(equipment, destination)
		if err != nil {
			return err
		}

		now := o.now()
		if opts.Scheduled(now) && (!kind.HasTransitStage() || opts.ImmediateComplete) {
			return apperrors.NewValidationError("depart_at", "перемещение %s без стадии в пути нельзя запланировать", kind)
		}
		departAt := now
		if opts.DepartAt != nil {
			departAt = *opts.DepartAt
		}

		movement, err = o.ledger.RecordDeparture(ctx, tx, Departure{
			EquipmentID: equipmentID,
			BatchID:     batchID,
			Origin:      equipment.Location,
			Destination: destination,
			At:          departAt,
			ActorID:     actorID,
			Note:        opts.Note,
		})
		if err != nil {
			return err
		}

		if kind.HasTransitStage() && !opts.ImmediateComplete {
			return o.equipmentRepo.UpdateLocation(ctx, tx, equipmentID, entities.InTransit{MovementID: movement.ID})
		}

		movement, err = o.ledger.RecordArrival(ctx, tx, movement.ID, now)
		if err != nil {
			return err
		}
		return o.equipmentRepo.UpdateLocation(ctx, tx, equipmentID, destination)
	})
	if err != nil {
		return nil, err
	}
	return movement, nil
}

// ConfirmArrival закрывает перемещение и ставит единицу в пункт назначения.
func (o *MovementOrchestrator) ConfirmArrival(ctx context.Context, movementID uint64) (*dto.MovementDTO, error) {
	movement, err := o.closeMovement(ctx, movementID, func(tx pgx.Tx) (*entities.Movement, error) {
		return o.ledger.RecordArrival(ctx, tx, movementID, o.now())
	}, func(m *entities.Movement) entities.Location { return m.Destination })
	o.metrics.ObserveMovement("arrival", err == nil)
	if err != nil {
		return nil, err
	}

	o.publish(ctx, events.EquipmentLocationChangedEvent{
		EquipmentIDs: []uint64{movement.EquipmentID},
		MovementID:   &movement.ID,
		BatchID:      movement.BatchID,
		Reason:       events.ReasonArrival,
		ActorID:      actorFromCtx(ctx),
	})
	res := MovementToDTO(movement)
	return &res, nil
}

// CancelMovement отменяет открытое перемещение и возвращает единице местонахождение,
// снятое в момент отправления.
func (o *MovementOrchestrator) CancelMovement(ctx context.Context, movementID uint64) (*dto.MovementDTO, error) {
	movement, err := o.closeMovement(ctx, movementID, func(tx pgx.Tx) (*entities.Movement, error) {
		return o.ledger.Cancel(ctx, tx, movementID)
	}, func(m *entities.Movement) entities.Location { return m.Origin })
	o.metrics.ObserveMovement("cancel", err == nil)
	if err != nil {
		return nil, err
	}

	o.publish(ctx, events.EquipmentLocationChangedEvent{
		EquipmentIDs: []uint64{movement.EquipmentID},
		MovementID:   &movement.ID,
		BatchID:      movement.BatchID,
		Reason:       events.ReasonCancel,
		ActorID:      actorFromCtx(ctx),
	})
	res := MovementToDTO(movement)
	return &res, nil
}

// closeMovement блокирует сначала единицу, затем перемещение (тот же порядок, что
// и в moveOne), закрывает перемещение и выставляет итоговое местонахождение.
func (o *MovementOrchestrator) closeMovement(
	ctx context.Context,
	movementID uint64,
	closeFn func(tx pgx.Tx) (*entities.Movement, error),
	target func(m *entities.Movement) entities.Location,
) (*entities.Movement, error) {
	current, err := o.ledger.Find(ctx, movementID)
	if err != nil {
		return nil, err
	}

	var closed *entities.Movement
	err = o.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		equipment, err := o.equipmentRepo.FindForUpdate(ctx, tx, current.EquipmentID)
		if err != nil {
			return err
		}

		closed, err = closeFn(tx)
		if err != nil {
			return err
		}

		if inTransit, ok := equipment.Location.(entities.InTransit); !ok || inTransit.MovementID != movementID {
			o.logger.Warn("Местонахождение единицы не указывает на закрываемое перемещение",
				zap.Uint64("equipmentID", equipment.ID),
				zap.Uint64("movementID", movementID),
				zap.String("location", string(kindOf(equipment.Location))),
			)
		}
		return o.equipmentRepo.UpdateLocation(ctx, tx, equipment.ID, target(closed))
	})
	if err != nil {
		return nil, err
	}
	return closed, nil
}

// ChangeLifecycle меняет состояние жизненного цикла единицы.
func (o *MovementOrchestrator) ChangeLifecycle(ctx context.Context, equipmentID uint64, state entities.LifecycleState) (*dto.EquipmentDTO, error) {
	return o.QuickEdit(ctx, equipmentID, dto.QuickEditDTO{LifecycleState: (*string)(&state)})
}

// QuickEdit - состояние жизненного цикла и метаданные (ОС, hostname, заметки) одной
// транзакцией. Местонахождение не меняется; hostname допустим только для единицы в
// точке продаж.
func (o *MovementOrchestrator) QuickEdit(ctx context.Context, equipmentID uint64, d dto.QuickEditDTO) (*dto.EquipmentDTO, error) {
	var (
		updated   *entities.Equipment
		stateSet  *entities.LifecycleState
		roles     = utils.GetRolesFromCtx(ctx)
		reason    = events.ReasonQuickEdit
		hasChange bool
	)

	if d.LifecycleState != nil {
		state := entities.LifecycleState(strings.ToUpper(*d.LifecycleState))
		if !state.Valid() {
			return nil, apperrors.NewValidationError("lifecycle_state", "неизвестное состояние %q", *d.LifecycleState)
		}
		stateSet = &state
	}

	err := o.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		equipment, err := o.equipmentRepo.FindForUpdate(ctx, tx, equipmentID)
		if err != nil {
			return err
		}
		if !equipment.Active {
			return apperrors.NewInvalidTransitionError(string(equipment.LifecycleState), "", "единица %d деактивирована", equipmentID)
		}

		if stateSet != nil && *stateSet != equipment.LifecycleState {
			if err := o.checkLifecycleChange(equipment, *stateSet, roles); err != nil {
				return err
			}
			if err := o.equipmentRepo.UpdateLifecycle(ctx, tx, equipmentID, *stateSet); err != nil {
				return err
			}
			hasChange = true
			reason = events.ReasonLifecycle
		}

		fields := make(map[string]interface{})
		if d.OS.Valid {
			fields["os"] = nullableString(d.OS.String)
		}
		if d.Notes.Valid {
			fields["notes"] = nullableString(d.Notes.String)
		}
		if len(fields) > 0 {
			if err := o.equipmentRepo.UpdateFields(ctx, tx, equipmentID, fields); err != nil {
				return err
			}
			hasChange = true
		}

		if d.Hostname.Valid {
			store, ok := equipment.Location.(entities.AtStore)
			if !ok {
				return apperrors.NewValidationError("hostname", "hostname задаётся только для единицы в точке продаж")
			}
			store.Hostname = nullableString(d.Hostname.String)
			if err := o.equipmentRepo.UpdateLocation(ctx, tx, equipmentID, store); err != nil {
				return err
			}
			hasChange = true
		}

		updated, err = o.equipmentRepo.FindByID(ctx, tx, equipmentID)
		return err
	})
	o.metrics.ObserveMovement("quick_edit", err == nil)
	if err != nil {
		return nil, err
	}

	if hasChange {
		if stateSet != nil {
			o.metrics.ObserveLifecycle(string(*stateSet))
		}
		var event eventbus.Event = events.EquipmentRecordChangedEvent{
			EquipmentIDs: []uint64{equipmentID},
			Reason:       reason,
			ActorID:      actorFromCtx(ctx),
		}
		if stateSet != nil {
			event = events.EquipmentLocationChangedEvent{
				EquipmentIDs: []uint64{equipmentID},
				Reason:       reason,
				ActorID:      actorFromCtx(ctx),
			}
		}
		o.publish(ctx, event)
	}
	res := EquipmentToDTO(updated)
	return &res, nil
}

// checkLifecycleChange: списание требует права и запрещено во время перемещения;
// из RETIRED выхода нет.
func (o *MovementOrchestrator) checkLifecycleChange(e *entities.Equipment, state entities.LifecycleState, roles []string) error {
	from, to := string(e.LifecycleState), string(state)
	if e.LifecycleState == entities.StateRetired {
		return apperrors.NewInvalidTransitionError(from, to, "списанная единица %d не может сменить состояние", e.ID)
	}
	if state != entities.StateRetired {
		return nil
	}
	if o.retireChecker == nil || !o.retireChecker.HasPermission(roles) {
		return apperrors.ErrPermissionDenied
	}
	if e.IsInTransit() {
		return apperrors.NewConflictError("единица %d в пути: сначала завершите или отмените перемещение", e.ID)
	}
	return nil
}

func (o *MovementOrchestrator) publish(ctx context.Context, event eventbus.Event) {
	if o.publisher == nil {
		return
	}
	if err := o.publisher.Publish(ctx, event); err != nil {
		o.logger.Error("Ошибка публикации события", zap.String("event", event.Name()), zap.Error(err))
	}
}

// History и StuckMovements - чтение журнала для контроллеров.
func (o *MovementOrchestrator) History(ctx context.Context, equipmentID uint64) ([]dto.MovementDTO, error) {
	if _, err := o.equipmentRepo.FindByID(ctx, nil, equipmentID); err != nil {
		return nil, err
	}
	items, err := o.ledger.History(ctx, equipmentID)
	if err != nil {
		return nil, err
	}
	return MovementsToDTO(items), nil
}

func (o *MovementOrchestrator) StuckMovements(ctx context.Context, thresholdDays int) ([]dto.StuckMovementDTO, error) {
	items, err := o.ledger.OpenMovementsOlderThan(ctx, thresholdDays)
	if err != nil {
		return nil, err
	}
	now := o.now()
	result := make([]dto.StuckMovementDTO, 0, len(items))
	for i := range items {
		age := now.Sub(items[i].DepartedAt)
		if age < 0 {
			age = 0
		}
		seconds := uint64(age / time.Second)
		result = append(result, dto.StuckMovementDTO{
			MovementDTO:      MovementToDTO(&items[i]),
			InTransitFor:     utils.FormatSecondsToHumanReadable(seconds),
			InTransitSeconds: seconds,
		})
	}
	return result, nil
}

func uniqueIDs(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func nullableString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
