package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"inventory-system/internal/authz"
	"inventory-system/internal/dto"
	"inventory-system/internal/entities"
	"inventory-system/internal/events"
	"inventory-system/internal/repositories"
	apperrors "inventory-system/pkg/errors"
	"inventory-system/pkg/types"
	"inventory-system/pkg/utils"
)

type EquipmentServiceInterface interface {
	GetByID(ctx context.Context, id uint64) (*dto.EquipmentDTO, error)
	List(ctx context.Context, filter types.Filter) ([]dto.EquipmentDTO, uint64, error)
	Create(ctx context.Context, d dto.CreateEquipmentDTO) (*dto.EquipmentDTO, error)
	Update(ctx context.Context, id uint64, d dto.UpdateEquipmentDTO) (*dto.EquipmentDTO, error)
	SoftDelete(ctx context.Context, id uint64) error
	Reactivate(ctx context.Context, id uint64, d dto.ReactivateEquipmentDTO) (*dto.EquipmentDTO, error)
}

// ClassificationValidator - проверка ссылок на каталог при создании и восстановлении.
type ClassificationValidator interface {
	ValidateClassification(ctx context.Context, c entities.Classification) error
}

// EquipmentService - реестр единиц оборудования. Местонахождение и состояние
// жизненного цикла после создания меняет только MovementOrchestrator.
type EquipmentService struct {
	txManager     repositories.TxManagerInterface
	equipmentRepo repositories.EquipmentRepositoryInterface
	catalog       ClassificationValidator
	cache         *EquipmentCache
	publisher     EventPublisher
	deleteChecker authz.PermissionChecker
	now           func() time.Time
	logger        *zap.Logger
}

func NewEquipmentService(
	txManager repositories.TxManagerInterface,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	catalog ClassificationValidator,
	cache *EquipmentCache,
	publisher EventPublisher,
	deleteChecker authz.PermissionChecker,
	now func() time.Time,
	logger *zap.Logger,
) *EquipmentService {
	if now == nil {
		now = time.Now
	}
	return &EquipmentService{
		txManager:     txManager,
		equipmentRepo: equipmentRepo,
		catalog:       catalog,
		cache:         cache,
		publisher:     publisher,
		deleteChecker: deleteChecker,
		now:           now,
		logger:        logger,
	}
}

func (s *EquipmentService) GetByID(ctx context.Context, id uint64) (*dto.EquipmentDTO, error) {
	// Поколение читается до запроса к БД: карточка, прочитанная до перемещения и
	// дописанная после Invalidate, уйдёт под устаревший ключ.
	gen := noGeneration
	if s.cache != nil {
		gen = s.cache.Generation(ctx)
		if item, ok := s.cache.GetItem(ctx, gen, id); ok {
			return item, nil
		}
	}
	e, err := s.equipmentRepo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	res := EquipmentToDTO(e)
	if s.cache != nil {
		s.cache.SetItem(ctx, gen, res)
	}
	return &res, nil
}

func (s *EquipmentService) List(ctx context.Context, filter types.Filter) ([]dto.EquipmentDTO, uint64, error) {
	gen := noGeneration
	if s.cache != nil {
		gen = s.cache.Generation(ctx)
		if items, total, ok := s.cache.GetPage(ctx, gen, filter); ok {
			return items, total, nil
		}
	}

	entitiesList, total, err := s.equipmentRepo.GetAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	items := make([]dto.EquipmentDTO, 0, len(entitiesList))
	for _, e := range entitiesList {
		items = append(items, EquipmentToDTO(e))
	}

	if s.cache != nil {
		s.cache.SetPage(ctx, gen, filter, items, total)
	}
	return items, total, nil
}

// Create регистрирует единицу. Без местонахождения единица создаётся на складе;
// IN_TRANSIT и RETIRED при создании недопустимы.
func (s *EquipmentService) Create(ctx context.Context, d dto.CreateEquipmentDTO) (*dto.EquipmentDTO, error) {
	serial, invCode := trimmed(d.SerialNumber), trimmed(d.InventoryCode)
	if serial == nil && invCode == nil {
		return nil, apperrors.NewValidationError("serial_number", "нужен серийный номер или инвентарный код")
	}

	state := entities.StateOperational
	if d.LifecycleState != "" {
		state = entities.LifecycleState(strings.ToUpper(d.LifecycleState))
		if !state.Valid() {
			return nil, apperrors.NewValidationError("lifecycle_state", "неизвестное состояние %q", d.LifecycleState)
		}
		if state == entities.StateRetired {
			return nil, apperrors.NewValidationError("lifecycle_state", "нельзя зарегистрировать списанную единицу")
		}
	}

	var location entities.Location = entities.AtWarehouse{}
	if d.Location != nil {
		loc, err := LocationFromDTO(*d.Location, s.now())
		if err != nil {
			return nil, err
		}
		location = loc
	}

	classification := entities.Classification{
		CategoryID:    d.CategoryID,
		SubcategoryID: d.SubcategoryID,
		BrandID:       d.BrandID,
		ModelID:       d.ModelID,
	}
	if err := s.catalog.ValidateClassification(ctx, classification); err != nil {
		return nil, err
	}

	equipment := entities.Equipment{
		SerialNumber:   serial,
		InventoryCode:  invCode,
		CategoryID:     d.CategoryID,
		SubcategoryID:  d.SubcategoryID,
		BrandID:        d.BrandID,
		ModelID:        d.ModelID,
		LifecycleState: state,
		Location:       location,
		ParentID:       d.ParentID,
		OS:             trimmed(d.OS),
		Notes:          trimmed(d.Notes),
		Active:         true,
	}

	var created *entities.Equipment
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if d.ParentID != nil {
			if err := s.checkParent(ctx, tx, 0, *d.ParentID); err != nil {
				return err
			}
		}
		id, err := s.equipmentRepo.Create(ctx, tx, equipment)
		if err != nil {
			return err
		}
		created, err = s.equipmentRepo.FindByID(ctx, tx, id)
		return err
	})
	if err != nil {
		s.logger.Error("Ошибка при создании оборудования", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Оборудование зарегистрировано",
		zap.Uint64("equipmentID", created.ID),
		zap.String("location", string(created.Location.Kind())),
	)
	s.publish(ctx, []uint64{created.ID}, events.ReasonCreated)
	res := EquipmentToDTO(created)
	return &res, nil
}

// Update - частичное обновление идентификации, классификации, родителя, ОС и заметок.
// Меняются только поля, пришедшие в запросе.
func (s *EquipmentService) Update(ctx context.Context, id uint64, d dto.UpdateEquipmentDTO) (*dto.EquipmentDTO, error) {
	var updated *entities.Equipment

	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		current, err := s.equipmentRepo.FindForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if !current.Active {
			return apperrors.NewInvalidTransitionError("", "", "единица %d деактивирована", id)
		}

		fields := make(map[string]interface{})
		serial, invCode := current.SerialNumber, current.InventoryCode
		if d.Sent("serial_number") {
			serial = trimmed(d.SerialNumber.Ptr())
			fields["serial_number"] = serial
		}
		if d.Sent("inventory_code") {
			invCode = trimmed(d.InventoryCode.Ptr())
			fields["inventory_code"] = invCode
		}
		if serial == nil && invCode == nil {
			return apperrors.NewValidationError("serial_number", "нужен серийный номер или инвентарный код")
		}

		classification := current.Classification()
		classificationChanged := false
		setClassification := func(field string, src *uint64, dst *uint64) {
			if src == nil {
				return
			}
			fields[field] = *src
			*dst = *src
			classificationChanged = true
		}
		setClassification("category_id", d.CategoryID, &classification.CategoryID)
		setClassification("subcategory_id", d.SubcategoryID, &classification.SubcategoryID)
		setClassification("brand_id", d.BrandID, &classification.BrandID)
		setClassification("model_id", d.ModelID, &classification.ModelID)
		if classificationChanged {
			if err := s.catalog.ValidateClassification(ctx, classification); err != nil {
				return err
			}
		}

		if d.Sent("parent_id") {
			if d.ParentID.Valid {
				if err := s.checkParent(ctx, tx, id, d.ParentID.Uint64); err != nil {
					return err
				}
				fields["parent_id"] = d.ParentID.Uint64
			} else {
				fields["parent_id"] = nil
			}
		}
		if d.Sent("os") {
			fields["os"] = trimmed(d.OS.Ptr())
		}
		if d.Sent("notes") {
			fields["notes"] = trimmed(d.Notes.Ptr())
		}

		if err := s.equipmentRepo.UpdateFields(ctx, tx, id, fields); err != nil {
			return err
		}
		updated, err = s.equipmentRepo.FindByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, []uint64{id}, events.ReasonUpdated)
	res := EquipmentToDTO(updated)
	return &res, nil
}

// SoftDelete деактивирует единицу. Аксессуары не удаляются: у них снимается ссылка
// на родителя. Единицу в пути удалить нельзя.
func (s *EquipmentService) SoftDelete(ctx context.Context, id uint64) error {
	if s.deleteChecker == nil || !s.deleteChecker.HasPermission(utils.GetRolesFromCtx(ctx)) {
		return apperrors.ErrPermissionDenied
	}

	var detached []uint64
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		current, err := s.equipmentRepo.FindForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if !current.Active {
			return apperrors.ErrNotFound
		}
		if current.IsInTransit() {
			return apperrors.NewConflictError("единица %d в пути: сначала завершите или отмените перемещение", id)
		}
		if err := s.equipmentRepo.Deactivate(ctx, tx, id); err != nil {
			return err
		}
		detached, err = s.equipmentRepo.ClearParentRefs(ctx, tx, id)
		return err
	})
	if err != nil {
		return err
	}

	s.logger.Info("Оборудование деактивировано",
		zap.Uint64("equipmentID", id),
		zap.Int("detachedAccessories", len(detached)),
	)
	s.publish(ctx, []uint64{id}, events.ReasonDeleted)
	if len(detached) > 0 {
		s.publish(ctx, detached, events.ReasonAccessoryDetach)
	}
	return nil
}

// Reactivate восстанавливает деактивированную единицу. Классификация передаётся
// заново и проверяется по каталогу на момент восстановления.
func (s *EquipmentService) Reactivate(ctx context.Context, id uint64, d dto.ReactivateEquipmentDTO) (*dto.EquipmentDTO, error) {
	classification := entities.Classification{
		CategoryID:    d.CategoryID,
		SubcategoryID: d.SubcategoryID,
		BrandID:       d.BrandID,
		ModelID:       d.ModelID,
	}
	if err := s.catalog.ValidateClassification(ctx, classification); err != nil {
		return nil, err
	}
	serial, invCode := trimmed(d.SerialNumber), trimmed(d.InventoryCode)

	var restored *entities.Equipment
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		current, err := s.equipmentRepo.FindForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if current.Active {
			return apperrors.NewConflictError("единица %d уже активна", id)
		}
		if serial == nil && invCode == nil && current.SerialNumber == nil && current.InventoryCode == nil {
			return apperrors.NewValidationError("serial_number", "нужен серийный номер или инвентарный код")
		}
		if err := s.equipmentRepo.Reactivate(ctx, tx, id, classification, serial, invCode); err != nil {
			return err
		}
		restored, err = s.equipmentRepo.FindByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Оборудование восстановлено", zap.Uint64("equipmentID", id))
	s.publish(ctx, []uint64{id}, events.ReasonReactivated)
	res := EquipmentToDTO(restored)
	return &res, nil
}

// checkParent: родитель существует, активен и не совпадает с самой единицей.
func (s *EquipmentService) checkParent(ctx context.Context, tx pgx.Tx, selfID, parentID uint64) error {
	if parentID == selfID {
		return apperrors.NewValidationError("parent_id", "единица не может быть подключена к самой себе")
	}
	parent, err := s.equipmentRepo.FindByID(ctx, tx, parentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewValidationError("parent_id", "родительская единица %d не найдена", parentID)
		}
		return err
	}
	if !parent.Active {
		return apperrors.NewValidationError("parent_id", "родительская единица %d деактивирована", parentID)
	}
	return nil
}

func (s *EquipmentService) publish(ctx context.Context, ids []uint64, reason string) {
	if s.publisher == nil {
		return
	}
	event := events.EquipmentRecordChangedEvent{EquipmentIDs: ids, Reason: reason, ActorID: actorFromCtx(ctx)}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Ошибка публикации события", zap.String("event", event.Name()), zap.Error(err))
	}
}
