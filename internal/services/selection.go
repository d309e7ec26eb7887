package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"inventory-system/internal/dto"
	"inventory-system/internal/entities"
	"inventory-system/internal/repositories"
	"inventory-system/pkg/utils"
	"inventory-system/pkg/websocket"
)

// BatchExecutor - то, чем SelectionService отправляет выбор на перемещение.
type BatchExecutor interface {
	Execute(ctx context.Context, equipmentIDs []uint64, destination entities.Location, opts MoveOptions) (*dto.BatchMovementResultDTO, error)
}

// UserNotifier доставляет сообщение всем открытым вкладкам оператора.
type UserNotifier interface {
	SendMessageToUser(userID uint64, payload interface{}, messageType string) error
}

// SelectionService хранит набор выбранных единиц каждого оператора в Redis.
type SelectionService struct {
	selectionRepo repositories.SelectionRepositoryInterface
	executor      BatchExecutor
	notifier      UserNotifier
	now           func() time.Time
	logger        *zap.Logger
}

func NewSelectionService(
	selectionRepo repositories.SelectionRepositoryInterface,
	executor BatchExecutor,
	notifier UserNotifier,
	now func() time.Time,
	logger *zap.Logger,
) *SelectionService {
	if now == nil {
		now = time.Now
	}
	return &SelectionService{selectionRepo: selectionRepo, executor: executor, notifier: notifier, now: now, logger: logger}
}

func (s *SelectionService) notify(userID uint64, selection *dto.SelectionDTO) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.SendMessageToUser(userID, selection, websocket.MessageSelectionChanged); err != nil {
		s.logger.Warn("Не удалось отправить изменение выбора", zap.Uint64("userID", userID), zap.Error(err))
	}
}

func (s *SelectionService) tracker(ctx context.Context) (uint64, *SelectionTracker, error) {
	userID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return 0, nil, err
	}
	ids, err := s.selectionRepo.Members(ctx, userID)
	if err != nil {
		return 0, nil, err
	}
	return userID, NewSelectionTracker(ids...), nil
}

func toSelectionDTO(t *SelectionTracker) *dto.SelectionDTO {
	return &dto.SelectionDTO{SelectedIDs: t.SelectedIDs(), SelectedCount: t.Len()}
}

func (s *SelectionService) Get(ctx context.Context) (*dto.SelectionDTO, error) {
	_, t, err := s.tracker(ctx)
	if err != nil {
		return nil, err
	}
	return toSelectionDTO(t), nil
}

func (s *SelectionService) Toggle(ctx context.Context, equipmentID uint64) (*dto.SelectionDTO, error) {
	userID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.selectionRepo.Toggle(ctx, userID, equipmentID); err != nil {
		return nil, err
	}
	selection, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	s.notify(userID, selection)
	return selection, nil
}

func (s *SelectionService) Clear(ctx context.Context) error {
	userID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return err
	}
	if err := s.selectionRepo.Clear(ctx, userID); err != nil {
		return err
	}
	s.notify(userID, &dto.SelectionDTO{SelectedIDs: []uint64{}})
	return nil
}

func (s *SelectionService) Reconcile(ctx context.Context, pageIDs []uint64) (*dto.PageSelectionDTO, error) {
	_, t, err := s.tracker(ctx)
	if err != nil {
		return nil, err
	}
	res := t.ReconcileWithPage(pageIDs)
	return &res, nil
}

// Submit отправляет весь выбор одним пакетом. После обработки пакета набор очищается
// независимо от результатов по отдельным единицам: неудачные видны в ответе.
func (s *SelectionService) Submit(ctx context.Context, d dto.SubmitSelectionDTO) (*dto.BatchMovementResultDTO, error) {
	userID, t, err := s.tracker(ctx)
	if err != nil {
		return nil, err
	}
	destination, err := LocationFromDTO(d.Destination, s.now())
	if err != nil {
		return nil, err
	}

	opts := MoveOptions{
		ImmediateComplete: d.ImmediateComplete,
		DepartAt:          d.DepartAt,
		Note:              d.Note,
	}
	if err := opts.Validate(s.now()); err != nil {
		return nil, err
	}

	result, err := s.executor.Execute(ctx, t.SelectedIDs(), destination, opts)
	if err != nil {
		return nil, err
	}

	if err := s.selectionRepo.Clear(ctx, userID); err != nil {
		s.logger.Warn("Не удалось очистить выбор после отправки", zap.Uint64("userID", userID), zap.Error(err))
	} else {
		s.notify(userID, &dto.SelectionDTO{SelectedIDs: []uint64{}})
	}
	return result, nil
}
