package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"inventory-system/internal/dto"
	"inventory-system/internal/entities"
	"inventory-system/internal/repositories"
	"inventory-system/pkg/constants"
	apperrors "inventory-system/pkg/errors"
	"inventory-system/pkg/metrics"
)

type CatalogServiceInterface interface {
	ValidateClassification(ctx context.Context, c entities.Classification) error
	Options(ctx context.Context, level entities.CatalogLevel, parentID *uint64) ([]dto.CatalogOptionDTO, error)
	Cascade(ctx context.Context, selection dto.CascadeSelectionDTO) (*dto.CascadeStateDTO, error)
}

type CatalogService struct {
	catalogRepo repositories.CatalogRepositoryInterface
	cacheRepo   repositories.CacheRepositoryInterface
	cacheTTL    time.Duration
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

func NewCatalogService(
	catalogRepo repositories.CatalogRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	cacheTTL time.Duration,
	m *metrics.Metrics,
	logger *zap.Logger,
) *CatalogService {
	return &CatalogService{
		catalogRepo: catalogRepo,
		cacheRepo:   cacheRepo,
		cacheTTL:    cacheTTL,
		metrics:     m,
		logger:      logger,
	}
}

var classificationFields = []string{"category_id", "subcategory_id", "brand_id", "model_id"}

// ValidateClassification проверяет, что все четыре ссылки существуют, активны,
// относятся к своему уровню и образуют одну цепочку родитель -> потомок.
func (s *CatalogService) ValidateClassification(ctx context.Context, c entities.Classification) error {
	ids := c.IDs()
	for i, id := range ids {
		if id == 0 {
			return apperrors.NewValidationError(classificationFields[i], "обязательное поле")
		}
	}

	items, err := s.catalogRepo.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}

	var parent *uint64
	for i, id := range ids {
		field, level := classificationFields[i], entities.CatalogLevels[i]
		item, ok := items[id]
		if !ok {
			return apperrors.NewValidationError(field, "элемент каталога %d не найден", id)
		}
		if !item.Active {
			return apperrors.NewValidationError(field, "элемент каталога %d неактивен", id)
		}
		if item.Level != level {
			return apperrors.NewValidationError(field, "элемент каталога %d относится к уровню %s, ожидается %s", id, item.Level, level)
		}
		if parent != nil && (item.ParentID == nil || *item.ParentID != *parent) {
			return apperrors.NewValidationError(field, "элемент каталога %d не принадлежит выбранному %s", id, entities.CatalogLevels[i-1])
		}
		parent = &ids[i]
	}
	return nil
}

// Options - активные элементы уровня под родителем. Для категорий родителя нет,
// для остальных уровней он обязателен.
func (s *CatalogService) Options(ctx context.Context, level entities.CatalogLevel, parentID *uint64) ([]dto.CatalogOptionDTO, error) {
	depth := level.Depth()
	if depth < 0 {
		return nil, apperrors.NewValidationError("level", "неизвестный уровень каталога %q", level)
	}
	if depth == 0 && parentID != nil {
		return nil, apperrors.NewValidationError("parent_id", "у категорий нет родителя")
	}
	if depth > 0 && parentID == nil {
		return nil, apperrors.NewValidationError("parent_id", "для уровня %s нужен родитель", level)
	}

	var parentKey uint64
	if parentID != nil {
		parentKey = *parentID
	}
	cacheKey := fmt.Sprintf(constants.CacheKeyCatalogOptions, level, parentKey)

	if s.cacheRepo != nil {
		cached, errGet := s.cacheRepo.Get(ctx, cacheKey)
		if errGet == nil {
			var options []dto.CatalogOptionDTO
			if err := json.Unmarshal([]byte(cached), &options); err == nil {
				s.metrics.ObserveCache("hit")
				return options, nil
			}
			s.logger.Warn("Битые данные опций каталога в кеше", zap.String("key", cacheKey))
		} else if !repositories.IsCacheMiss(errGet) {
			s.logger.Warn("Ошибка чтения кеша каталога", zap.String("key", cacheKey), zap.Error(errGet))
		}
		s.metrics.ObserveCache("miss")
	}

	items, err := s.catalogRepo.Options(ctx, level, parentID)
	if err != nil {
		return nil, err
	}
	options := make([]dto.CatalogOptionDTO, 0, len(items))
	for _, item := range items {
		options = append(options, dto.CatalogOptionDTO{ID: item.ID, Name: item.Name})
	}

	if s.cacheRepo != nil {
		if data, errMarshal := json.Marshal(options); errMarshal == nil {
			if errSet := s.cacheRepo.Set(ctx, cacheKey, string(data), s.cacheTTL); errSet != nil {
				s.logger.Warn("Не удалось сохранить опции каталога в кеш", zap.Error(errSet))
			}
		}
	}
	return options, nil
}

// Cascade воспроизводит выбор пользователя через каскад и возвращает итоговое состояние.
// Выбор, не входящий в опции своего уровня, отклоняется.
func (s *CatalogService) Cascade(ctx context.Context, selection dto.CascadeSelectionDTO) (*dto.CascadeStateDTO, error) {
	cascade := NewCatalogCascade(s)
	if err := cascade.Init(ctx); err != nil {
		return nil, err
	}
	steps := []*uint64{selection.CategoryID, selection.SubcategoryID, selection.BrandID, selection.ModelID}
	for i, id := range steps {
		if id == nil {
			break
		}
		if err := cascade.Select(ctx, entities.CatalogLevels[i], id); err != nil {
			return nil, err
		}
	}
	state := cascade.State()
	return &state, nil
}
