package services

import (
	"context"

	"inventory-system/internal/dto"
	"inventory-system/internal/entities"
	apperrors "inventory-system/pkg/errors"
	"inventory-system/pkg/types"
)

// CatalogOptionsLoader - источник опций для каскада.
type CatalogOptionsLoader interface {
	Options(ctx context.Context, level entities.CatalogLevel, parentID *uint64) ([]dto.CatalogOptionDTO, error)
}

// CatalogCascade - каскадный фильтр категория -> подкатегория -> бренд -> модель.
// Выбор уровня сбрасывает все более глубокие уровни и загружает опции только
// следующего уровня.
type CatalogCascade struct {
	loader   CatalogOptionsLoader
	selected []*uint64
	options  [][]dto.CatalogOptionDTO
}

func NewCatalogCascade(loader CatalogOptionsLoader) *CatalogCascade {
	n := len(entities.CatalogLevels)
	return &CatalogCascade{
		loader:   loader,
		selected: make([]*uint64, n),
		options:  make([][]dto.CatalogOptionDTO, n),
	}
}

// Init загружает категории и сбрасывает выбор.
func (c *CatalogCascade) Init(ctx context.Context) error {
	c.reset(0)
	categories, err := c.loader.Options(ctx, entities.LevelCategory, nil)
	if err != nil {
		return err
	}
	c.options[0] = categories
	return nil
}

// Select выбирает элемент уровня; id == nil очищает уровень.
func (c *CatalogCascade) Select(ctx context.Context, level entities.CatalogLevel, id *uint64) error {
	depth := level.Depth()
	if depth < 0 {
		return apperrors.NewValidationError("level", "неизвестный уровень каталога %q", level)
	}
	if id != nil && !containsOption(c.options[depth], *id) {
		return apperrors.NewValidationError(string(level), "элемент %d недоступен для выбора", *id)
	}

	c.reset(depth + 1)
	if id == nil {
		c.selected[depth] = nil
		return nil
	}
	selected := *id
	c.selected[depth] = &selected

	if depth+1 >= len(entities.CatalogLevels) {
		return nil
	}
	next, err := c.loader.Options(ctx, entities.CatalogLevels[depth+1], &selected)
	if err != nil {
		return err
	}
	c.options[depth+1] = next
	return nil
}

// Clear очищает уровень и все более глубокие.
func (c *CatalogCascade) Clear(ctx context.Context, level entities.CatalogLevel) error {
	return c.Select(ctx, level, nil)
}

// reset очищает выбор и опции начиная с уровня from.
func (c *CatalogCascade) reset(from int) {
	for i := from; i < len(c.selected); i++ {
		c.selected[i] = nil
		c.options[i] = nil
	}
}

// Options - загруженные опции уровня; nil, если уровень ещё не загружен.
func (c *CatalogCascade) Options(level entities.CatalogLevel) []dto.CatalogOptionDTO {
	depth := level.Depth()
	if depth < 0 {
		return nil
	}
	return c.options[depth]
}

func (c *CatalogCascade) Selection() dto.CascadeSelectionDTO {
	return dto.CascadeSelectionDTO{
		CategoryID:    c.selected[0],
		SubcategoryID: c.selected[1],
		BrandID:       c.selected[2],
		ModelID:       c.selected[3],
	}
}

func (c *CatalogCascade) State() dto.CascadeStateDTO {
	state := dto.CascadeStateDTO{
		Selection: c.Selection(),
		Options:   make(map[string][]dto.CatalogOptionDTO),
	}
	for i, level := range entities.CatalogLevels {
		if c.options[i] != nil {
			state.Options[string(level)] = c.options[i]
		}
	}
	return state
}

// ApplyToFilter переносит выбранные уровни в фильтр списка оборудования.
func (c *CatalogCascade) ApplyToFilter(filter *types.Filter) {
	if filter.Filter == nil {
		filter.Filter = make(map[string]interface{})
	}
	for i, field := range classificationFields {
		if c.selected[i] != nil {
			filter.Filter[field] = *c.selected[i]
		} else {
			delete(filter.Filter, field)
		}
	}
}

func containsOption(options []dto.CatalogOptionDTO, id uint64) bool {
	for _, o := range options {
		if o.ID == id {
			return true
		}
	}
	return false
}
