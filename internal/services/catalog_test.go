package services

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"inventory-system/internal/dto"
	"inventory-system/internal/entities"
	apperrors "inventory-system/pkg/errors"
)

type fakeCatalogRepo struct {
	items        map[uint64]entities.CatalogItem
	optionsCalls int
}

func (r *fakeCatalogRepo) FindByID(ctx context.Context, id uint64) (*entities.CatalogItem, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &item, nil
}

func (r *fakeCatalogRepo) FindByIDs(ctx context.Context, ids []uint64) (map[uint64]entities.CatalogItem, error) {
	out := make(map[uint64]entities.CatalogItem, len(ids))
	for _, id := range ids {
		if item, ok := r.items[id]; ok {
			out[id] = item
		}
	}
	return out, nil
}

func (r *fakeCatalogRepo) Options(ctx context.Context, level entities.CatalogLevel, parentID *uint64) ([]entities.CatalogItem, error) {
	r.optionsCalls++
	var out []entities.CatalogItem
	for _, item := range r.items {
		if item.Level != level || !item.Active {
			continue
		}
		if (parentID == nil) != (item.ParentID == nil) {
			continue
		}
		if parentID != nil && *parentID != *item.ParentID {
			continue
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func newFakeCatalogRepo() *fakeCatalogRepo {
	item := func(id uint64, level entities.CatalogLevel, parent uint64, name string) entities.CatalogItem {
		it := entities.CatalogItem{ID: id, Level: level, Name: name, Active: true}
		if parent != 0 {
			it.ParentID = &parent
		}
		return it
	}
	items := []entities.CatalogItem{
		item(1, entities.LevelCategory, 0, "POS"),
		item(2, entities.LevelCategory, 0, "Принтеры"),
		item(10, entities.LevelSubcategory, 1, "Моноблоки"),
		item(20, entities.LevelSubcategory, 2, "Чековые"),
		item(100, entities.LevelBrand, 10, "Posiflex"),
		item(200, entities.LevelBrand, 20, "Atol"),
		item(1000, entities.LevelModel, 100, "XT-3815"),
		item(2000, entities.LevelModel, 200, "30Ф"),
	}
	repo := &fakeCatalogRepo{items: make(map[uint64]entities.CatalogItem)}
	for _, it := range items {
		repo.items[it.ID] = it
	}
	return repo
}

func TestCatalogService_ValidateClassification(t *testing.T) {
	repo := newFakeCatalogRepo()
	svc := NewCatalogService(repo, nil, 0, nil, zap.NewNop())
	ctx := context.Background()

	assert.NoError(t, svc.ValidateClassification(ctx, entities.Classification{CategoryID: 1, SubcategoryID: 10, BrandID: 100, ModelID: 1000}))

	cases := []struct {
		name  string
		c     entities.Classification
		field string
	}{
		{"пустая модель", entities.Classification{CategoryID: 1, SubcategoryID: 10, BrandID: 100}, "model_id"},
		{"несуществующий бренд", entities.Classification{CategoryID: 1, SubcategoryID: 10, BrandID: 999, ModelID: 1000}, "brand_id"},
		{"модель чужого бренда", entities.Classification{CategoryID: 1, SubcategoryID: 10, BrandID: 100, ModelID: 2000}, "model_id"},
		{"уровни перепутаны", entities.Classification{CategoryID: 10, SubcategoryID: 1, BrandID: 100, ModelID: 1000}, "category_id"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.ValidateClassification(ctx, tc.c)
			var vErr *apperrors.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tc.field, vErr.Field)
		})
	}

	t.Run("неактивная подкатегория", func(t *testing.T) {
		it := repo.items[10]
		it.Active = false
		repo.items[10] = it
		defer func() { it.Active = true; repo.items[10] = it }()

		err := svc.ValidateClassification(ctx, entities.Classification{CategoryID: 1, SubcategoryID: 10, BrandID: 100, ModelID: 1000})
		var vErr *apperrors.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "subcategory_id", vErr.Field)
	})
}

func TestCatalogService_OptionsAreCached(t *testing.T) {
	repo := newFakeCatalogRepo()
	svc := NewCatalogService(repo, newFakeCacheRepo(), time.Minute, nil, zap.NewNop())
	ctx := context.Background()

	first, err := svc.Options(ctx, entities.LevelSubcategory, u64(2))
	require.NoError(t, err)
	second, err := svc.Options(ctx, entities.LevelSubcategory, u64(2))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.optionsCalls)

	_, err = svc.Options(ctx, entities.LevelBrand, nil)
	assert.Equal(t, "VALIDATION_ERROR", apperrors.Code(err))
	_, err = svc.Options(ctx, entities.LevelCategory, u64(1))
	assert.Equal(t, "VALIDATION_ERROR", apperrors.Code(err))
}

func TestCatalogService_Cascade(t *testing.T) {
	svc := NewCatalogService(newFakeCatalogRepo(), nil, 0, nil, zap.NewNop())
	ctx := context.Background()

	state, err := svc.Cascade(ctx, dto.CascadeSelectionDTO{CategoryID: u64(2), SubcategoryID: u64(20)})
	require.NoError(t, err)
	assert.Equal(t, u64(20), state.Selection.SubcategoryID)
	require.Len(t, state.Options["brand"], 1)
	assert.Equal(t, uint64(200), state.Options["brand"][0].ID)

	_, err = svc.Cascade(ctx, dto.CascadeSelectionDTO{CategoryID: u64(2), SubcategoryID: u64(10)})
	assert.Equal(t, "VALIDATION_ERROR", apperrors.Code(err))
}
