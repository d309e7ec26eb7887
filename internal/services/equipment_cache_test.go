package services

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"inventory-system/internal/dto"
	"inventory-system/internal/repositories"
	"inventory-system/pkg/constants"
	"inventory-system/pkg/types"
)

type fakeCacheRepo struct {
	data map[string]string
}

func newFakeCacheRepo() *fakeCacheRepo { return &fakeCacheRepo{data: make(map[string]string)} }

func (c *fakeCacheRepo) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	c.data[key] = value.(string)
	return nil
}

func (c *fakeCacheRepo) Get(ctx context.Context, key string) (string, error) {
	v, ok := c.data[key]
	if !ok {
		return "", repositories.ErrCacheMiss
	}
	return v, nil
}

func (c *fakeCacheRepo) Del(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *fakeCacheRepo) Incr(ctx context.Context, key string) (int64, error) {
	n, _ := strconv.ParseInt(c.data[key], 10, 64)
	n++
	c.data[key] = strconv.FormatInt(n, 10)
	return n, nil
}

func (c *fakeCacheRepo) Expire(ctx context.Context, key string, expiration time.Duration) (bool, error) {
	_, ok := c.data[key]
	return ok, nil
}

func TestEquipmentCache_InvalidateDropsItemsAndPages(t *testing.T) {
	ctx := context.Background()
	cache := NewEquipmentCache(newFakeCacheRepo(), time.Minute, nil, zap.NewNop())
	filter := types.Filter{Limit: 20, Page: 1, Filter: map[string]interface{}{"location_kind": "STORE"}}

	gen := cache.Generation(ctx)
	cache.SetItem(ctx, gen, dto.EquipmentDTO{ID: 1, LifecycleState: "OPERATIONAL"})
	cache.SetPage(ctx, gen, filter, []dto.EquipmentDTO{{ID: 1}}, 1)

	item, ok := cache.GetItem(ctx, gen, 1)
	require.True(t, ok)
	assert.Equal(t, "OPERATIONAL", item.LifecycleState)
	items, total, ok := cache.GetPage(ctx, gen, filter)
	require.True(t, ok)
	assert.Len(t, items, 1)
	assert.Equal(t, uint64(1), total)

	require.NoError(t, cache.Invalidate(ctx, []uint64{1}))

	gen = cache.Generation(ctx)
	_, ok = cache.GetItem(ctx, gen, 1)
	assert.False(t, ok)
	_, _, ok = cache.GetPage(ctx, gen, filter)
	assert.False(t, ok)
}

func TestEquipmentCache_LateWriteUnderOldGenerationIsUnreachable(t *testing.T) {
	ctx := context.Background()
	cache := NewEquipmentCache(newFakeCacheRepo(), time.Minute, nil, zap.NewNop())
	filter := types.Filter{Limit: 20, Page: 1}

	// Читатель взял поколение, затем прошла инвалидация, затем он дописал данные.
	readerGen := cache.Generation(ctx)
	require.NoError(t, cache.Invalidate(ctx, []uint64{1}))
	cache.SetItem(ctx, readerGen, dto.EquipmentDTO{ID: 1, Location: dto.LocationDTO{Kind: "WAREHOUSE"}})
	cache.SetPage(ctx, readerGen, filter, []dto.EquipmentDTO{{ID: 1}}, 1)

	current := cache.Generation(ctx)
	assert.NotEqual(t, readerGen, current)
	_, ok := cache.GetItem(ctx, current, 1)
	assert.False(t, ok)
	_, _, ok = cache.GetPage(ctx, current, filter)
	assert.False(t, ok)
}

type brokenGenerationRepo struct{ *fakeCacheRepo }

func (r brokenGenerationRepo) Get(ctx context.Context, key string) (string, error) {
	if key == constants.CacheKeyEquipmentGeneration {
		return "", errors.New("redis down")
	}
	return r.fakeCacheRepo.Get(ctx, key)
}

func TestEquipmentCache_UnreadableGenerationBypassesCache(t *testing.T) {
	ctx := context.Background()
	repo := newFakeCacheRepo()
	cache := NewEquipmentCache(brokenGenerationRepo{repo}, time.Minute, nil, zap.NewNop())

	gen := cache.Generation(ctx)
	cache.SetItem(ctx, gen, dto.EquipmentDTO{ID: 1})
	cache.SetPage(ctx, gen, types.Filter{}, []dto.EquipmentDTO{{ID: 1}}, 1)

	assert.Empty(t, repo.data)
	_, ok := cache.GetItem(ctx, gen, 1)
	assert.False(t, ok)
}

func TestFilterFingerprint(t *testing.T) {
	a := types.Filter{Limit: 20, Filter: map[string]interface{}{"brand_id": "1", "model_id": "2"}}
	b := types.Filter{Limit: 20, Filter: map[string]interface{}{"model_id": "2", "brand_id": "1"}}
	c := types.Filter{Limit: 50, Filter: map[string]interface{}{"brand_id": "1", "model_id": "2"}}

	assert.Equal(t, FilterFingerprint(a), FilterFingerprint(b))
	assert.NotEqual(t, FilterFingerprint(a), FilterFingerprint(c))
}
