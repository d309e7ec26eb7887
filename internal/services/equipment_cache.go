package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"

	"inventory-system/internal/dto"
	"inventory-system/internal/repositories"
	"inventory-system/pkg/constants"
	"inventory-system/pkg/metrics"
	"inventory-system/pkg/types"
)

// EquipmentCache - кеш карточек и страниц списка оборудования в Redis.
// Все ключи содержат поколение: Invalidate увеличивает его, и ранее сохранённые
// значения становятся недостижимы и истекают по TTL.
type EquipmentCache struct {
	cacheRepo repositories.CacheRepositoryInterface
	ttl       time.Duration
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

type cachedPage struct {
	Items []dto.EquipmentDTO `json:"items"`
	Total uint64             `json:"total"`
}

func NewEquipmentCache(cacheRepo repositories.CacheRepositoryInterface, ttl time.Duration, m *metrics.Metrics, logger *zap.Logger) *EquipmentCache {
	return &EquipmentCache{cacheRepo: cacheRepo, ttl: ttl, metrics: m, logger: logger}
}

// FilterFingerprint - стабильный отпечаток фильтра (ключи map сериализуются отсортированными).
func FilterFingerprint(filter types.Filter) uint64 {
	data, err := json.Marshal(filter)
	if err != nil {
		return 0
	}
	return xxhash.Sum64(data)
}

// Generation - поколение кеша, прочитанное до запроса к БД. Значение, сохранённое
// под ним после Invalidate, попадает в ключ, который уже никто не читает.
type Generation int64

// noGeneration - поколение не прочитано, кеш в этом запросе не используется.
const noGeneration Generation = -1

func itemKey(gen Generation, id uint64) string {
	return fmt.Sprintf(constants.CacheKeyEquipmentItem, gen, id)
}

func listKey(gen Generation, filter types.Filter) string {
	return fmt.Sprintf(constants.CacheKeyEquipmentList, gen, FilterFingerprint(filter))
}

// Generation читает текущее поколение. Вызывается один раз до обращения к БД, тот же
// результат передаётся в Get* и Set*.
func (c *EquipmentCache) Generation(ctx context.Context) Generation {
	raw, err := c.cacheRepo.Get(ctx, constants.CacheKeyEquipmentGeneration)
	if err != nil {
		if repositories.IsCacheMiss(err) {
			return 0
		}
		c.logger.Warn("Не удалось прочитать поколение кеша", zap.Error(err))
		return noGeneration
	}
	gen, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || gen < 0 {
		c.logger.Warn("Некорректное поколение кеша", zap.String("value", raw), zap.Error(err))
		return noGeneration
	}
	return Generation(gen)
}

func (c *EquipmentCache) GetItem(ctx context.Context, gen Generation, id uint64) (*dto.EquipmentDTO, bool) {
	if gen == noGeneration {
		return nil, false
	}
	var item dto.EquipmentDTO
	if !c.load(ctx, itemKey(gen, id), &item) {
		return nil, false
	}
	return &item, true
}

func (c *EquipmentCache) SetItem(ctx context.Context, gen Generation, item dto.EquipmentDTO) {
	if gen == noGeneration {
		return
	}
	c.store(ctx, itemKey(gen, item.ID), item)
}

func (c *EquipmentCache) GetPage(ctx context.Context, gen Generation, filter types.Filter) ([]dto.EquipmentDTO, uint64, bool) {
	if gen == noGeneration {
		return nil, 0, false
	}
	var page cachedPage
	if !c.load(ctx, listKey(gen, filter), &page) {
		return nil, 0, false
	}
	return page.Items, page.Total, true
}

func (c *EquipmentCache) SetPage(ctx context.Context, gen Generation, filter types.Filter, items []dto.EquipmentDTO, total uint64) {
	if gen == noGeneration {
		return
	}
	c.store(ctx, listKey(gen, filter), cachedPage{Items: items, Total: total})
}

// Invalidate сдвигает поколение: все карточки и страницы, сохранённые раньше, включая
// те, что читатели допишут под старым поколением, становятся недостижимы. Карточки
// указанных единиц текущего поколения удаляются сразу.
func (c *EquipmentCache) Invalidate(ctx context.Context, ids []uint64) error {
	if gen := c.Generation(ctx); gen != noGeneration && len(ids) > 0 {
		keys := make([]string, 0, len(ids))
		for _, id := range ids {
			keys = append(keys, itemKey(gen, id))
		}
		if err := c.cacheRepo.Del(ctx, keys...); err != nil {
			c.logger.Warn("Ошибка удаления карточек из кеша", zap.Uint64s("equipmentIDs", ids), zap.Error(err))
		}
	}
	if _, err := c.cacheRepo.Incr(ctx, constants.CacheKeyEquipmentGeneration); err != nil {
		return fmt.Errorf("ошибка сброса кеша оборудования: %w", err)
	}
	c.metrics.ObserveCache("invalidate")
	return nil
}

func (c *EquipmentCache) load(ctx context.Context, key string, dst interface{}) bool {
	raw, err := c.cacheRepo.Get(ctx, key)
	if err != nil {
		if !repositories.IsCacheMiss(err) {
			c.logger.Warn("Ошибка чтения кеша", zap.String("key", key), zap.Error(err))
		}
		c.metrics.ObserveCache("miss")
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		c.logger.Warn("Битые данные в кеше", zap.String("key", key), zap.Error(err))
		c.metrics.ObserveCache("miss")
		return false
	}
	c.metrics.ObserveCache("hit")
	return true
}

func (c *EquipmentCache) store(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("Не удалось сериализовать значение для кеша", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.cacheRepo.Set(ctx, key, string(data), c.ttl); err != nil {
		c.logger.Warn("Не удалось сохранить значение в кеш", zap.String("key", key), zap.Error(err))
	}
}
