package repositories

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"inventory-system/pkg/constants"
)

// toggleScript переключает членство и продлевает TTL набора одной командой.
var toggleScript = redis.NewScript(`
if redis.call('SISMEMBER', KEYS[1], ARGV[1]) == 1 then
	redis.call('SREM', KEYS[1], ARGV[1])
	redis.call('PEXPIRE', KEYS[1], ARGV[2])
	return 0
end
redis.call('SADD', KEYS[1], ARGV[1])
redis.call('PEXPIRE', KEYS[1], ARGV[2])
return 1
`)

// SelectionRepositoryInterface хранит набор выбранных единиц оператора.
type SelectionRepositoryInterface interface {
	Toggle(ctx context.Context, userID, equipmentID uint64) (bool, error)
	Members(ctx context.Context, userID uint64) ([]uint64, error)
	Clear(ctx context.Context, userID uint64) error
}

type RedisSelectionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSelectionRepository(client *redis.Client, ttl time.Duration) SelectionRepositoryInterface {
	return &RedisSelectionRepository{client: client, ttl: ttl}
}

func selectionKey(userID uint64) string {
	return fmt.Sprintf(constants.CacheKeySelection, userID)
}

func (r *RedisSelectionRepository) Toggle(ctx context.Context, userID, equipmentID uint64) (bool, error) {
	res, err := toggleScript.Run(ctx, r.client, []string{selectionKey(userID)},
		strconv.FormatUint(equipmentID, 10), r.ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("ошибка переключения выбора: %w", err)
	}
	return res == 1, nil
}

func (r *RedisSelectionRepository) Members(ctx context.Context, userID uint64) ([]uint64, error) {
	raw, err := r.client.SMembers(ctx, selectionKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения выбора: %w", err)
	}
	ids := make([]uint64, 0, len(raw))
	for _, s := range raw {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *RedisSelectionRepository) Clear(ctx context.Context, userID uint64) error {
	return r.client.Del(ctx, selectionKey(userID)).Err()
}
