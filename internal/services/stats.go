package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"inventory-system/internal/repositories"
	"inventory-system/pkg/types"
)

// statsMonths - сколько последних месяцев попадает в график перемещений.
const statsMonths = 12

type StatsService struct {
	statsRepo repositories.StatsRepositoryInterface
	now       func() time.Time
	logger    *zap.Logger
}

func NewStatsService(statsRepo repositories.StatsRepositoryInterface, now func() time.Time, logger *zap.Logger) *StatsService {
	if now == nil {
		now = time.Now
	}
	return &StatsService{statsRepo: statsRepo, now: now, logger: logger}
}

func (s *StatsService) GetStats(ctx context.Context) (*types.EquipmentStats, error) {
	var (
		stats types.EquipmentStats
		err   error
	)
	if stats.Total, err = s.statsRepo.CountTotal(ctx); err != nil {
		return nil, err
	}
	if stats.ByLocation, err = s.statsRepo.CountByLocation(ctx); err != nil {
		return nil, err
	}
	if stats.ByLifecycleState, err = s.statsRepo.CountByLifecycleState(ctx); err != nil {
		return nil, err
	}

	now := s.now()
	since := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -(statsMonths - 1), 0)
	if stats.MovementsByMonth, err = s.statsRepo.MovementsByMonth(ctx, since); err != nil {
		return nil, err
	}
	if stats.OpenMovementCount, err = s.statsRepo.CountOpenMovements(ctx); err != nil {
		return nil, err
	}
	return &stats, nil
}
