package repositories

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"inventory-system/pkg/types"
)

// StatsRepositoryInterface - агрегаты для дашборда, только чтение.
type StatsRepositoryInterface interface {
	CountTotal(ctx context.Context) (int64, error)
	CountByLocation(ctx context.Context) ([]types.CountByGroup, error)
	CountByLifecycleState(ctx context.Context) ([]types.CountByGroup, error)
	MovementsByMonth(ctx context.Context, since time.Time) ([]types.ChartData, error)
	CountOpenMovements(ctx context.Context) (int64, error)
}

type StatsRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewStatsRepository(storage *pgxpool.Pool, logger *zap.Logger) StatsRepositoryInterface {
	return &StatsRepository{storage: storage, logger: logger}
}

func activeEquipment(columns ...string) sq.SelectBuilder {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Select(columns...).
		From("equipment e").
		Where(sq.Eq{"e.active": true})
}

func (r *StatsRepository) scalar(ctx context.Context, builder sq.SelectBuilder) (int64, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return 0, err
	}
	var n int64
	err = r.storage.QueryRow(ctx, query, args...).Scan(&n)
	return n, err
}

func (r *StatsRepository) groups(ctx context.Context, builder sq.SelectBuilder) ([]types.CountByGroup, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка агрегации: %w", err)
	}
	defer rows.Close()

	result := make([]types.CountByGroup, 0)
	for rows.Next() {
		var g types.CountByGroup
		if err := rows.Scan(&g.GroupName, &g.Count); err != nil {
			return nil, err
		}
		result = append(result, g)
	}
	return result, rows.Err()
}

func (r *StatsRepository) CountTotal(ctx context.Context) (int64, error) {
	return r.scalar(ctx, activeEquipment("COUNT(*)"))
}

func (r *StatsRepository) CountByLocation(ctx context.Context) ([]types.CountByGroup, error) {
	return r.groups(ctx, activeEquipment("e.location_kind", "COUNT(*)").
		GroupBy("e.location_kind").
		OrderBy("e.location_kind"))
}

func (r *StatsRepository) CountByLifecycleState(ctx context.Context) ([]types.CountByGroup, error) {
	return r.groups(ctx, activeEquipment("e.lifecycle_state", "COUNT(*)").
		GroupBy("e.lifecycle_state").
		OrderBy("e.lifecycle_state"))
}

func (r *StatsRepository) MovementsByMonth(ctx context.Context, since time.Time) ([]types.ChartData, error) {
	query, args, err := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Select("to_char(date_trunc('month', departed_at), 'YYYY-MM') AS label", "COUNT(*)").
		From(movementTable).
		Where(sq.GtOrEq{"departed_at": since}).
		Where(sq.NotEq{"status": "CANCELLED"}).
		GroupBy("label").
		OrderBy("label").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка агрегации перемещений по месяцам: %w", err)
	}
	defer rows.Close()

	result := make([]types.ChartData, 0)
	for rows.Next() {
		var d types.ChartData
		if err := rows.Scan(&d.Label, &d.Value); err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

func (r *StatsRepository) CountOpenMovements(ctx context.Context) (int64, error) {
	return r.scalar(ctx, sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Select("COUNT(*)").
		From(movementTable).
		Where(sq.Eq{"status": openStatuses}))
}
