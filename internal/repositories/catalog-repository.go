package repositories

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"inventory-system/internal/entities"
	apperrors "inventory-system/pkg/errors"
)

const (
	catalogTable  = "catalog_items"
	catalogFields = "id, level, parent_id, name, active"
)

// CatalogRepositoryInterface - только чтение: справочник ведёт отдельная служба каталога.
type CatalogRepositoryInterface interface {
	FindByID(ctx context.Context, id uint64) (*entities.CatalogItem, error)
	FindByIDs(ctx context.Context, ids []uint64) (map[uint64]entities.CatalogItem, error)
	Options(ctx context.Context, level entities.CatalogLevel, parentID *uint64) ([]entities.CatalogItem, error)
}

type CatalogRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewCatalogRepository(storage *pgxpool.Pool, logger *zap.Logger) CatalogRepositoryInterface {
	return &CatalogRepository{storage: storage, logger: logger}
}

func scanCatalogItem(row pgx.Row) (*entities.CatalogItem, error) {
	var item entities.CatalogItem
	var level string
	if err := row.Scan(&item.ID, &level, &item.ParentID, &item.Name, &item.Active); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка сканирования catalog_items: %w", err)
	}
	item.Level = entities.CatalogLevel(level)
	return &item, nil
}

func (r *CatalogRepository) FindByID(ctx context.Context, id uint64) (*entities.CatalogItem, error) {
	query, args, err := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Select(catalogFields).From(catalogTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	return scanCatalogItem(r.storage.QueryRow(ctx, query, args...))
}

func (r *CatalogRepository) FindByIDs(ctx context.Context, ids []uint64) (map[uint64]entities.CatalogItem, error) {
	result := make(map[uint64]entities.CatalogItem, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	query, args, err := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Select(catalogFields).From(catalogTable).Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения каталога: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanCatalogItem(rows)
		if err != nil {
			return nil, err
		}
		result[item.ID] = *item
	}
	return result, rows.Err()
}

// Options возвращает активные элементы уровня. Для категорий parentID не указывается.
func (r *CatalogRepository) Options(ctx context.Context, level entities.CatalogLevel, parentID *uint64) ([]entities.CatalogItem, error) {
	builder := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Select(catalogFields).
		From(catalogTable).
		Where(sq.Eq{"level": string(level), "active": true}).
		OrderBy("name ASC", "id ASC")
	if parentID != nil {
		builder = builder.Where(sq.Eq{"parent_id": *parentID})
	} else {
		builder = builder.Where(sq.Eq{"parent_id": nil})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения опций каталога: %w", err)
	}
	defer rows.Close()

	items := make([]entities.CatalogItem, 0)
	for rows.Next() {
		item, err := scanCatalogItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}
