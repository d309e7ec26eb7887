package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"inventory-system/internal/entities"
	apperrors "inventory-system/pkg/errors"
)

const (
	movementTable  = "equipment_movements"
	movementFields = `id, equipment_id, batch_id::text, origin_kind, origin_detail,
		destination_kind, destination_detail, status, departed_at, arrived_at,
		cancelled_at, actor_id, note, created_at`

	// Имя частичного уникального индекса "не более одного открытого перемещения".
	openMovementIndex = "equipment_movements_one_open_uidx"
)

var openStatuses = []string{string(entities.MovementPending), string(entities.MovementInTransit)}

type MovementRepositoryInterface interface {
	// Create вставляет перемещение; второе открытое перемещение для той же единицы
	// отклоняется базой и возвращается как ConflictError.
	Create(ctx context.Context, tx pgx.Tx, m entities.Movement) (uint64, error)
	FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Movement, error)
	FindForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Movement, error)
	FindOpenByEquipment(ctx context.Context, tx pgx.Tx, equipmentID uint64) (*entities.Movement, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uint64, status entities.MovementStatus, at time.Time) error
	History(ctx context.Context, equipmentID uint64) ([]entities.Movement, error)
	OpenDepartedBefore(ctx context.Context, before time.Time) ([]entities.Movement, error)
}

type MovementRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewMovementRepository(storage *pgxpool.Pool, logger *zap.Logger) MovementRepositoryInterface {
	return &MovementRepository{storage: storage, logger: logger}
}

func (r *MovementRepository) getQuerier(tx pgx.Tx) Querier {
	if tx != nil {
		return tx
	}
	return r.storage
}

func movementSelect() sq.SelectBuilder {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar).Select(movementFields).From(movementTable)
}

func scanMovement(row pgx.Row) (*entities.Movement, error) {
	var (
		m                        entities.Movement
		originKind, destKind     string
		originDetail, destDetail []byte
		status                   string
	)
	err := row.Scan(
		&m.ID, &m.EquipmentID, &m.BatchID, &originKind, &originDetail,
		&destKind, &destDetail, &status, &m.DepartedAt, &m.ArrivedAt,
		&m.CancelledAt, &m.ActorID, &m.Note, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка сканирования equipment_movements: %w", err)
	}

	if m.Origin, err = (entities.LocationRecord{Kind: entities.LocationKind(originKind), Detail: originDetail}).Decode(); err != nil {
		return nil, fmt.Errorf("перемещение %d, откуда: %w", m.ID, err)
	}
	if m.Destination, err = (entities.LocationRecord{Kind: entities.LocationKind(destKind), Detail: destDetail}).Decode(); err != nil {
		return nil, fmt.Errorf("перемещение %d, куда: %w", m.ID, err)
	}
	m.Status = entities.MovementStatus(status)
	return &m, nil
}

func (r *MovementRepository) queryMany(ctx context.Context, builder sq.SelectBuilder) ([]entities.Movement, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL для перемещений: %w", err)
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения перемещений: %w", err)
	}
	defer rows.Close()

	result := make([]entities.Movement, 0)
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *m)
	}
	return result, rows.Err()
}

func (r *MovementRepository) Create(ctx context.Context, tx pgx.Tx, m entities.Movement) (uint64, error) {
	originKind, originDetail, err := locationColumns(m.Origin)
	if err != nil {
		return 0, err
	}
	destKind, destDetail, err := locationColumns(m.Destination)
	if err != nil {
		return 0, err
	}

	query, args, err := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Insert(movementTable).
		Columns("equipment_id", "batch_id", "origin_kind", "origin_detail", "destination_kind", "destination_detail",
			"status", "departed_at", "arrived_at", "actor_id", "note", "created_at", "updated_at").
		Values(m.EquipmentID, m.BatchID, originKind, originDetail, destKind, destDetail,
			string(m.Status), m.DepartedAt, m.ArrivedAt, m.ActorID, m.Note, sq.Expr("NOW()"), sq.Expr("NOW()")).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("ошибка сборки запроса Create movement: %w", err)
	}

	var newID uint64
	if err := r.getQuerier(tx).QueryRow(ctx, query, args...).Scan(&newID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == openMovementIndex {
			return 0, apperrors.NewConflictError("у единицы %d уже есть открытое перемещение", m.EquipmentID)
		}
		return 0, fmt.Errorf("ошибка создания перемещения: %w", err)
	}
	return newID, nil
}

func (r *MovementRepository) FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Movement, error) {
	query, args, err := movementSelect().Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	return scanMovement(r.getQuerier(tx).QueryRow(ctx, query, args...))
}

func (r *MovementRepository) FindForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Movement, error) {
	if tx == nil {
		return nil, fmt.Errorf("FindForUpdate требует транзакцию")
	}
	query, args, err := movementSelect().Where(sq.Eq{"id": id}).Suffix("FOR UPDATE").ToSql()
	if err != nil {
		return nil, err
	}
	return scanMovement(tx.QueryRow(ctx, query, args...))
}

func (r *MovementRepository) FindOpenByEquipment(ctx context.Context, tx pgx.Tx, equipmentID uint64) (*entities.Movement, error) {
	query, args, err := movementSelect().
		Where(sq.Eq{"equipment_id": equipmentID, "status": openStatuses}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, err
	}
	return scanMovement(r.getQuerier(tx).QueryRow(ctx, query, args...))
}

// UpdateStatus закрывает открытое перемещение. Условие по статусу в WHERE защищает
// от повторного закрытия: если строка уже закрыта, возвращается InvalidStateError.
func (r *MovementRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id uint64, status entities.MovementStatus, at time.Time) error {
	builder := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Update(movementTable).
		Set("status", string(status)).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id, "status": openStatuses})

	switch status {
	case entities.MovementCompleted:
		builder = builder.Set("arrived_at", at)
	case entities.MovementCancelled:
		builder = builder.Set("cancelled_at", at)
	case entities.MovementInTransit:
	default:
		return fmt.Errorf("недопустимый целевой статус перемещения %s", status)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки запроса UpdateStatus: %w", err)
	}
	result, err := r.getQuerier(tx).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка обновления статуса перемещения: %w", err)
	}
	if result.RowsAffected() == 0 {
		current, findErr := r.FindByID(ctx, tx, id)
		if findErr != nil {
			return findErr
		}
		return apperrors.NewInvalidStateError(string(current.Status), "перемещение %d уже закрыто", id)
	}
	return nil
}

func (r *MovementRepository) History(ctx context.Context, equipmentID uint64) ([]entities.Movement, error) {
	return r.queryMany(ctx, movementSelect().
		Where(sq.Eq{"equipment_id": equipmentID}).
		OrderBy("departed_at ASC", "id ASC"))
}

func (r *MovementRepository) OpenDepartedBefore(ctx context.Context, before time.Time) ([]entities.Movement, error) {
	return r.queryMany(ctx, movementSelect().
		Where(sq.Eq{"status": openStatuses}).
		Where(sq.Lt{"departed_at": before}).
		OrderBy("departed_at ASC", "id ASC"))
}
