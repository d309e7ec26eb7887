package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"inventory-system/internal/entities"
	db "inventory-system/internal/infrastructure/bd"
	apperrors "inventory-system/pkg/errors"
	"inventory-system/pkg/types"
)

const (
	equipmentTable  = "equipment e"
	equipmentFields = `e.id, e.serial_number, e.inventory_code,
		e.category_id, e.subcategory_id, e.brand_id, e.model_id,
		e.lifecycle_state, e.location_kind, e.location_detail,
		e.parent_id, e.os, e.notes, e.active, e.created_at, e.updated_at,
		COALESCE(b.name, ''), COALESCE(m.name, '')`
	equipmentBrandJoin = "catalog_items b ON b.id = e.brand_id"
	equipmentModelJoin = "catalog_items m ON m.id = e.model_id"

	// ActiveAll - значение filter[active], отключающее фильтр по активности.
	ActiveAll = "all"
)

// allowedEquipmentFilters - БЕЛЫЙ СПИСОК для фильтрации (защита от SQL Injection)
var allowedEquipmentFilters = map[string]string{
	"id":              "e.id",
	"category_id":     "e.category_id",
	"subcategory_id":  "e.subcategory_id",
	"brand_id":        "e.brand_id",
	"model_id":        "e.model_id",
	"location":        "e.location_kind",
	"lifecycle_state": "e.lifecycle_state",
	"active":          "e.active",
	"store_id":        "e.store_id",
	"person_id":       "e.person_id",
	"parent_id":       "e.parent_id",
}

// allowedEquipmentSort - БЕЛЫЙ СПИСОК для сортировки
var allowedEquipmentSort = map[string]string{
	"id":              "e.id",
	"serial_number":   "e.serial_number",
	"inventory_code":  "e.inventory_code",
	"lifecycle_state": "e.lifecycle_state",
	"location":        "e.location_kind",
	"created_at":      "e.created_at",
	"updated_at":      "e.updated_at",
	"brand":           "b.name",
	"model":           "m.name",
}

var equipmentSearchColumns = []string{"e.serial_number", "e.inventory_code", "m.name", "b.name"}

// Колонки, которые можно менять через UpdateFields. Местонахождения и состояния здесь нет.
var updatableEquipmentColumns = map[string]bool{
	"serial_number":  true,
	"inventory_code": true,
	"category_id":    true,
	"subcategory_id": true,
	"brand_id":       true,
	"model_id":       true,
	"parent_id":      true,
	"os":             true,
	"notes":          true,
}

type EquipmentRepositoryInterface interface {
	FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Equipment, error)
	// FindForUpdate блокирует строку до конца транзакции.
	FindForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Equipment, error)
	GetAll(ctx context.Context, filter types.Filter) ([]*entities.Equipment, uint64, error)
	Create(ctx context.Context, tx pgx.Tx, e entities.Equipment) (uint64, error)
	UpdateFields(ctx context.Context, tx pgx.Tx, id uint64, fields map[string]interface{}) error
	UpdateLocation(ctx context.Context, tx pgx.Tx, id uint64, loc entities.Location) error
	UpdateLifecycle(ctx context.Context, tx pgx.Tx, id uint64, state entities.LifecycleState) error
	Deactivate(ctx context.Context, tx pgx.Tx, id uint64) error
	Reactivate(ctx context.Context, tx pgx.Tx, id uint64, c entities.Classification, serial, inventoryCode *string) error
	// ClearParentRefs снимает ссылку на родителя у аксессуаров, возвращает их ID.
	ClearParentRefs(ctx context.Context, tx pgx.Tx, parentID uint64) ([]uint64, error)
}

type EquipmentRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewEquipmentRepository(storage *pgxpool.Pool, logger *zap.Logger) EquipmentRepositoryInterface {
	return &EquipmentRepository{storage: storage, logger: logger}
}

func (r *EquipmentRepository) getQuerier(tx pgx.Tx) Querier {
	if tx != nil {
		return tx
	}
	return r.storage
}

func equipmentSelect(columns ...string) sq.SelectBuilder {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Select(columns...).
		From(equipmentTable).
		LeftJoin(equipmentBrandJoin).
		LeftJoin(equipmentModelJoin)
}

// locationColumns раскладывает вариант местонахождения на location_kind и location_detail.
func locationColumns(loc entities.Location) (string, interface{}, error) {
	rec, err := entities.EncodeLocation(loc)
	if err != nil {
		return "", nil, err
	}
	if len(rec.Detail) == 0 {
		return string(rec.Kind), nil, nil
	}
	return string(rec.Kind), string(rec.Detail), nil
}

func scanEquipment(row pgx.Row) (*entities.Equipment, error) {
	var (
		e                    entities.Equipment
		state, kind          string
		detail               []byte
		createdAt, updatedAt time.Time
	)

	err := row.Scan(
		&e.ID, &e.SerialNumber, &e.InventoryCode,
		&e.CategoryID, &e.SubcategoryID, &e.BrandID, &e.ModelID,
		&state, &kind, &detail,
		&e.ParentID, &e.OS, &e.Notes, &e.Active, &createdAt, &updatedAt,
		&e.BrandName, &e.ModelName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка сканирования equipment: %w", err)
	}

	loc, err := entities.LocationRecord{Kind: entities.LocationKind(kind), Detail: detail}.Decode()
	if err != nil {
		return nil, fmt.Errorf("equipment %d: %w", e.ID, err)
	}
	e.Location = loc
	e.LifecycleState = entities.LifecycleState(state)
	e.CreatedAt = &createdAt
	e.UpdatedAt = &updatedAt
	return &e, nil
}

func (r *EquipmentRepository) findOne(ctx context.Context, q Querier, id uint64, forUpdate bool) (*entities.Equipment, error) {
	builder := equipmentSelect(equipmentFields).Where(sq.Eq{"e.id": id})
	if forUpdate {
		builder = builder.Suffix("FOR UPDATE OF e")
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL для equipment: %w", err)
	}
	return scanEquipment(q.QueryRow(ctx, query, args...))
}

func (r *EquipmentRepository) FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Equipment, error) {
	return r.findOne(ctx, r.getQuerier(tx), id, false)
}

func (r *EquipmentRepository) FindForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Equipment, error) {
	if tx == nil {
		return nil, fmt.Errorf("FindForUpdate требует транзакцию")
	}
	return r.findOne(ctx, tx, id, true)
}

// NormalizeEquipmentFilter применяет значения по умолчанию: без filter[active]
// показываются только активные единицы, filter[active]=all снимает ограничение.
func NormalizeEquipmentFilter(filter types.Filter) types.Filter {
	out := filter
	out.Filter = make(map[string]interface{}, len(filter.Filter)+1)
	for k, v := range filter.Filter {
		out.Filter[k] = v
	}
	active, ok := out.Filter["active"]
	switch {
	case !ok:
		out.Filter["active"] = true
	case fmt.Sprint(active) == ActiveAll:
		delete(out.Filter, "active")
	}
	if kind, ok := out.Filter["location"].(string); ok {
		out.Filter["location"] = strings.ToUpper(kind)
	}
	if state, ok := out.Filter["lifecycle_state"].(string); ok {
		out.Filter["lifecycle_state"] = strings.ToUpper(state)
	}
	return out
}

// BuildEquipmentListQueries собирает запрос страницы и запрос общего количества
// с одинаковыми условиями.
func BuildEquipmentListQueries(filter types.Filter) (sq.SelectBuilder, sq.SelectBuilder) {
	filter = NormalizeEquipmentFilter(filter)

	countBuilder := equipmentSelect("COUNT(*)")
	countBuilder = db.ApplyFilters(countBuilder, filter, allowedEquipmentFilters)
	countBuilder = db.ApplySearch(countBuilder, filter.Search, equipmentSearchColumns)

	listBuilder := equipmentSelect(equipmentFields)
	listBuilder = db.ApplyFilters(listBuilder, filter, allowedEquipmentFilters)
	listBuilder = db.ApplySearch(listBuilder, filter.Search, equipmentSearchColumns)
	listBuilder = db.ApplySortAndPage(listBuilder, filter, allowedEquipmentSort, "e.id DESC")

	return listBuilder, countBuilder
}

func (r *EquipmentRepository) GetAll(ctx context.Context, filter types.Filter) ([]*entities.Equipment, uint64, error) {
	listBuilder, countBuilder := BuildEquipmentListQueries(filter)

	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки COUNT для equipment: %w", err)
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета оборудования: %w", err)
	}
	if total == 0 {
		return []*entities.Equipment{}, 0, nil
	}

	query, args, err := listBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки SQL списка equipment: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения списка оборудования: %w", err)
	}
	defer rows.Close()

	items := make([]*entities.Equipment, 0, filter.Limit)
	for rows.Next() {
		e, err := scanEquipment(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows.Err equipment: %w", err)
	}
	return items, total, nil
}

func (r *EquipmentRepository) Create(ctx context.Context, tx pgx.Tx, e entities.Equipment) (uint64, error) {
	kind, detail, err := locationColumns(e.Location)
	if err != nil {
		return 0, err
	}

	query, args, err := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Insert("equipment").
		Columns("serial_number", "inventory_code", "category_id", "subcategory_id", "brand_id", "model_id",
			"lifecycle_state", "location_kind", "location_detail", "parent_id", "os", "notes", "active",
			"created_at", "updated_at").
		Values(e.SerialNumber, e.InventoryCode, e.CategoryID, e.SubcategoryID, e.BrandID, e.ModelID,
			string(e.LifecycleState), kind, detail, e.ParentID, e.OS, e.Notes, true,
			sq.Expr("NOW()"), sq.Expr("NOW()")).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("ошибка сборки запроса Create equipment: %w", err)
	}

	var newID uint64
	if err := r.getQuerier(tx).QueryRow(ctx, query, args...).Scan(&newID); err != nil {
		return 0, fmt.Errorf("ошибка создания equipment: %w", err)
	}
	return newID, nil
}

func (r *EquipmentRepository) exec(ctx context.Context, tx pgx.Tx, builder sq.UpdateBuilder, op string) error {
	query, args, err := builder.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки запроса %s: %w", op, err)
	}
	result, err := r.getQuerier(tx).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка выполнения %s: %w", op, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *EquipmentRepository) UpdateFields(ctx context.Context, tx pgx.Tx, id uint64, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	set := make(map[string]interface{}, len(fields)+1)
	for col, val := range fields {
		if !updatableEquipmentColumns[col] {
			return fmt.Errorf("поле %q нельзя менять через UpdateFields", col)
		}
		set[col] = val
	}
	set["updated_at"] = sq.Expr("NOW()")

	return r.exec(ctx, tx, sq.Update("equipment").SetMap(set).Where(sq.Eq{"id": id}), "UpdateFields")
}

func (r *EquipmentRepository) UpdateLocation(ctx context.Context, tx pgx.Tx, id uint64, loc entities.Location) error {
	kind, detail, err := locationColumns(loc)
	if err != nil {
		return err
	}
	builder := sq.Update("equipment").
		Set("location_kind", kind).
		Set("location_detail", detail).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id})
	return r.exec(ctx, tx, builder, "UpdateLocation")
}

func (r *EquipmentRepository) UpdateLifecycle(ctx context.Context, tx pgx.Tx, id uint64, state entities.LifecycleState) error {
	builder := sq.Update("equipment").
		Set("lifecycle_state", string(state)).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id})
	return r.exec(ctx, tx, builder, "UpdateLifecycle")
}

func (r *EquipmentRepository) Deactivate(ctx context.Context, tx pgx.Tx, id uint64) error {
	builder := sq.Update("equipment").
		Set("active", false).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id, "active": true})
	return r.exec(ctx, tx, builder, "Deactivate")
}

func (r *EquipmentRepository) Reactivate(ctx context.Context, tx pgx.Tx, id uint64, c entities.Classification, serial, inventoryCode *string) error {
	builder := sq.Update("equipment").
		Set("active", true).
		Set("category_id", c.CategoryID).
		Set("subcategory_id", c.SubcategoryID).
		Set("brand_id", c.BrandID).
		Set("model_id", c.ModelID).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id, "active": false})
	if serial != nil {
		builder = builder.Set("serial_number", *serial)
	}
	if inventoryCode != nil {
		builder = builder.Set("inventory_code", *inventoryCode)
	}
	return r.exec(ctx, tx, builder, "Reactivate")
}

func (r *EquipmentRepository) ClearParentRefs(ctx context.Context, tx pgx.Tx, parentID uint64) ([]uint64, error) {
	query, args, err := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Update("equipment").
		Set("parent_id", nil).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"parent_id": parentID}).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса ClearParentRefs: %w", err)
	}

	rows, err := r.getQuerier(tx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка снятия ссылок на родителя: %w", err)
	}
	defer rows.Close()

	ids := make([]uint64, 0)
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
