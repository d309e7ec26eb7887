package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"

	"inventory-system/internal/entities"
	"inventory-system/pkg/contextkeys"
	apperrors "inventory-system/pkg/errors"
	"inventory-system/pkg/eventbus"
	"inventory-system/pkg/types"
)

var testNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func ctxWithUser(userID uint64, roles ...string) context.Context {
	ctx := context.WithValue(context.Background(), contextkeys.UserIDKey, userID)
	return context.WithValue(ctx, contextkeys.UserRolesKey, roles)
}

// fakeStore - общее состояние фейковых репозиториев. fakeTxManager снимает копию
// перед транзакцией и восстанавливает её при ошибке.
type fakeStore struct {
	equipment      map[uint64]entities.Equipment
	movements      map[uint64]entities.Movement
	nextEquipment  uint64
	nextMovement   uint64
	failLocationOn map[uint64]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		equipment:      make(map[uint64]entities.Equipment),
		movements:      make(map[uint64]entities.Movement),
		failLocationOn: make(map[uint64]error),
	}
}

func (s *fakeStore) addEquipment(e entities.Equipment) uint64 {
	if e.ID == 0 {
		s.nextEquipment++
		e.ID = s.nextEquipment
	} else if e.ID > s.nextEquipment {
		s.nextEquipment = e.ID
	}
	if e.LifecycleState == "" {
		e.LifecycleState = entities.StateOperational
	}
	if e.Location == nil {
		e.Location = entities.AtWarehouse{}
	}
	s.equipment[e.ID] = e
	return e.ID
}

func (s *fakeStore) movementsOf(equipmentID uint64) []entities.Movement {
	var out []entities.Movement
	for _, m := range s.movements {
		if m.EquipmentID == equipmentID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type fakeSnapshot struct {
	equipment     map[uint64]entities.Equipment
	movements     map[uint64]entities.Movement
	nextEquipment uint64
	nextMovement  uint64
}

func (s *fakeStore) snapshot() fakeSnapshot {
	snap := fakeSnapshot{
		equipment:     make(map[uint64]entities.Equipment, len(s.equipment)),
		movements:     make(map[uint64]entities.Movement, len(s.movements)),
		nextEquipment: s.nextEquipment,
		nextMovement:  s.nextMovement,
	}
	for k, v := range s.equipment {
		snap.equipment[k] = v
	}
	for k, v := range s.movements {
		snap.movements[k] = v
	}
	return snap
}

func (s *fakeStore) restore(snap fakeSnapshot) {
	s.equipment = snap.equipment
	s.movements = snap.movements
	s.nextEquipment = snap.nextEquipment
	s.nextMovement = snap.nextMovement
}

type fakeTxManager struct {
	store   *fakeStore
	commits int
	aborts  int
}

func (m *fakeTxManager) RunInTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	snap := m.store.snapshot()
	if err := fn(nil); err != nil {
		m.store.restore(snap)
		m.aborts++
		return err
	}
	m.commits++
	return nil
}

// --- оборудование ---

type fakeEquipmentRepo struct {
	store *fakeStore
}

func (r *fakeEquipmentRepo) FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Equipment, error) {
	e, ok := r.store.equipment[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &e, nil
}

func (r *fakeEquipmentRepo) FindForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Equipment, error) {
	return r.FindByID(ctx, tx, id)
}

func (r *fakeEquipmentRepo) GetAll(ctx context.Context, filter types.Filter) ([]*entities.Equipment, uint64, error) {
	ids := make([]uint64, 0, len(r.store.equipment))
	for id := range r.store.equipment {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]*entities.Equipment, 0, len(ids))
	for _, id := range ids {
		e := r.store.equipment[id]
		out = append(out, &e)
	}
	return out, uint64(len(out)), nil
}

func (r *fakeEquipmentRepo) Create(ctx context.Context, tx pgx.Tx, e entities.Equipment) (uint64, error) {
	e.ID = 0
	e.Active = true
	return r.store.addEquipment(e), nil
}

func (r *fakeEquipmentRepo) update(id uint64, fn func(e *entities.Equipment) error) error {
	e, ok := r.store.equipment[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	if err := fn(&e); err != nil {
		return err
	}
	r.store.equipment[id] = e
	return nil
}

func (r *fakeEquipmentRepo) UpdateFields(ctx context.Context, tx pgx.Tx, id uint64, fields map[string]interface{}) error {
	return r.update(id, func(e *entities.Equipment) error {
		for col, val := range fields {
			switch col {
			case "serial_number":
				e.SerialNumber, _ = val.(*string)
			case "inventory_code":
				e.InventoryCode, _ = val.(*string)
			case "os":
				e.OS, _ = val.(*string)
			case "notes":
				e.Notes, _ = val.(*string)
			case "category_id":
				e.CategoryID = val.(uint64)
			case "subcategory_id":
				e.SubcategoryID = val.(uint64)
			case "brand_id":
				e.BrandID = val.(uint64)
			case "model_id":
				e.ModelID = val.(uint64)
			case "parent_id":
				if val == nil {
					e.ParentID = nil
				} else {
					p := val.(uint64)
					e.ParentID = &p
				}
			default:
				return fmt.Errorf("поле %q нельзя менять через UpdateFields", col)
			}
		}
		return nil
	})
}

func (r *fakeEquipmentRepo) UpdateLocation(ctx context.Context, tx pgx.Tx, id uint64, loc entities.Location) error {
	if err := r.store.failLocationOn[id]; err != nil {
		return err
	}
	return r.update(id, func(e *entities.Equipment) error {
		e.Location = loc
		return nil
	})
}

func (r *fakeEquipmentRepo) UpdateLifecycle(ctx context.Context, tx pgx.Tx, id uint64, state entities.LifecycleState) error {
	return r.update(id, func(e *entities.Equipment) error {
		e.LifecycleState = state
		return nil
	})
}

func (r *fakeEquipmentRepo) Deactivate(ctx context.Context, tx pgx.Tx, id uint64) error {
	return r.update(id, func(e *entities.Equipment) error {
		if !e.Active {
			return apperrors.ErrNotFound
		}
		e.Active = false
		return nil
	})
}

func (r *fakeEquipmentRepo) Reactivate(ctx context.Context, tx pgx.Tx, id uint64, c entities.Classification, serial, inventoryCode *string) error {
	return r.update(id, func(e *entities.Equipment) error {
		if e.Active {
			return apperrors.ErrNotFound
		}
		e.Active = true
		e.CategoryID, e.SubcategoryID, e.BrandID, e.ModelID = c.CategoryID, c.SubcategoryID, c.BrandID, c.ModelID
		if serial != nil {
			e.SerialNumber = serial
		}
		if inventoryCode != nil {
			e.InventoryCode = inventoryCode
		}
		return nil
	})
}

func (r *fakeEquipmentRepo) ClearParentRefs(ctx context.Context, tx pgx.Tx, parentID uint64) ([]uint64, error) {
	var ids []uint64
	for id, e := range r.store.equipment {
		if e.ParentID != nil && *e.ParentID == parentID {
			e.ParentID = nil
			r.store.equipment[id] = e
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// --- журнал перемещений ---

type fakeMovementRepo struct {
	store *fakeStore
}

func (r *fakeMovementRepo) Create(ctx context.Context, tx pgx.Tx, m entities.Movement) (uint64, error) {
	for _, existing := range r.store.movements {
		if existing.EquipmentID == m.EquipmentID && existing.Status.IsOpen() {
			return 0, apperrors.NewConflictError("у единицы %d уже есть открытое перемещение", m.EquipmentID)
		}
	}
	r.store.nextMovement++
	m.ID = r.store.nextMovement
	m.CreatedAt = testNow
	r.store.movements[m.ID] = m
	return m.ID, nil
}

func (r *fakeMovementRepo) FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Movement, error) {
	m, ok := r.store.movements[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &m, nil
}

func (r *fakeMovementRepo) FindForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Movement, error) {
	return r.FindByID(ctx, tx, id)
}

func (r *fakeMovementRepo) FindOpenByEquipment(ctx context.Context, tx pgx.Tx, equipmentID uint64) (*entities.Movement, error) {
	for _, m := range r.store.movementsOf(equipmentID) {
		if m.Status.IsOpen() {
			return &m, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeMovementRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uint64, status entities.MovementStatus, at time.Time) error {
	m, ok := r.store.movements[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	if !m.Status.IsOpen() {
		return apperrors.NewInvalidStateError(string(m.Status), "перемещение %d уже закрыто", id)
	}
	m.Status = status
	switch status {
	case entities.MovementCompleted:
		m.ArrivedAt = &at
	case entities.MovementCancelled:
		m.CancelledAt = &at
	}
	r.store.movements[id] = m
	return nil
}

func (r *fakeMovementRepo) History(ctx context.Context, equipmentID uint64) ([]entities.Movement, error) {
	out := r.store.movementsOf(equipmentID)
	sort.SliceStable(out, func(i, j int) bool { return out[i].DepartedAt.Before(out[j].DepartedAt) })
	return out, nil
}

func (r *fakeMovementRepo) OpenDepartedBefore(ctx context.Context, before time.Time) ([]entities.Movement, error) {
	var out []entities.Movement
	for _, m := range r.store.movements {
		if m.Status.IsOpen() && m.DepartedAt.Before(before) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- события ---

type fakePublisher struct {
	events []eventbus.Event
}

func (p *fakePublisher) Publish(ctx context.Context, event eventbus.Event) error {
	p.events = append(p.events, event)
	return nil
}
