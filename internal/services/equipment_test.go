package services

import (
	"context"
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"inventory-system/internal/authz"
	"inventory-system/internal/dto"
	"inventory-system/internal/entities"
	"inventory-system/internal/events"
	apperrors "inventory-system/pkg/errors"
	"inventory-system/pkg/types"
)

type classificationFunc func(c entities.Classification) error

func (f classificationFunc) ValidateClassification(ctx context.Context, c entities.Classification) error {
	return f(c)
}

type equipmentFixture struct {
	store     *fakeStore
	publisher *fakePublisher
	svc       *EquipmentService
}

func newEquipmentFixture(deleteAllowed bool, validate classificationFunc) *equipmentFixture {
	if validate == nil {
		validate = func(entities.Classification) error { return nil }
	}
	store := newFakeStore()
	publisher := &fakePublisher{}
	cache := NewEquipmentCache(newFakeCacheRepo(), time.Minute, nil, zap.NewNop())
	svc := NewEquipmentService(
		&fakeTxManager{store: store},
		&fakeEquipmentRepo{store: store},
		validate,
		cache,
		publisher,
		authz.PermissionFunc(func([]string) bool { return deleteAllowed }),
		fixedClock,
		zap.NewNop(),
	)
	return &equipmentFixture{store: store, publisher: publisher, svc: svc}
}

func validCreateDTO() dto.CreateEquipmentDTO {
	return dto.CreateEquipmentDTO{
		SerialNumber:  sptr(" SN-0001 "),
		CategoryID:    1,
		SubcategoryID: 10,
		BrandID:       100,
		ModelID:       1000,
	}
}

func TestEquipmentService_Create(t *testing.T) {
	t.Run("по умолчанию на складе и в работе", func(t *testing.T) {
		f := newEquipmentFixture(false, nil)
		res, err := f.svc.Create(ctxWithUser(1), validCreateDTO())
		require.NoError(t, err)

		assert.Equal(t, "OPERATIONAL", res.LifecycleState)
		assert.Equal(t, "WAREHOUSE", res.Location.Kind)
		require.NotNil(t, res.SerialNumber)
		assert.Equal(t, "SN-0001", *res.SerialNumber)
		assert.True(t, res.Active)

		require.Len(t, f.publisher.events, 1)
		assert.Equal(t, events.ReasonCreated, f.publisher.events[0].(events.EquipmentRecordChangedEvent).Reason)
	})

	t.Run("в точке продаж", func(t *testing.T) {
		f := newEquipmentFixture(false, nil)
		d := validCreateDTO()
		d.Location = &dto.LocationDTO{Kind: "STORE", StoreID: u64(7), Hostname: sptr("pos-07")}
		res, err := f.svc.Create(context.Background(), d)
		require.NoError(t, err)
		assert.Equal(t, entities.AtStore{StoreID: 7, Hostname: sptr("pos-07")}, f.store.equipment[res.ID].Location)
	})

	t.Run("без серийного и инвентарного номера", func(t *testing.T) {
		f := newEquipmentFixture(false, nil)
		d := validCreateDTO()
		d.SerialNumber = sptr("   ")
		_, err := f.svc.Create(context.Background(), d)
		assert.Equal(t, "VALIDATION_ERROR", apperrors.Code(err))
		assert.Empty(t, f.store.equipment)
	})

	t.Run("списанной создать нельзя", func(t *testing.T) {
		f := newEquipmentFixture(false, nil)
		d := validCreateDTO()
		d.LifecycleState = "retired"
		_, err := f.svc.Create(context.Background(), d)
		assert.Equal(t, "VALIDATION_ERROR", apperrors.Code(err))
	})

	t.Run("в пути создать нельзя", func(t *testing.T) {
		f := newEquipmentFixture(false, nil)
		d := validCreateDTO()
		d.Location = &dto.LocationDTO{Kind: "IN_TRANSIT", MovementID: u64(1)}
		_, err := f.svc.Create(context.Background(), d)
		assert.Equal(t, "VALIDATION_ERROR", apperrors.Code(err))
	})

	t.Run("ошибка каталога", func(t *testing.T) {
		f := newEquipmentFixture(false, func(c entities.Classification) error {
			return apperrors.NewValidationError("model_id", "модель %d не относится к бренду %d", c.ModelID, c.BrandID)
		})
		_, err := f.svc.Create(context.Background(), validCreateDTO())
		var vErr *apperrors.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "model_id", vErr.Field)
		assert.Empty(t, f.store.equipment)
	})

	t.Run("несуществующий родитель", func(t *testing.T) {
		f := newEquipmentFixture(false, nil)
		d := validCreateDTO()
		d.ParentID = u64(99)
		_, err := f.svc.Create(context.Background(), d)
		var vErr *apperrors.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "parent_id", vErr.Field)
	})
}

func TestEquipmentService_Update(t *testing.T) {
	t.Run("меняются только присланные поля", func(t *testing.T) {
		f := newEquipmentFixture(false, nil)
		id := f.store.addEquipment(entities.Equipment{Active: true, SerialNumber: sptr("SN-1"), OS: sptr("Linux"), Notes: sptr("старое")})

		_, err := f.svc.Update(context.Background(), id, dto.UpdateEquipmentDTO{
			Notes:      null.StringFrom("новое"),
			OS:         null.StringFrom("игнорируется"),
			SentFields: map[string]bool{"notes": true},
		})
		require.NoError(t, err)

		e := f.store.equipment[id]
		assert.Equal(t, "новое", *e.Notes)
		assert.Equal(t, "Linux", *e.OS)
		assert.Equal(t, "SN-1", *e.SerialNumber)
	})

	t.Run("нельзя стереть обе идентификации", func(t *testing.T) {
		f := newEquipmentFixture(false, nil)
		id := f.store.addEquipment(entities.Equipment{Active: true, SerialNumber: sptr("SN-1")})

		_, err := f.svc.Update(context.Background(), id, dto.UpdateEquipmentDTO{
			SerialNumber: null.NewString("", false),
			SentFields:   map[string]bool{"serial_number": true},
		})
		assert.Equal(t, "VALIDATION_ERROR", apperrors.Code(err))
		assert.Equal(t, "SN-1", *f.store.equipment[id].SerialNumber)
	})

	t.Run("смена модели проверяется по каталогу", func(t *testing.T) {
		var checked entities.Classification
		f := newEquipmentFixture(false, func(c entities.Classification) error {
			checked = c
			return nil
		})
		id := f.store.addEquipment(entities.Equipment{Active: true, SerialNumber: sptr("SN-1"), CategoryID: 1, SubcategoryID: 10, BrandID: 100, ModelID: 1000})

		_, err := f.svc.Update(context.Background(), id, dto.UpdateEquipmentDTO{ModelID: u64(1001)})
		require.NoError(t, err)
		assert.Equal(t, entities.Classification{CategoryID: 1, SubcategoryID: 10, BrandID: 100, ModelID: 1001}, checked)
		assert.Equal(t, uint64(1001), f.store.equipment[id].ModelID)
	})

	t.Run("подключение к самой себе", func(t *testing.T) {
		f := newEquipmentFixture(false, nil)
		id := f.store.addEquipment(entities.Equipment{Active: true, SerialNumber: sptr("SN-1")})

		_, err := f.svc.Update(context.Background(), id, dto.UpdateEquipmentDTO{
			ParentID:   null.Uint64From(id),
			SentFields: map[string]bool{"parent_id": true},
		})
		assert.Equal(t, "VALIDATION_ERROR", apperrors.Code(err))
	})
}

func TestEquipmentService_SoftDelete(t *testing.T) {
	t.Run("без права", func(t *testing.T) {
		f := newEquipmentFixture(false, nil)
		id := f.store.addEquipment(entities.Equipment{Active: true})
		err := f.svc.SoftDelete(ctxWithUser(1, "operator"), id)
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
		assert.True(t, f.store.equipment[id].Active)
	})

	t.Run("аксессуары отсоединяются, но остаются", func(t *testing.T) {
		f := newEquipmentFixture(true, nil)
		parent := f.store.addEquipment(entities.Equipment{Active: true})
		scanner := f.store.addEquipment(entities.Equipment{Active: true, ParentID: &parent})
		drawer := f.store.addEquipment(entities.Equipment{Active: true, ParentID: &parent})

		require.NoError(t, f.svc.SoftDelete(ctxWithUser(1, "admin"), parent))

		assert.False(t, f.store.equipment[parent].Active)
		assert.True(t, f.store.equipment[scanner].Active)
		assert.Nil(t, f.store.equipment[scanner].ParentID)
		assert.Nil(t, f.store.equipment[drawer].ParentID)

		require.Len(t, f.publisher.events, 2)
		detach := f.publisher.events[1].(events.EquipmentRecordChangedEvent)
		assert.Equal(t, events.ReasonAccessoryDetach, detach.Reason)
		assert.Equal(t, []uint64{scanner, drawer}, detach.EquipmentIDs)

		err := f.svc.SoftDelete(ctxWithUser(1, "admin"), parent)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("единицу в пути удалить нельзя", func(t *testing.T) {
		f := newEquipmentFixture(true, nil)
		id := f.store.addEquipment(entities.Equipment{Active: true, Location: entities.InTransit{MovementID: 3}})
		err := f.svc.SoftDelete(ctxWithUser(1, "admin"), id)
		assert.Equal(t, "CONFLICT", apperrors.Code(err))
		assert.True(t, f.store.equipment[id].Active)
	})
}

func TestEquipmentService_Reactivate(t *testing.T) {
	f := newEquipmentFixture(true, nil)
	id := f.store.addEquipment(entities.Equipment{Active: false, SerialNumber: sptr("SN-9"), ModelID: 1})
	d := dto.ReactivateEquipmentDTO{CategoryID: 2, SubcategoryID: 20, BrandID: 200, ModelID: 2000}

	res, err := f.svc.Reactivate(context.Background(), id, d)
	require.NoError(t, err)
	assert.True(t, res.Active)
	assert.Equal(t, uint64(2000), f.store.equipment[id].ModelID)

	_, err = f.svc.Reactivate(context.Background(), id, d)
	assert.Equal(t, "CONFLICT", apperrors.Code(err))
}

func TestEquipmentService_GetByIDUsesCache(t *testing.T) {
	f := newEquipmentFixture(false, nil)
	id := f.store.addEquipment(entities.Equipment{Active: true, SerialNumber: sptr("SN-1")})

	first, err := f.svc.GetByID(context.Background(), id)
	require.NoError(t, err)

	delete(f.store.equipment, id)
	cached, err := f.svc.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, first.ID, cached.ID)

	require.NoError(t, f.svc.cache.Invalidate(context.Background(), []uint64{id}))
	_, err = f.svc.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

// movingEquipmentRepo после чтения из БД один раз имитирует перемещение, которое
// фиксируется и сбрасывает кеш до того, как читатель успел сохранить результат.
type movingEquipmentRepo struct {
	*fakeEquipmentRepo
	cache *EquipmentCache
	moved bool
}

func (r *movingEquipmentRepo) moveAfterRead(ctx context.Context, id uint64) {
	if r.moved {
		return
	}
	r.moved = true
	e := r.store.equipment[id]
	e.Location = entities.InTransit{MovementID: 77}
	r.store.equipment[id] = e
	_ = r.cache.Invalidate(ctx, []uint64{id})
}

func (r *movingEquipmentRepo) GetAll(ctx context.Context, filter types.Filter) ([]*entities.Equipment, uint64, error) {
	items, total, err := r.fakeEquipmentRepo.GetAll(ctx, filter)
	if len(items) > 0 {
		r.moveAfterRead(ctx, items[0].ID)
	}
	return items, total, err
}

func (r *movingEquipmentRepo) FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Equipment, error) {
	e, err := r.fakeEquipmentRepo.FindByID(ctx, tx, id)
	if err == nil {
		r.moveAfterRead(ctx, id)
	}
	return e, err
}

func newMovingFixture() (*fakeStore, *EquipmentService) {
	store := newFakeStore()
	cache := NewEquipmentCache(newFakeCacheRepo(), time.Minute, nil, zap.NewNop())
	repo := &movingEquipmentRepo{fakeEquipmentRepo: &fakeEquipmentRepo{store: store}, cache: cache}
	svc := NewEquipmentService(
		&fakeTxManager{store: store}, repo,
		classificationFunc(func(entities.Classification) error { return nil }),
		cache, &fakePublisher{},
		authz.PermissionFunc(func([]string) bool { return true }),
		fixedClock, zap.NewNop(),
	)
	return store, svc
}

func TestEquipmentService_ListNotStaleWhenMovedDuringRead(t *testing.T) {
	store, svc := newMovingFixture()
	store.addEquipment(entities.Equipment{Active: true, SerialNumber: sptr("SN-1")})
	filter := types.Filter{Limit: 20, Page: 1}

	first, _, err := svc.List(context.Background(), filter)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, "WAREHOUSE", first[0].Location.Kind)

	second, _, err := svc.List(context.Background(), filter)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "IN_TRANSIT", second[0].Location.Kind)
}

func TestEquipmentService_GetByIDNotStaleWhenMovedDuringRead(t *testing.T) {
	store, svc := newMovingFixture()
	id := store.addEquipment(entities.Equipment{Active: true, SerialNumber: sptr("SN-1")})

	first, err := svc.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "WAREHOUSE", first.Location.Kind)

	second, err := svc.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "IN_TRANSIT", second.Location.Kind)
}
