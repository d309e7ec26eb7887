package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-system/internal/dto"
	"inventory-system/internal/entities"
	apperrors "inventory-system/pkg/errors"
)

func TestLocationFromDTO(t *testing.T) {
	t.Run("склад", func(t *testing.T) {
		loc, err := LocationFromDTO(dto.LocationDTO{Kind: "warehouse"}, testNow)
		require.NoError(t, err)
		assert.Equal(t, entities.AtWarehouse{}, loc)
	})

	t.Run("точка продаж без store_id", func(t *testing.T) {
		_, err := LocationFromDTO(dto.LocationDTO{Kind: "STORE"}, testNow)
		var vErr *apperrors.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "store_id", vErr.Field)
	})

	t.Run("сотрудник: дата выдачи по умолчанию", func(t *testing.T) {
		loc, err := LocationFromDTO(dto.LocationDTO{Kind: "PERSON", PersonID: u64(4), ActCode: sptr(" ACT-2024/0153 ")}, testNow)
		require.NoError(t, err)
		assert.Equal(t, entities.WithPerson{PersonID: 4, AssignedAt: testNow, ActCode: "ACT-2024/0153"}, loc)
	})

	t.Run("сотрудник: неверный код акта", func(t *testing.T) {
		_, err := LocationFromDTO(dto.LocationDTO{Kind: "PERSON", PersonID: u64(4), ActCode: sptr("#1")}, testNow)
		assert.Equal(t, "VALIDATION_ERROR", apperrors.Code(err))
	})

	t.Run("неизвестный вид", func(t *testing.T) {
		_, err := LocationFromDTO(dto.LocationDTO{Kind: "GARAGE"}, testNow)
		assert.Equal(t, "VALIDATION_ERROR", apperrors.Code(err))
	})
}

func TestLocationToDTO_RoundTrip(t *testing.T) {
	assigned := time.Date(2025, time.December, 1, 9, 30, 0, 0, time.UTC)
	cases := []entities.Location{
		entities.AtWarehouse{},
		entities.AtStore{StoreID: 3, Position: sptr("касса 4"), Area: sptr("зал"), Hostname: sptr("pos-03-04")},
		entities.WithPerson{PersonID: 8, AssignedAt: assigned, ActCode: "ACT-15"},
	}
	for _, loc := range cases {
		back, err := LocationFromDTO(LocationToDTO(loc), testNow)
		require.NoError(t, err)
		assert.Equal(t, loc, back)
	}

	transit := LocationToDTO(entities.InTransit{MovementID: 12})
	assert.Equal(t, "IN_TRANSIT", transit.Kind)
	assert.Equal(t, u64(12), transit.MovementID)
}

func TestMovementToDTO(t *testing.T) {
	arrived := testNow.Add(time.Hour)
	m := &entities.Movement{
		ID:          5,
		EquipmentID: 2,
		Origin:      entities.AtWarehouse{},
		Destination: entities.AtStore{StoreID: 1},
		Status:      entities.MovementCompleted,
		DepartedAt:  testNow,
		ArrivedAt:   &arrived,
	}
	res := MovementToDTO(m)
	assert.Equal(t, "COMPLETED", res.Status)
	assert.Equal(t, "WAREHOUSE", res.Origin.Kind)
	assert.Equal(t, "STORE", res.Destination.Kind)
	assert.NotNil(t, res.ArrivedAt)
	assert.Nil(t, res.CancelledAt)
}
