package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-system/internal/entities"
	"inventory-system/pkg/types"
)

func TestNormalizeEquipmentFilter(t *testing.T) {
	t.Run("по умолчанию только активные", func(t *testing.T) {
		out := NormalizeEquipmentFilter(types.Filter{})
		assert.Equal(t, true, out.Filter["active"])
	})

	t.Run("filter[active]=all снимает ограничение", func(t *testing.T) {
		in := types.Filter{Filter: map[string]interface{}{"active": "all"}}
		out := NormalizeEquipmentFilter(in)
		assert.NotContains(t, out.Filter, "active")
		assert.Equal(t, "all", in.Filter["active"], "исходный фильтр не меняется")
	})

	t.Run("вид местонахождения и состояние в верхнем регистре", func(t *testing.T) {
		out := NormalizeEquipmentFilter(types.Filter{Filter: map[string]interface{}{"location": "store", "lifecycle_state": "retired"}})
		assert.Equal(t, "STORE", out.Filter["location"])
		assert.Equal(t, "RETIRED", out.Filter["lifecycle_state"])
	})
}

func TestBuildEquipmentListQueries(t *testing.T) {
	filter := types.Filter{
		Filter:         map[string]interface{}{"location": "store", "store_id": "4", "hostname": "x"},
		Sort:           map[string]string{"brand": "asc"},
		Limit:          20,
		Offset:         40,
		WithPagination: true,
	}
	list, count := BuildEquipmentListQueries(filter)

	countSQL, countArgs, err := count.ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT COUNT(*) FROM equipment e LEFT JOIN catalog_items b ON b.id = e.brand_id LEFT JOIN catalog_items m ON m.id = e.model_id "+
			"WHERE e.active = $1 AND e.location_kind = $2 AND e.store_id = $3",
		countSQL)
	assert.Equal(t, []interface{}{true, "STORE", "4"}, countArgs)

	listSQL, listArgs, err := list.ToSql()
	require.NoError(t, err)
	assert.Contains(t, listSQL, "WHERE e.active = $1 AND e.location_kind = $2 AND e.store_id = $3")
	assert.Contains(t, listSQL, "ORDER BY b.name ASC, e.id DESC LIMIT 20 OFFSET 40")
	assert.Equal(t, countArgs, listArgs)
}

func TestBuildEquipmentListQueries_Search(t *testing.T) {
	_, count := BuildEquipmentListQueries(types.Filter{Search: "SN-1", Filter: map[string]interface{}{"active": "all"}})

	countSQL, args, err := count.ToSql()
	require.NoError(t, err)
	assert.Contains(t, countSQL, "WHERE (e.serial_number ILIKE $1 OR e.inventory_code ILIKE $2 OR m.name ILIKE $3 OR b.name ILIKE $4)")
	assert.Len(t, args, 4)
}

func TestLocationColumns(t *testing.T) {
	kind, detail, err := locationColumns(entities.AtWarehouse{})
	require.NoError(t, err)
	assert.Equal(t, "WAREHOUSE", kind)
	assert.Nil(t, detail)

	kind, detail, err = locationColumns(entities.AtStore{StoreID: 9})
	require.NoError(t, err)
	assert.Equal(t, "STORE", kind)
	assert.JSONEq(t, `{"store_id": 9}`, detail.(string))

	_, _, err = locationColumns(nil)
	assert.Error(t, err)
}
