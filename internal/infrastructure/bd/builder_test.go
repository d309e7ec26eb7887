package db

import (
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-system/pkg/types"
)

var testAllowed = map[string]string{
	"location":  "e.location_kind",
	"parent_id": "e.parent_id",
	"id":        "e.id",
}

func TestApplyListParams_FiltersSortAndPage(t *testing.T) {
	filter := types.Filter{
		Filter:         map[string]interface{}{"location": "STORE,PERSON", "unknown": "x"},
		Sort:           map[string]string{"id": "desc", "hacked; DROP": "asc"},
		Limit:          10,
		Offset:         20,
		WithPagination: true,
	}

	query, args, err := ApplyListParams(sq.Select("*").From("equipment e"), filter, testAllowed).
		PlaceholderFormat(sq.Dollar).ToSql()
	require.NoError(t, err)

	assert.Equal(t, "SELECT * FROM equipment e WHERE e.location_kind IN ($1,$2) ORDER BY e.id DESC LIMIT 10 OFFSET 20", query)
	assert.Equal(t, []interface{}{"STORE", "PERSON"}, args)
}

func TestApplyFilters_NullValue(t *testing.T) {
	filter := types.Filter{Filter: map[string]interface{}{"parent_id": "null"}}

	query, args, err := ApplyFilters(sq.Select("id").From("equipment e"), filter, testAllowed).ToSql()
	require.NoError(t, err)

	assert.Equal(t, "SELECT id FROM equipment e WHERE e.parent_id IS NULL", query)
	assert.Empty(t, args)
}

func TestApplySearch(t *testing.T) {
	query, args, err := ApplySearch(sq.Select("id").From("equipment e"), "  SN-1 ", []string{"e.serial_number", "m.name"}).ToSql()
	require.NoError(t, err)

	assert.Equal(t, "SELECT id FROM equipment e WHERE (e.serial_number ILIKE ? OR m.name ILIKE ?)", query)
	assert.Equal(t, []interface{}{"%SN-1%", "%SN-1%"}, args)
}

func TestApplySortAndPage_WithoutPagination(t *testing.T) {
	filter := types.Filter{Limit: 10, Offset: 10, WithPagination: false}

	query, _, err := ApplySortAndPage(sq.Select("id").From("equipment e"), filter, testAllowed, "e.id DESC").ToSql()
	require.NoError(t, err)

	assert.Equal(t, "SELECT id FROM equipment e ORDER BY e.id DESC", query)
}
