package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"inventory-system/internal/dto"
	"inventory-system/pkg/types"
)

type fakeLister struct {
	items  []dto.EquipmentDTO
	total  uint64
	err    error
	filter types.Filter
}

func (f *fakeLister) List(ctx context.Context, filter types.Filter) ([]dto.EquipmentDTO, uint64, error) {
	f.filter = filter
	return f.items, f.total, f.err
}

func TestExport_BuildWorkbook(t *testing.T) {
	storeID, parentID := uint64(4), uint64(9)
	lister := &fakeLister{
		items: []dto.EquipmentDTO{
			{
				ID: 5, SerialNumber: sptr("SN-5"), BrandName: "Ingenico", ModelName: "Move/5000",
				LifecycleState: "OPERATIONAL", Active: true, ParentID: &parentID,
				Location: dto.LocationDTO{Kind: "STORE", StoreID: &storeID, Hostname: sptr("POS-1")},
			},
			{
				ID: 6, InventoryCode: sptr("INV-6"), BrandName: "Zebra", ModelName: "DS2208",
				LifecycleState: "INOPERATIVE", Location: dto.LocationDTO{Kind: "WAREHOUSE"},
			},
		},
		total: 2,
	}
	svc := NewExportService(lister, zap.NewNop())

	f, err := svc.BuildWorkbook(context.Background(), types.Filter{Limit: 20, Page: 3, Offset: 40, Search: "pos"})
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, MaxExportRows, lister.filter.Limit)
	assert.Zero(t, lister.filter.Offset)
	assert.Equal(t, "pos", lister.filter.Search)

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, exportHeaders, rows[0])
	assert.Equal(t, []string{"5", "SN-5", "", "Ingenico", "Move/5000", "OPERATIONAL", "STORE", "точка 4, hostname: POS-1", "9", "", "", "да"}, rows[1])
	assert.Equal(t, "INV-6", rows[2][2])
	assert.Equal(t, "нет", rows[2][11])
}

func TestExport_ListerError(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewExportService(&fakeLister{err: boom}, zap.NewNop()).BuildWorkbook(context.Background(), types.Filter{})
	assert.ErrorIs(t, err, boom)
}

func TestDescribeLocation_Person(t *testing.T) {
	personID := uint64(12)
	got := DescribeLocation(dto.LocationDTO{Kind: "PERSON", PersonID: &personID, ActCode: sptr("ACT-2026/15")})
	assert.Equal(t, "сотрудник 12, акт: ACT-2026/15", got)
}
