package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"inventory-system/internal/dto"
	"inventory-system/pkg/types"
	"inventory-system/pkg/utils"
)

// MaxExportRows ограничивает выгрузку, чтобы не собирать книгу на весь реестр.
const MaxExportRows = 10000

const exportSheet = "Оборудование"

var exportHeaders = []string{
	"ID", "Серийный номер", "Инвентарный код", "Бренд", "Модель", "Состояние",
	"Местонахождение", "Детали местонахождения", "Родитель", "ОС", "Заметки", "Активна", "Создано",
}

// EquipmentLister - источник строк выгрузки; тот же список, что на экране.
type EquipmentLister interface {
	List(ctx context.Context, filter types.Filter) ([]dto.EquipmentDTO, uint64, error)
}

type ExportService struct {
	lister EquipmentLister
	logger *zap.Logger
}

func NewExportService(lister EquipmentLister, logger *zap.Logger) *ExportService {
	return &ExportService{lister: lister, logger: logger}
}

// BuildWorkbook выгружает список с теми же фильтрами, поиском и сортировкой, что и
// List. Пагинация запроса игнорируется: берутся первые MaxExportRows строк.
func (s *ExportService) BuildWorkbook(ctx context.Context, filter types.Filter) (*excelize.File, error) {
	filter.Limit = MaxExportRows
	filter.Offset = 0
	filter.Page = 1
	filter.WithPagination = true

	items, total, err := s.lister.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if total > uint64(len(items)) {
		s.logger.Warn("Выгрузка обрезана",
			zap.Uint64("total", total),
			zap.Int("exported", len(items)),
		)
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeaders); err != nil {
		return nil, err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	if err := f.SetCellStyle(exportSheet, "A1", lastHeader, style); err != nil {
		return nil, err
	}

	for i, item := range items {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := exportRow(item)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("строка %d выгрузки: %w", i+2, err)
		}
	}

	_ = f.SetColWidth(exportSheet, "B", "C", 20)
	_ = f.SetColWidth(exportSheet, "D", "F", 18)
	_ = f.SetColWidth(exportSheet, "H", "H", 40)
	_ = f.SetColWidth(exportSheet, "K", "K", 40)
	return f, nil
}

func exportRow(item dto.EquipmentDTO) []interface{} {
	parent := ""
	if item.ParentID != nil {
		parent = fmt.Sprint(*item.ParentID)
	}
	active := "нет"
	if item.Active {
		active = "да"
	}
	return []interface{}{
		item.ID, utils.SafeDeref(item.SerialNumber), utils.SafeDeref(item.InventoryCode), item.BrandName, item.ModelName,
		item.LifecycleState, item.Location.Kind, DescribeLocation(item.Location), parent,
		utils.SafeDeref(item.OS), utils.SafeDeref(item.Notes), active, item.CreatedAt,
	}
}

// DescribeLocation - человекочитаемые детали местонахождения для выгрузки.
func DescribeLocation(l dto.LocationDTO) string {
	var parts []string
	add := func(label string, v *string) {
		if v != nil && *v != "" {
			parts = append(parts, label+": "+*v)
		}
	}
	if l.StoreID != nil {
		parts = append(parts, fmt.Sprintf("точка %d", *l.StoreID))
	}
	add("позиция", l.Position)
	add("зона", l.Area)
	add("hostname", l.Hostname)
	if l.PersonID != nil {
		parts = append(parts, fmt.Sprintf("сотрудник %d", *l.PersonID))
	}
	add("акт", l.ActCode)
	if l.MovementID != nil {
		parts = append(parts, fmt.Sprintf("перемещение %d", *l.MovementID))
	}
	return strings.Join(parts, ", ")
}
