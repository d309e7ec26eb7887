package services

import (
	"strings"
	"time"

	"inventory-system/internal/dto"
	"inventory-system/internal/entities"
	apperrors "inventory-system/pkg/errors"
	"inventory-system/pkg/utils"
	"inventory-system/pkg/validation"
)

// LocationFromDTO превращает плоскую форму API в вариант местонахождения.
// IN_TRANSIT запросить нельзя. Для сотрудника обязателен код акта; дата выдачи
// по умолчанию равна now.
func LocationFromDTO(d dto.LocationDTO, now time.Time) (entities.Location, error) {
	switch entities.LocationKind(strings.ToUpper(strings.TrimSpace(d.Kind))) {
	case entities.LocationWarehouse:
		return entities.AtWarehouse{}, nil

	case entities.LocationStore:
		if d.StoreID == nil || *d.StoreID == 0 {
			return nil, apperrors.NewValidationError("store_id", "для точки продаж нужно указать store_id")
		}
		return entities.AtStore{
			StoreID:  *d.StoreID,
			Position: trimmed(d.Position),
			Area:     trimmed(d.Area),
			Hostname: trimmed(d.Hostname),
		}, nil

	case entities.LocationPerson:
		if d.PersonID == nil || *d.PersonID == 0 {
			return nil, apperrors.NewValidationError("person_id", "для выдачи сотруднику нужно указать person_id")
		}
		act := ""
		if d.ActCode != nil {
			act = strings.TrimSpace(*d.ActCode)
		}
		if act == "" {
			return nil, apperrors.NewValidationError("act_code", "для выдачи сотруднику требуется код акта")
		}
		if !validation.IsActCode(act) {
			return nil, apperrors.NewValidationError("act_code", "неверный формат кода акта %q", act)
		}
		assignedAt := now
		if d.AssignedAt != nil {
			assignedAt = *d.AssignedAt
		}
		return entities.WithPerson{PersonID: *d.PersonID, AssignedAt: assignedAt, ActCode: act}, nil

	case entities.LocationInTransit:
		return nil, apperrors.NewValidationError("kind", "состояние IN_TRANSIT выставляется только перемещением")
	}
	return nil, apperrors.NewValidationError("kind", "неизвестный вид местонахождения %q", d.Kind)
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func LocationToDTO(loc entities.Location) dto.LocationDTO {
	switch l := loc.(type) {
	case entities.AtStore:
		return dto.LocationDTO{
			Kind:     string(l.Kind()),
			StoreID:  utils.ToPtr(l.StoreID),
			Position: l.Position,
			Area:     l.Area,
			Hostname: l.Hostname,
		}
	case entities.WithPerson:
		return dto.LocationDTO{
			Kind:       string(l.Kind()),
			PersonID:   utils.ToPtr(l.PersonID),
			AssignedAt: utils.ToPtr(l.AssignedAt),
			ActCode:    utils.ToPtr(l.ActCode),
		}
	case entities.InTransit:
		return dto.LocationDTO{Kind: string(l.Kind()), MovementID: utils.ToPtr(l.MovementID)}
	case nil:
		return dto.LocationDTO{}
	default:
		return dto.LocationDTO{Kind: string(loc.Kind())}
	}
}

func EquipmentToDTO(e *entities.Equipment) dto.EquipmentDTO {
	return dto.EquipmentDTO{
		ID:             e.ID,
		SerialNumber:   e.SerialNumber,
		InventoryCode:  e.InventoryCode,
		CategoryID:     e.CategoryID,
		SubcategoryID:  e.SubcategoryID,
		BrandID:        e.BrandID,
		ModelID:        e.ModelID,
		BrandName:      e.BrandName,
		ModelName:      e.ModelName,
		LifecycleState: string(e.LifecycleState),
		Location:       LocationToDTO(e.Location),
		ParentID:       e.ParentID,
		OS:             e.OS,
		Notes:          e.Notes,
		Active:         e.Active,
		CreatedAt:      utils.SafeDeref(utils.FormatTimePtr(e.CreatedAt)),
		UpdatedAt:      utils.SafeDeref(utils.FormatTimePtr(e.UpdatedAt)),
	}
}

func MovementToDTO(m *entities.Movement) dto.MovementDTO {
	var arrivedAt, cancelledAt *string
	if m.ArrivedAt != nil {
		arrivedAt = utils.ToPtr(utils.FormatTime(*m.ArrivedAt))
	}
	if m.CancelledAt != nil {
		cancelledAt = utils.ToPtr(utils.FormatTime(*m.CancelledAt))
	}
	return dto.MovementDTO{
		ID:          m.ID,
		EquipmentID: m.EquipmentID,
		BatchID:     m.BatchID,
		Origin:      LocationToDTO(m.Origin),
		Destination: LocationToDTO(m.Destination),
		Status:      string(m.Status),
		DepartedAt:  utils.FormatTime(m.DepartedAt),
		ArrivedAt:   arrivedAt,
		CancelledAt: cancelledAt,
		ActorID:     m.ActorID,
		Note:        m.Note,
	}
}

func MovementsToDTO(items []entities.Movement) []dto.MovementDTO {
	result := make([]dto.MovementDTO, 0, len(items))
	for i := range items {
		result = append(result, MovementToDTO(&items[i]))
	}
	return result
}
