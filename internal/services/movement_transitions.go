package services

import (
	"inventory-system/internal/entities"
	apperrors "inventory-system/pkg/errors"
)

// TransitionKind - как единица попадает в пункт назначения.
type TransitionKind int

const (
	// TransitionDispatch - со склада в точку продаж или сотруднику, через стадию "в пути".
	TransitionDispatch TransitionKind = iota + 1
	// TransitionReturn - из точки продаж или от сотрудника на склад, через стадию "в пути".
	TransitionReturn
	// TransitionLateral - между точками продаж и сотрудниками, без стадии "в пути".
	TransitionLateral
)

func (k TransitionKind) String() string {
	switch k {
	case TransitionDispatch:
		return "dispatch"
	case TransitionReturn:
		return "return"
	case TransitionLateral:
		return "lateral"
	}
	return "unknown"
}

// HasTransitStage - перемещение остаётся открытым до подтверждения прибытия.
func (k TransitionKind) HasTransitStage() bool {
	return k == TransitionDispatch || k == TransitionReturn
}

// PlanTransition проверяет, достижим ли пункт назначения из текущего состояния единицы.
// Порядок проверок задаёт код ошибки: сначала неактивность и списание, затем
// открытое перемещение (конфликт), затем совпадение места и таблица переходов.
func PlanTransition(e *entities.Equipment, destination entities.Location) (TransitionKind, error) {
	if destination == nil {
		return 0, apperrors.NewValidationError("destination", "пункт назначения не указан")
	}
	if destination.Kind() == entities.LocationInTransit {
		return 0, apperrors.NewValidationError("destination", "нельзя переместить в состояние IN_TRANSIT")
	}
	if person, ok := destination.(entities.WithPerson); ok && person.ActCode == "" {
		return 0, apperrors.NewValidationError("act_code", "для выдачи сотруднику требуется код акта")
	}

	from := string(kindOf(e.Location))
	to := string(destination.Kind())

	if !e.Active {
		return 0, apperrors.NewInvalidTransitionError(from, to, "единица %d деактивирована", e.ID)
	}
	if e.LifecycleState == entities.StateRetired {
		return 0, apperrors.NewInvalidTransitionError(from, to, "единица %d списана", e.ID)
	}
	if e.IsInTransit() {
		return 0, apperrors.NewConflictError("у единицы %d уже есть открытое перемещение", e.ID)
	}
	if entities.SamePlace(e.Location, destination) {
		return 0, apperrors.NewInvalidTransitionError(from, to, "единица %d уже находится в этом месте", e.ID)
	}

	switch kindOf(e.Location) {
	case entities.LocationWarehouse:
		switch destination.Kind() {
		case entities.LocationStore, entities.LocationPerson:
			return TransitionDispatch, nil
		}
	case entities.LocationStore, entities.LocationPerson:
		switch destination.Kind() {
		case entities.LocationWarehouse:
			return TransitionReturn, nil
		case entities.LocationStore, entities.LocationPerson:
			return TransitionLateral, nil
		}
	}
	return 0, apperrors.NewInvalidTransitionError(from, to, "переход не предусмотрен")
}

func kindOf(loc entities.Location) entities.LocationKind {
	if loc == nil {
		return ""
	}
	return loc.Kind()
}
