package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"

	"inventory-system/internal/entities"
)

// Код акта выдачи: буквы/цифры, допускаются "-" и "/", например "ACT-2024/0153".
var actCodeRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9\-/]{2,49}$`)

// registerRules регистрирует теги, которые мы используем в struct tags
func registerRules(v *validator.Validate) error {
	if err := v.RegisterValidation("lifecycle_state", isLifecycleState); err != nil {
		return err
	}
	if err := v.RegisterValidation("location_kind", isLocationKind); err != nil {
		return err
	}
	if err := v.RegisterValidation("act_code", isActCode); err != nil {
		return err
	}
	return nil
}

func isLifecycleState(fl validator.FieldLevel) bool {
	return entities.LifecycleState(fl.Field().String()).Valid()
}

// IN_TRANSIT нельзя запросить напрямую: это состояние выставляет оркестратор.
func isLocationKind(fl validator.FieldLevel) bool {
	kind := entities.LocationKind(fl.Field().String())
	return kind.Valid() && kind != entities.LocationInTransit
}

func isActCode(fl validator.FieldLevel) bool {
	return IsActCode(fl.Field().String())
}

func IsActCode(s string) bool {
	return actCodeRe.MatchString(s)
}
