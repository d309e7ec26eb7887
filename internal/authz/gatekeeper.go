package authz

import "strings"

// PermissionChecker - граница с сервисом авторизации: есть ли у одной из ролей
// нужная возможность. Сам сервис ролевой логики не содержит.
type PermissionChecker interface {
	HasPermission(roles []string) bool
}

// PermissionFunc позволяет передать функцию там, где ждут PermissionChecker.
type PermissionFunc func(roles []string) bool

func (f PermissionFunc) HasPermission(roles []string) bool { return f(roles) }

// Gatekeeper сопоставляет роли из токена с правами. Таблица приходит из конфигурации.
type Gatekeeper struct {
	grants map[string]map[string]bool
}

// NewGatekeeper принимает таблицу право -> роли.
func NewGatekeeper(grants map[string][]string) *Gatekeeper {
	g := &Gatekeeper{grants: make(map[string]map[string]bool, len(grants))}
	for permission, roles := range grants {
		set := make(map[string]bool, len(roles))
		for _, role := range roles {
			set[strings.ToLower(role)] = true
		}
		g.grants[permission] = set
	}
	return g
}

// Can - есть ли право у одной из ролей. Роль superuser проходит всегда.
func (g *Gatekeeper) Can(roles []string, permission string) bool {
	allowed := g.grants[permission]
	for _, role := range roles {
		role = strings.ToLower(role)
		if role == Superuser || allowed[role] {
			return true
		}
	}
	return false
}

// Checker возвращает проверку одного права в виде PermissionChecker.
func (g *Gatekeeper) Checker(permission string) PermissionChecker {
	return PermissionFunc(func(roles []string) bool {
		return g.Can(roles, permission)
	})
}
