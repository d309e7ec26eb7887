package utils

import (
	"context"

	"inventory-system/pkg/contextkeys"
	apperrors "inventory-system/pkg/errors"
)

func GetUserIDFromCtx(ctx context.Context) (uint64, error) {
	userID, ok := ctx.Value(contextkeys.UserIDKey).(uint64)
	if !ok || userID == 0 {
		return 0, apperrors.ErrUserIDNotFoundInContext
	}
	return userID, nil
}

// GetRolesFromCtx возвращает роли, которые auth-middleware достал из токена.
func GetRolesFromCtx(ctx context.Context) []string {
	roles, _ := ctx.Value(contextkeys.UserRolesKey).([]string)
	return roles
}
