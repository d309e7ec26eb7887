package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"inventory-system/internal/dto"
	"inventory-system/internal/entities"
	"inventory-system/internal/services"
	"inventory-system/pkg/api"
	apperrors "inventory-system/pkg/errors"
	"inventory-system/pkg/utils"
)

type CatalogController struct {
	catalogService services.CatalogServiceInterface
	logger         *zap.Logger
}

func NewCatalogController(catalogService services.CatalogServiceInterface, logger *zap.Logger) *CatalogController {
	return &CatalogController{catalogService: catalogService, logger: logger}
}

func optionalUintParam(ctx echo.Context, name string) (*uint64, error) {
	raw := ctx.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || v == 0 {
		return nil, apperrors.NewValidationError(name, "ожидается положительное целое число")
	}
	return &v, nil
}

// GetOptions - опции одного уровня: ?level=subcategory&parent_id=3.
func (c *CatalogController) GetOptions(ctx echo.Context) error {
	parentID, err := optionalUintParam(ctx, "parent_id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	level := entities.CatalogLevel(ctx.QueryParam("level"))
	if level == "" {
		level = entities.LevelCategory
	}
	res, err := c.catalogService.Options(ctx.Request().Context(), level, parentID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessPlainList(ctx, "Опции каталога получены", res)
}

// GetCascade - состояние каскадного фильтра для выбранных уровней.
func (c *CatalogController) GetCascade(ctx echo.Context) error {
	var selection dto.CascadeSelectionDTO
	targets := []struct {
		name string
		dst  **uint64
	}{
		{"category_id", &selection.CategoryID},
		{"subcategory_id", &selection.SubcategoryID},
		{"brand_id", &selection.BrandID},
		{"model_id", &selection.ModelID},
	}
	for _, t := range targets {
		v, err := optionalUintParam(ctx, t.name)
		if err != nil {
			return utils.ErrorResponse(ctx, err, c.logger)
		}
		*t.dst = v
	}

	res, err := c.catalogService.Cascade(ctx.Request().Context(), selection)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Каскад каталога получен", res)
}
