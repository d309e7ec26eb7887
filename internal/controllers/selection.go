package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"inventory-system/internal/dto"
	"inventory-system/internal/services"
	"inventory-system/pkg/api"
	"inventory-system/pkg/utils"
)

type SelectionController struct {
	selectionService *services.SelectionService
	logger           *zap.Logger
}

func NewSelectionController(selectionService *services.SelectionService, logger *zap.Logger) *SelectionController {
	return &SelectionController{selectionService: selectionService, logger: logger}
}

func (c *SelectionController) GetSelection(ctx echo.Context) error {
	res, err := c.selectionService.Get(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Выбор получен", res)
}

func (c *SelectionController) Toggle(ctx echo.Context) error {
	var d dto.ToggleSelectionDTO
	if err := ctx.Bind(&d); err != nil {
		return utils.ErrorResponse(ctx, badBody(err), c.logger)
	}
	if err := ctx.Validate(&d); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.selectionService.Toggle(ctx.Request().Context(), d.EquipmentID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Выбор обновлён", res)
}

// Reconcile - отметки для строк текущей страницы; вызывать после каждой перезагрузки списка.
func (c *SelectionController) Reconcile(ctx echo.Context) error {
	var d dto.ReconcileSelectionDTO
	if err := ctx.Bind(&d); err != nil {
		return utils.ErrorResponse(ctx, badBody(err), c.logger)
	}
	if err := ctx.Validate(&d); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.selectionService.Reconcile(ctx.Request().Context(), d.PageIDs)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Выбор сопоставлен со страницей", res)
}

func (c *SelectionController) Submit(ctx echo.Context) error {
	var d dto.SubmitSelectionDTO
	if err := ctx.Bind(&d); err != nil {
		return utils.ErrorResponse(ctx, badBody(err), c.logger)
	}
	if err := ctx.Validate(&d); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.selectionService.Submit(ctx.Request().Context(), d)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Пакет перемещений обработан", res)
}

func (c *SelectionController) Clear(ctx echo.Context) error {
	if err := c.selectionService.Clear(ctx.Request().Context()); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne[any](ctx, http.StatusOK, "Выбор очищен", nil)
}
