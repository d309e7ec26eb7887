package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"inventory-system/internal/dto"
	"inventory-system/internal/services"
	"inventory-system/pkg/api"
	apperrors "inventory-system/pkg/errors"
	"inventory-system/pkg/utils"
)

type MovementController struct {
	orchestrator       services.MovementOrchestratorInterface
	stuckThresholdDays int
	now                func() time.Time
	logger             *zap.Logger
}

func NewMovementController(orchestrator services.MovementOrchestratorInterface, stuckThresholdDays int, logger *zap.Logger) *MovementController {
	return &MovementController{
		orchestrator:       orchestrator,
		stuckThresholdDays: stuckThresholdDays,
		now:                time.Now,
		logger:             logger,
	}
}

// BatchMove - пакетное перемещение. Ответ 200 даже при частичном успехе: итог по
// каждой единице в теле.
func (c *MovementController) BatchMove(ctx echo.Context) error {
	var d dto.BatchMovementDTO
	if err := ctx.Bind(&d); err != nil {
		return utils.ErrorResponse(ctx, badBody(err), c.logger)
	}
	if err := ctx.Validate(&d); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	destination, err := services.LocationFromDTO(d.Destination, c.now())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	opts := services.MoveOptions{
		ImmediateComplete: d.ImmediateComplete,
		DepartAt:          d.DepartAt,
		Note:              d.Note,
	}
	if err := opts.Validate(c.now()); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.orchestrator.Execute(ctx.Request().Context(), d.EquipmentIDs, destination, opts)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Пакет перемещений обработан", res)
}

func (c *MovementController) ReturnToWarehouse(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var d dto.ReturnToWarehouseDTO
	if ctx.Request().ContentLength != 0 {
		if err := ctx.Bind(&d); err != nil {
			return utils.ErrorResponse(ctx, badBody(err), c.logger)
		}
		if err := ctx.Validate(&d); err != nil {
			return utils.ErrorResponse(ctx, err, c.logger)
		}
	}
	opts := services.MoveOptions{
		ImmediateComplete: d.ImmediateComplete,
		DepartAt:          d.DepartAt,
		Note:              d.Note,
	}
	if err := opts.Validate(c.now()); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.orchestrator.ReturnToWarehouse(ctx.Request().Context(), id, opts)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusCreated, "Возврат на склад оформлен", res)
}

func (c *MovementController) ConfirmArrival(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.orchestrator.ConfirmArrival(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Прибытие подтверждено", res)
}

func (c *MovementController) CancelMovement(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.orchestrator.CancelMovement(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Перемещение отменено", res)
}

func (c *MovementController) History(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.orchestrator.History(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessPlainList(ctx, "История перемещений получена", res)
}

// Stuck - открытые перемещения старше ?days= (по умолчанию порог из конфигурации).
func (c *MovementController) Stuck(ctx echo.Context) error {
	days := c.stuckThresholdDays
	if raw := ctx.QueryParam("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return utils.ErrorResponse(ctx, apperrors.NewValidationError("days", "ожидается целое число"), c.logger)
		}
		days = parsed
	}
	res, err := c.orchestrator.StuckMovements(ctx.Request().Context(), days)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessPlainList(ctx, "Зависшие перемещения получены", res)
}
