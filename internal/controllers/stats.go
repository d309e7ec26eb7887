package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"inventory-system/internal/services"
	"inventory-system/pkg/api"
	"inventory-system/pkg/utils"
)

type StatsController struct {
	statsService  *services.StatsService
	exportService *services.ExportService
	logger        *zap.Logger
}

func NewStatsController(statsService *services.StatsService, exportService *services.ExportService, logger *zap.Logger) *StatsController {
	return &StatsController{statsService: statsService, exportService: exportService, logger: logger}
}

func (c *StatsController) GetStats(ctx echo.Context) error {
	res, err := c.statsService.GetStats(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Статистика оборудования получена", res)
}

// Export принимает те же параметры, что и список, и отдаёт XLSX.
func (c *StatsController) Export(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())
	f, err := c.exportService.BuildWorkbook(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	defer func() { _ = f.Close() }()

	ctx.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename="+xlsxFileName("equipment"))
	ctx.Response().WriteHeader(http.StatusOK)
	return f.Write(ctx.Response().Writer)
}
