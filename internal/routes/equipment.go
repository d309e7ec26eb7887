package routes

import (
	"github.com/labstack/echo/v4"

	"inventory-system/internal/controllers"
)

func runEquipmentRouter(
	secureGroup *echo.Group,
	equipmentCtrl *controllers.EquipmentController,
	movementCtrl *controllers.MovementController,
	statsCtrl *controllers.StatsController,
) {
	equipment := secureGroup.Group("/equipment")

	equipment.GET("", equipmentCtrl.GetEquipment)
	equipment.POST("", equipmentCtrl.CreateEquipment)
	equipment.GET("/stats", statsCtrl.GetStats)
	equipment.GET("/export", statsCtrl.Export)

	equipment.POST("/movements", movementCtrl.BatchMove)
	equipment.GET("/movements/stuck", movementCtrl.Stuck)
	equipment.POST("/movements/:id/arrival", movementCtrl.ConfirmArrival)
	equipment.POST("/movements/:id/cancel", movementCtrl.CancelMovement)

	equipment.GET("/:id", equipmentCtrl.FindEquipment)
	equipment.PUT("/:id", equipmentCtrl.UpdateEquipment)
	equipment.DELETE("/:id", equipmentCtrl.DeleteEquipment)
	equipment.PATCH("/:id/quick", equipmentCtrl.QuickEdit)
	equipment.POST("/:id/lifecycle", equipmentCtrl.ChangeLifecycle)
	equipment.POST("/:id/reactivate", equipmentCtrl.ReactivateEquipment)
	equipment.POST("/:id/return", movementCtrl.ReturnToWarehouse)
	equipment.GET("/:id/movements", movementCtrl.History)
}
