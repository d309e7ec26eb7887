package routes

import (
	"github.com/labstack/echo/v4"

	"inventory-system/internal/controllers"
)

func runSelectionRouter(secureGroup *echo.Group, selectionCtrl *controllers.SelectionController) {
	selection := secureGroup.Group("/selection")
	selection.GET("", selectionCtrl.GetSelection)
	selection.DELETE("", selectionCtrl.Clear)
	selection.POST("/toggle", selectionCtrl.Toggle)
	selection.POST("/reconcile", selectionCtrl.Reconcile)
	selection.POST("/submit", selectionCtrl.Submit)
}
