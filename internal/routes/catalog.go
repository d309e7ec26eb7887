package routes

import (
	"github.com/labstack/echo/v4"

	"inventory-system/internal/controllers"
)

func runCatalogRouter(secureGroup *echo.Group, catalogCtrl *controllers.CatalogController) {
	secureGroup.GET("/catalog/options", catalogCtrl.GetOptions)
	secureGroup.GET("/catalog/cascade", catalogCtrl.GetCascade)
}
