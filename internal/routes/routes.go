package routes

import (
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"inventory-system/internal/authz"
	"inventory-system/internal/controllers"
	"inventory-system/internal/listeners"
	"inventory-system/internal/repositories"
	"inventory-system/internal/services"
	"inventory-system/pkg/config"
	"inventory-system/pkg/eventbus"
	"inventory-system/pkg/metrics"
	"inventory-system/pkg/middleware"
	"inventory-system/pkg/service"
	"inventory-system/pkg/websocket"
)

// Deps - инфраструктура, созданная в main.
type Deps struct {
	DB      *pgxpool.Pool
	Redis   *redis.Client
	JWT     service.JWTService
	Bus     *eventbus.Bus
	Hub     *websocket.Hub
	Metrics *metrics.Metrics
	Config  *config.Config
	Logger  *zap.Logger
}

func InitRouter(e *echo.Echo, deps Deps) {
	logger := deps.Logger
	logger.Info("InitRouter: Начало создания маршрутов")

	// --- 0. ОБЩИЕ КОМПОНЕНТЫ ---
	api := e.Group("/api")
	authMW := middleware.NewAuthMiddleware(deps.JWT, logger)
	txManager := repositories.NewTxManager(deps.DB)
	gatekeeper := authz.NewGatekeeper(map[string][]string{
		authz.EquipmentRetire: deps.Config.Authz.RetireRoles,
		authz.EquipmentDelete: deps.Config.Authz.DeleteRoles,
	})

	// --- 1. РЕПОЗИТОРИИ ---
	equipmentRepo := repositories.NewEquipmentRepository(deps.DB, logger)
	movementRepo := repositories.NewMovementRepository(deps.DB, logger)
	catalogRepo := repositories.NewCatalogRepository(deps.DB, logger)
	statsRepo := repositories.NewStatsRepository(deps.DB, logger)
	cacheRepo := repositories.NewRedisCacheRepository(deps.Redis)
	selectionRepo := repositories.NewRedisSelectionRepository(deps.Redis, deps.Config.Selection.TTL)

	// --- 2. СЕРВИСЫ ---
	equipmentCache := services.NewEquipmentCache(cacheRepo, deps.Config.Cache.EquipmentTTL, deps.Metrics, logger)
	catalogService := services.NewCatalogService(catalogRepo, cacheRepo, deps.Config.Cache.CatalogTTL, deps.Metrics, logger)
	ledger := services.NewMovementLedger(movementRepo, time.Now, logger)
	orchestrator := services.NewMovementOrchestrator(
		txManager, equipmentRepo, ledger, deps.Bus,
		gatekeeper.Checker(authz.EquipmentRetire), deps.Metrics, time.Now, logger,
	)
	equipmentService := services.NewEquipmentService(
		txManager, equipmentRepo, catalogService, equipmentCache, deps.Bus,
		gatekeeper.Checker(authz.EquipmentDelete), time.Now, logger,
	)
	selectionService := services.NewSelectionService(selectionRepo, orchestrator, deps.Hub, time.Now, logger)
	statsService := services.NewStatsService(statsRepo, time.Now, logger)
	exportService := services.NewExportService(equipmentService, logger)

	// --- 3. СЛУШАТЕЛИ СОБЫТИЙ ---
	listeners.NewCacheInvalidationListener(equipmentCache, logger).Register(deps.Bus)
	listeners.NewWebSocketListener(deps.Hub, logger).Register(deps.Bus)

	// --- 4. КОНТРОЛЛЕРЫ ---
	equipmentCtrl := controllers.NewEquipmentController(equipmentService, orchestrator, logger)
	movementCtrl := controllers.NewMovementController(orchestrator, deps.Config.Movements.StuckThresholdDays, logger)
	catalogCtrl := controllers.NewCatalogController(catalogService, logger)
	selectionCtrl := controllers.NewSelectionController(selectionService, logger)
	statsCtrl := controllers.NewStatsController(statsService, exportService, logger)
	wsCtrl := controllers.NewWebSocketController(deps.Hub, logger)

	// --- 5. РОУТЕРЫ ---
	secureGroup := api.Group("", authMW.Auth)

	runEquipmentRouter(secureGroup, equipmentCtrl, movementCtrl, statsCtrl)
	runCatalogRouter(secureGroup, catalogCtrl)
	runSelectionRouter(secureGroup, selectionCtrl)
	secureGroup.GET("/ws", wsCtrl.ServeWs)

	logger.Info("INIT_ROUTER: Создание маршрутов завершено")
}
