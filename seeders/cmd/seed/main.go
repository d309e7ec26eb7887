package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"inventory-system/migrations"
	"inventory-system/pkg/config"
	"inventory-system/pkg/database/postgresql"
	applogger "inventory-system/pkg/logger"
	"inventory-system/seeders"

	"go.uber.org/zap"
)

func main() {
	runCatalog := flag.Bool("catalog", false, "Наполнить справочник классификации")
	runEquipment := flag.Bool("equipment", false, "Создать демонстрационное оборудование (нужен справочник)")
	runAll := flag.Bool("all", false, "Запустить все сидеры (эквивалентно -catalog -equipment)")
	flag.Parse()

	if !*runCatalog && !*runEquipment && !*runAll {
		fmt.Println("❌ Не выбран ни один сидер для запуска.")
		fmt.Println("Доступные флаги:")
		flag.PrintDefaults()
		fmt.Println("Пример: go run ./seeders/cmd/seed -all")
		return
	}

	cfg := config.New()
	logger := applogger.NewLogger(cfg.Logger)
	defer func() { _ = logger.Sync() }()

	if err := run(context.Background(), cfg, logger, *runAll || *runCatalog, *runAll || *runEquipment); err != nil {
		logger.Error("❌ Ошибка сидирования", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("✅ Все указанные операции сидирования успешно завершены.")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger, catalog, equipment bool) error {
	if err := postgresql.Migrate(cfg.Postgres.DSN, migrations.FS, logger); err != nil {
		return err
	}
	db, err := postgresql.ConnectDB(ctx, cfg.Postgres, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if catalog {
		if err := seeders.SeedCatalog(ctx, db, logger); err != nil {
			return err
		}
	}
	if equipment {
		if err := seeders.SeedDemoEquipment(ctx, db, logger); err != nil {
			return err
		}
	}
	return nil
}
