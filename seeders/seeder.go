package seeders

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// SeedCatalog наполняет четырехуровневый справочник классификации.
func SeedCatalog(ctx context.Context, db *pgxpool.Pool, logger *zap.Logger) error {
	logger.Info("▶️  Наполнение справочника классификации...")
	inserted, err := seedCatalogTree(ctx, db, catalogData)
	if err != nil {
		return fmt.Errorf("справочник классификации: %w", err)
	}
	logger.Info("✅ Справочник классификации готов", zap.Int("inserted", inserted))
	return nil
}

// SeedDemoEquipment создает демонстрационные единицы на складе и в точках продаж.
// Требует заполненного справочника.
func SeedDemoEquipment(ctx context.Context, db *pgxpool.Pool, logger *zap.Logger) error {
	logger.Info("▶️  Наполнение демонстрационного оборудования...")
	inserted, err := seedEquipment(ctx, db, equipmentData, logger)
	if err != nil {
		return fmt.Errorf("демонстрационное оборудование: %w", err)
	}
	logger.Info("✅ Демонстрационное оборудование готово", zap.Int("inserted", inserted))
	return nil
}
