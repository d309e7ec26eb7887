package seeders

import (
	"context"
	"fmt"

	"inventory-system/internal/entities"
	"inventory-system/internal/repositories"
	"inventory-system/pkg/utils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func seedEquipment(ctx context.Context, db *pgxpool.Pool, data []equipmentSeed, logger *zap.Logger) (int, error) {
	repo := repositories.NewEquipmentRepository(db, logger)

	tx, err := db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	inserted := 0
	for _, seed := range data {
		exists, err := equipmentExists(ctx, tx, seed)
		if err != nil {
			return 0, err
		}
		if exists {
			continue
		}

		c, err := resolveClassification(ctx, tx, seed.Path)
		if err != nil {
			logger.Warn("Модель не найдена в справочнике, единица пропущена",
				zap.Strings("path", seed.Path[:]), zap.Error(err))
			continue
		}

		e := entities.Equipment{
			CategoryID:     c.CategoryID,
			SubcategoryID:  c.SubcategoryID,
			BrandID:        c.BrandID,
			ModelID:        c.ModelID,
			LifecycleState: entities.StateOperational,
			Location:       entities.AtWarehouse{},
		}
		if seed.Serial != "" {
			e.SerialNumber = utils.ToPtr(seed.Serial)
		}
		if seed.InventoryCode != "" {
			e.InventoryCode = utils.ToPtr(seed.InventoryCode)
		}
		if seed.StoreID != 0 {
			store := entities.AtStore{StoreID: seed.StoreID}
			if seed.Hostname != "" {
				store.Hostname = utils.ToPtr(seed.Hostname)
			}
			e.Location = store
		}

		if _, err := repo.Create(ctx, tx, e); err != nil {
			return 0, fmt.Errorf("единица %s/%s: %w", seed.Serial, seed.InventoryCode, err)
		}
		inserted++
	}
	return inserted, tx.Commit(ctx)
}

func equipmentExists(ctx context.Context, tx pgx.Tx, seed equipmentSeed) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM equipment WHERE serial_number = NULLIF($1, '') OR inventory_code = NULLIF($2, ''))`,
		seed.Serial, seed.InventoryCode,
	).Scan(&exists)
	return exists, err
}

// resolveClassification проходит путь имен сверху вниз, каждый уровень ищется среди детей предыдущего.
func resolveClassification(ctx context.Context, tx pgx.Tx, path [4]string) (entities.Classification, error) {
	var ids [4]uint64
	var parentID *uint64
	for depth, name := range path {
		err := tx.QueryRow(ctx,
			`SELECT id FROM catalog_items WHERE level = $1 AND parent_id IS NOT DISTINCT FROM $2 AND name = $3 AND active`,
			string(entities.CatalogLevels[depth]), parentID, name,
		).Scan(&ids[depth])
		if err != nil {
			return entities.Classification{}, fmt.Errorf("%s %q: %w", entities.CatalogLevels[depth], name, err)
		}
		parentID = &ids[depth]
	}
	return entities.Classification{
		CategoryID:    ids[0],
		SubcategoryID: ids[1],
		BrandID:       ids[2],
		ModelID:       ids[3],
	}, nil
}
