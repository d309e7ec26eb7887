package seeders

import (
	"context"
	"errors"

	"inventory-system/internal/entities"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// seedCatalogTree идемпотентен: существующие узлы (уровень, родитель, имя) не дублируются.
func seedCatalogTree(ctx context.Context, db *pgxpool.Pool, roots []catalogNode) (int, error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	inserted := 0
	var walk func(nodes []catalogNode, depth int, parentID *uint64) error
	walk = func(nodes []catalogNode, depth int, parentID *uint64) error {
		for _, node := range nodes {
			id, created, err := ensureCatalogItem(ctx, tx, entities.CatalogLevels[depth], parentID, node.Name)
			if err != nil {
				return err
			}
			if created {
				inserted++
			}
			if depth+1 < len(entities.CatalogLevels) {
				if err := walk(node.Children, depth+1, &id); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if err := walk(roots, 0, nil); err != nil {
		return 0, err
	}
	return inserted, tx.Commit(ctx)
}

func ensureCatalogItem(ctx context.Context, tx pgx.Tx, level entities.CatalogLevel, parentID *uint64, name string) (uint64, bool, error) {
	var id uint64
	err := tx.QueryRow(ctx,
		`SELECT id FROM catalog_items WHERE level = $1 AND parent_id IS NOT DISTINCT FROM $2 AND name = $3`,
		string(level), parentID, name,
	).Scan(&id)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, false, err
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO catalog_items (level, parent_id, name) VALUES ($1, $2, $3) RETURNING id`,
		string(level), parentID, name,
	).Scan(&id)
	return id, err == nil, err
}
