package entities

type CatalogLevel string

const (
	LevelCategory    CatalogLevel = "category"
	LevelSubcategory CatalogLevel = "subcategory"
	LevelBrand       CatalogLevel = "brand"
	LevelModel       CatalogLevel = "model"
)

// CatalogItem - элемент справочника (категория, подкатегория, бренд, модель).
// ParentID у категории пустой.
type CatalogItem struct {
	ID       uint64       `json:"id"`
	Level    CatalogLevel `json:"level"`
	ParentID *uint64      `json:"parent_id,omitempty"`
	Name     string       `json:"name"`
	Active   bool         `json:"active"`
}

type Classification struct {
	CategoryID    uint64
	SubcategoryID uint64
	BrandID       uint64
	ModelID       uint64
}

// CatalogLevels - уровни каталога от верхнего к нижнему.
var CatalogLevels = []CatalogLevel{LevelCategory, LevelSubcategory, LevelBrand, LevelModel}

// Depth - позиция уровня в CatalogLevels, -1 для неизвестного уровня.
func (l CatalogLevel) Depth() int {
	for i, lvl := range CatalogLevels {
		if lvl == l {
			return i
		}
	}
	return -1
}

// IDs - идентификаторы классификации в порядке CatalogLevels.
func (c Classification) IDs() []uint64 {
	return []uint64{c.CategoryID, c.SubcategoryID, c.BrandID, c.ModelID}
}
