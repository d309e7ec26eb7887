package dto

// CascadeSelectionDTO - текущие выбранные уровни фильтра каталога.
type CascadeSelectionDTO struct {
	CategoryID    *uint64 `json:"category_id,omitempty"`
	SubcategoryID *uint64 `json:"subcategory_id,omitempty"`
	BrandID       *uint64 `json:"brand_id,omitempty"`
	ModelID       *uint64 `json:"model_id,omitempty"`
}

type CatalogOptionDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// CascadeStateDTO - состояние каскадного фильтра: выбранные уровни и загруженные опции.
// Опции есть только у уровней, для которых выбран родитель.
type CascadeStateDTO struct {
	Selection CascadeSelectionDTO           `json:"selection"`
	Options   map[string][]CatalogOptionDTO `json:"options"`
}
