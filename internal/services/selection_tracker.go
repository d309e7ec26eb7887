package services

import (
	"sort"

	"inventory-system/internal/dto"
)

// SelectionTracker - набор выбранных оператором единиц. Источник истины - сам набор
// ID, а не отметки строк текущей страницы: выбор переживает пагинацию и смену фильтров.
type SelectionTracker struct {
	ids map[uint64]struct{}
}

func NewSelectionTracker(ids ...uint64) *SelectionTracker {
	t := &SelectionTracker{ids: make(map[uint64]struct{}, len(ids))}
	for _, id := range ids {
		t.ids[id] = struct{}{}
	}
	return t
}

// Toggle добавляет или убирает ID и возвращает, выбран ли он после вызова.
func (t *SelectionTracker) Toggle(id uint64) bool {
	if _, ok := t.ids[id]; ok {
		delete(t.ids, id)
		return false
	}
	t.ids[id] = struct{}{}
	return true
}

func (t *SelectionTracker) Clear() {
	t.ids = make(map[uint64]struct{})
}

func (t *SelectionTracker) Has(id uint64) bool {
	_, ok := t.ids[id]
	return ok
}

func (t *SelectionTracker) Len() int {
	return len(t.ids)
}

// SelectedIDs - копия набора, отсортированная по возрастанию.
func (t *SelectionTracker) SelectedIDs() []uint64 {
	out := make([]uint64, 0, len(t.ids))
	for id := range t.ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ReconcileWithPage строит отметки для строк отрисованной страницы. Набор не меняется.
// Вызывается после каждой перезагрузки данных.
func (t *SelectionTracker) ReconcileWithPage(pageIDs []uint64) dto.PageSelectionDTO {
	res := dto.PageSelectionDTO{
		Checked:       make(map[uint64]bool, len(pageIDs)),
		SelectedCount: len(t.ids),
	}
	for _, id := range pageIDs {
		if _, seen := res.Checked[id]; seen {
			continue
		}
		checked := t.Has(id)
		res.Checked[id] = checked
		if checked {
			res.OnPageCount++
		}
	}
	res.OffPageCount = res.SelectedCount - res.OnPageCount
	res.ExceedsPage = res.SelectedCount > len(res.Checked)
	return res
}
