package db

import (
	"fmt"
	"sort"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"inventory-system/pkg/types"
)

// NullValue - значение фильтра, означающее IS NULL (например filter[parent_id]=null).
const NullValue = "null"

// ApplyFilters накладывает только условия WHERE из белого списка.
// Используется одинаково для выборки и для COUNT.
func ApplyFilters(builder sq.SelectBuilder, filter types.Filter, allowedMap map[string]string) sq.SelectBuilder {
	keys := make([]string, 0, len(filter.Filter))
	for k := range filter.Filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, jsonField := range keys {
		dbCol, ok := allowedMap[jsonField]
		if !ok {
			continue
		}
		val := filter.Filter[jsonField]

		if s, ok := val.(string); ok {
			switch {
			case strings.EqualFold(s, NullValue):
				builder = builder.Where(sq.Eq{dbCol: nil})
			case strings.Contains(s, ","):
				builder = builder.Where(sq.Eq{dbCol: strings.Split(s, ",")})
			default:
				builder = builder.Where(sq.Eq{dbCol: s})
			}
			continue
		}
		builder = builder.Where(sq.Eq{dbCol: val})
	}
	return builder
}

// ApplySearch добавляет ILIKE по перечисленным колонкам через OR.
func ApplySearch(builder sq.SelectBuilder, search string, columns []string) sq.SelectBuilder {
	search = strings.TrimSpace(search)
	if search == "" || len(columns) == 0 {
		return builder
	}
	pattern := "%" + search + "%"
	conditions := make(sq.Or, 0, len(columns))
	for _, col := range columns {
		conditions = append(conditions, sq.ILike{col: pattern})
	}
	return builder.Where(conditions)
}

// ApplySortAndPage добавляет ORDER BY из белого списка и LIMIT/OFFSET.
// Порядок полей сортировки детерминирован (по имени поля), последним идёт defaultOrder.
func ApplySortAndPage(builder sq.SelectBuilder, filter types.Filter, allowedMap map[string]string, defaultOrder string) sq.SelectBuilder {
	fields := make([]string, 0, len(filter.Sort))
	for f := range filter.Sort {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	for _, jsonField := range fields {
		dbCol, ok := allowedMap[jsonField]
		if !ok {
			continue
		}
		sqlDir := "ASC"
		if strings.ToLower(filter.Sort[jsonField]) == "desc" {
			sqlDir = "DESC"
		}
		builder = builder.OrderBy(fmt.Sprintf("%s %s", dbCol, sqlDir))
	}
	if defaultOrder != "" {
		builder = builder.OrderBy(defaultOrder)
	}

	if filter.WithPagination {
		if filter.Limit > 0 {
			builder = builder.Limit(uint64(filter.Limit))
		}
		if filter.Offset > 0 {
			builder = builder.Offset(uint64(filter.Offset))
		}
	}

	return builder
}

// ApplyListParams - фильтры, сортировка и пагинация за один вызов.
func ApplyListParams(builder sq.SelectBuilder, filter types.Filter, allowedMap map[string]string) sq.SelectBuilder {
	builder = ApplyFilters(builder, filter, allowedMap)
	return ApplySortAndPage(builder, filter, allowedMap, "")
}
