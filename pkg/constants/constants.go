package constants

//============== CACHE KEYS ==============

// Префиксы для ключей в Redis.
const (
	// Карточка оборудования. Формат: equipment:item:<поколение>:<id> -> json
	CacheKeyEquipmentItem = "equipment:item:%d:%d"

	// Поколение кеша оборудования. Инкремент делает недоступными все ранее
	// закэшированные карточки и страницы, ключи которых содержат прежнее поколение.
	CacheKeyEquipmentGeneration = "equipment:list:gen"

	// Страница списка. Формат: equipment:list:<поколение>:<отпечаток фильтра>
	CacheKeyEquipmentList = "equipment:list:%d:%016x"

	// Опции каскада каталога. Формат: catalog:options:<уровень>:<parentID>
	CacheKeyCatalogOptions = "catalog:options:%s:%d"

	// Набор выбранных оператором единиц. Формат: selection:<userID>
	CacheKeySelection = "selection:%d"
)

//============== EVENTS ==============

const (
	EventEquipmentLocationChanged = "equipment.location.changed"
	EventEquipmentRecordChanged   = "equipment.record.changed"
)
