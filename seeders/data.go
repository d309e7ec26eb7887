package seeders

// catalogNode - узел дерева справочника: категория > подкатегория > бренд > модель.
type catalogNode struct {
	Name     string
	Children []catalogNode
}

var catalogData = []catalogNode{
	{Name: "Компьютерная техника", Children: []catalogNode{
		{Name: "Ноутбуки", Children: []catalogNode{
			{Name: "Lenovo", Children: []catalogNode{{Name: "ThinkPad E14"}, {Name: "ThinkPad T14"}}},
			{Name: "HP", Children: []catalogNode{{Name: "ProBook 450 G9"}}},
		}},
		{Name: "Моноблоки", Children: []catalogNode{
			{Name: "Dell", Children: []catalogNode{{Name: "OptiPlex 7410 AIO"}}},
		}},
	}},
	{Name: "Кассовое оборудование", Children: []catalogNode{
		{Name: "POS-терминалы", Children: []catalogNode{
			{Name: "Ingenico", Children: []catalogNode{{Name: "Move/5000"}, {Name: "Desk/3500"}}},
			{Name: "Verifone", Children: []catalogNode{{Name: "V240m"}}},
		}},
		{Name: "Фискальные принтеры", Children: []catalogNode{
			{Name: "Epson", Children: []catalogNode{{Name: "TM-T20III"}}},
		}},
	}},
	{Name: "Периферия", Children: []catalogNode{
		{Name: "Сканеры штрихкодов", Children: []catalogNode{
			{Name: "Zebra", Children: []catalogNode{{Name: "DS2208"}}},
			{Name: "Honeywell", Children: []catalogNode{{Name: "Voyager 1450g"}}},
		}},
	}},
}

// equipmentSeed ссылается на модель по пути имен в справочнике.
type equipmentSeed struct {
	Serial        string
	InventoryCode string
	Path          [4]string
	StoreID       uint64 // 0 - склад
	Hostname      string
}

var equipmentData = []equipmentSeed{
	{Serial: "PF3ABCD1", InventoryCode: "INV-0001", Path: [4]string{"Компьютерная техника", "Ноутбуки", "Lenovo", "ThinkPad E14"}},
	{Serial: "PF3ABCD2", InventoryCode: "INV-0002", Path: [4]string{"Компьютерная техника", "Ноутбуки", "Lenovo", "ThinkPad T14"}},
	{Serial: "5CD2471XYZ", InventoryCode: "INV-0003", Path: [4]string{"Компьютерная техника", "Ноутбуки", "HP", "ProBook 450 G9"}, StoreID: 101, Hostname: "STORE101-MGR"},
	{Serial: "DL7410-001", Path: [4]string{"Компьютерная техника", "Моноблоки", "Dell", "OptiPlex 7410 AIO"}, StoreID: 101, Hostname: "STORE101-POS1"},
	{Serial: "ING-M5-0001", InventoryCode: "INV-0101", Path: [4]string{"Кассовое оборудование", "POS-терминалы", "Ingenico", "Move/5000"}, StoreID: 101},
	{Serial: "ING-D35-0001", Path: [4]string{"Кассовое оборудование", "POS-терминалы", "Ingenico", "Desk/3500"}, StoreID: 102},
	{Serial: "VF-V240-0001", Path: [4]string{"Кассовое оборудование", "POS-терминалы", "Verifone", "V240m"}},
	{InventoryCode: "INV-0201", Path: [4]string{"Кассовое оборудование", "Фискальные принтеры", "Epson", "TM-T20III"}, StoreID: 102},
	{Serial: "ZB-DS2208-01", Path: [4]string{"Периферия", "Сканеры штрихкодов", "Zebra", "DS2208"}, StoreID: 101},
	{Serial: "HW-1450-01", Path: [4]string{"Периферия", "Сканеры штрихкодов", "Honeywell", "Voyager 1450g"}},
}
