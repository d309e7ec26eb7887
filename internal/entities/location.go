package entities

import (
	"encoding/json"
	"fmt"
	"time"
)

type LocationKind string

const (
	LocationWarehouse LocationKind = "WAREHOUSE"
	LocationStore     LocationKind = "STORE"
	LocationPerson    LocationKind = "PERSON"
	LocationInTransit LocationKind = "IN_TRANSIT"
)

func (k LocationKind) Valid() bool {
	switch k {
	case LocationWarehouse, LocationStore, LocationPerson, LocationInTransit:
		return true
	}
	return false
}

// Location - текущее местонахождение единицы. Каждый вариант несёт только свои поля.
type Location interface {
	Kind() LocationKind
}

type AtWarehouse struct{}

func (AtWarehouse) Kind() LocationKind { return LocationWarehouse }

type AtStore struct {
	StoreID  uint64  `json:"store_id"`
	Position *string `json:"position,omitempty"`
	Area     *string `json:"area,omitempty"`
	Hostname *string `json:"hostname,omitempty"`
}

func (AtStore) Kind() LocationKind { return LocationStore }

type WithPerson struct {
	PersonID   uint64    `json:"person_id"`
	AssignedAt time.Time `json:"assigned_at"`
	ActCode    string    `json:"act_code"`
}

func (WithPerson) Kind() LocationKind { return LocationPerson }

type InTransit struct {
	MovementID uint64 `json:"movement_id"`
}

func (InTransit) Kind() LocationKind { return LocationInTransit }

// SamePlace - совпадают ли два местонахождения с точностью до адресата
// (склад, конкретная точка продаж, конкретный сотрудник).
func SamePlace(a, b Location) bool {
	if a == nil || b == nil || a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case AtWarehouse:
		return true
	case AtStore:
		return av.StoreID == b.(AtStore).StoreID
	case WithPerson:
		return av.PersonID == b.(WithPerson).PersonID
	case InTransit:
		return av.MovementID == b.(InTransit).MovementID
	}
	return false
}

// LocationRecord - плоское представление варианта для JSON API и колонок jsonb.
type LocationRecord struct {
	Kind   LocationKind    `json:"kind"`
	Detail json.RawMessage `json:"detail,omitempty"`
}

func EncodeLocation(loc Location) (LocationRecord, error) {
	if loc == nil {
		return LocationRecord{}, fmt.Errorf("местонахождение не задано")
	}
	if _, ok := loc.(AtWarehouse); ok {
		return LocationRecord{Kind: LocationWarehouse}, nil
	}
	detail, err := json.Marshal(loc)
	if err != nil {
		return LocationRecord{}, fmt.Errorf("сериализация местонахождения %s: %w", loc.Kind(), err)
	}
	return LocationRecord{Kind: loc.Kind(), Detail: detail}, nil
}

func (r LocationRecord) Decode() (Location, error) {
	switch r.Kind {
	case LocationWarehouse:
		return AtWarehouse{}, nil
	case LocationStore:
		var v AtStore
		if err := r.unmarshal(&v); err != nil {
			return nil, err
		}
		return v, nil
	case LocationPerson:
		var v WithPerson
		if err := r.unmarshal(&v); err != nil {
			return nil, err
		}
		return v, nil
	case LocationInTransit:
		var v InTransit
		if err := r.unmarshal(&v); err != nil {
			return nil, err
		}
		return v, nil
	}
	return nil, fmt.Errorf("неизвестный вид местонахождения %q", r.Kind)
}

func (r LocationRecord) unmarshal(dst interface{}) error {
	if len(r.Detail) == 0 {
		return fmt.Errorf("для местонахождения %s не переданы детали", r.Kind)
	}
	if err := json.Unmarshal(r.Detail, dst); err != nil {
		return fmt.Errorf("детали местонахождения %s: %w", r.Kind, err)
	}
	return nil
}
