package enums

import "fmt"

// ItemType classifies part-master items.
type ItemType string

const (
	ItemTypeRawMaterial   ItemType = "raw_material"
	ItemTypeWorkInProcess ItemType = "work_in_process"
	ItemTypeFinishedGoods ItemType = "finished_goods"
)

var validItemTypes = []ItemType{
	ItemTypeRawMaterial,
	ItemTypeWorkInProcess,
	ItemTypeFinishedGoods,
}

// String implements fmt.Stringer.
func (t ItemType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known ItemType.
func (t ItemType) IsValid() bool {
	for _, candidate := range validItemTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseItemType converts raw input into an ItemType.
func ParseItemType(value string) (ItemType, error) {
	for _, candidate := range validItemTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid item type %q", value)
}
