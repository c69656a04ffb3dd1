package models

// PrizeTable holds the fixed prize per winning ticket for each shape
type PrizeTable struct {
	Group3  int64 `mapstructure:"group3" json:"group3" validate:"gt=0"`
	Group6  int64 `mapstructure:"group6" json:"group6" validate:"gt=0"`
	Leopard int64 `mapstructure:"leopard" json:"leopard" validate:"gt=0"`
}

// DefaultPrizeTable returns the standard prize tiers
func DefaultPrizeTable() PrizeTable {
	return PrizeTable{Group3: 346, Group6: 173, Leopard: 1040}
}

// PrizeFor returns the per-ticket prize for a shape
func (p PrizeTable) PrizeFor(shape Shape) int64 {
	switch shape {
	case ShapeGroup3:
		return p.Group3
	case ShapeGroup6:
		return p.Group6
	case ShapeLeopard:
		return p.Leopard
	default:
		return 0
	}
}

// CheckWin settles one ticket. A ticket wins only when the digit multisets match and
// the wagered shape equals the drawn shape; the returned prize is per ticket.
func CheckWin(combo Digits, comboShape Shape, actual Digits, prizes PrizeTable) (bool, int64) {
	if !combo.Valid() || !actual.Valid() {
		return false, 0
	}
	if combo.Sorted() != actual.Sorted() {
		return false, 0
	}
	if comboShape != actual.Shape() {
		return false, 0
	}
	return true, prizes.PrizeFor(comboShape)
}
