package models

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Shape classifies a 3-digit value by how many of its digits repeat
type Shape string

const (
	ShapeLeopard Shape = "leopard"
	ShapeGroup3  Shape = "group3"
	ShapeGroup6  Shape = "group6"
)

// Digits is one 3-digit value, kept in draw order
type Digits [3]int

// ParseDigits parses a compact value such as "072"
func ParseDigits(s string) (Digits, error) {
	s = strings.TrimSpace(s)
	if len(s) != 3 {
		return Digits{}, fmt.Errorf("%w: %q must have 3 digits", ErrInvalidDraw, s)
	}
	var d Digits
	for i, r := range s {
		if r < '0' || r > '9' {
			return Digits{}, fmt.Errorf("%w: %q contains non-digit %q", ErrInvalidDraw, s, r)
		}
		d[i] = int(r - '0')
	}
	return d, nil
}

// DigitsFromSlice converts raw ingested numbers, rejecting anything that is not exactly 3 digits in 0-9
func DigitsFromSlice(nums []int) (Digits, error) {
	if len(nums) != 3 {
		return Digits{}, fmt.Errorf("%w: expected 3 digits, got %d", ErrInvalidDraw, len(nums))
	}
	d := Digits{nums[0], nums[1], nums[2]}
	if !d.Valid() {
		return Digits{}, fmt.Errorf("%w: digit out of range in %v", ErrInvalidDraw, nums)
	}
	return d, nil
}

// Valid reports whether every digit is in 0-9
func (d Digits) Valid() bool {
	for _, v := range d {
		if v < 0 || v > 9 {
			return false
		}
	}
	return true
}

// Sorted returns the digits in ascending order
func (d Digits) Sorted() Digits {
	s := d[:]
	out := make([]int, len(s))
	copy(out, s)
	sort.Ints(out)
	return Digits{out[0], out[1], out[2]}
}

// Shape derives the draw shape from the number of distinct digits
func (d Digits) Shape() Shape {
	switch {
	case d[0] == d[1] && d[1] == d[2]:
		return ShapeLeopard
	case d[0] == d[1] || d[1] == d[2] || d[0] == d[2]:
		return ShapeGroup3
	default:
		return ShapeGroup6
	}
}

// Sum returns the digit sum
func (d Digits) Sum() int {
	return d[0] + d[1] + d[2]
}

// String renders the digits compactly, e.g. "072"
func (d Digits) String() string {
	return fmt.Sprintf("%d%d%d", d[0], d[1], d[2])
}

// Draw is one historical period outcome
type Draw struct {
	PeriodID string    `db:"period_id" json:"period" validate:"required"`
	Date     time.Time `db:"draw_date" json:"date"`
	Digits   Digits    `db:"digits" json:"numbers"`
}

// Shape returns the shape of the drawn digits
func (d *Draw) Shape() Shape {
	return d.Digits.Shape()
}

// Validate checks the draw can be used for prediction and settlement
func (d *Draw) Validate() error {
	if strings.TrimSpace(d.PeriodID) == "" {
		return fmt.Errorf("%w: period id is required", ErrInvalidDraw)
	}
	if !d.Digits.Valid() {
		return fmt.Errorf("%w: period %s has digits %v", ErrInvalidDraw, d.PeriodID, d.Digits)
	}
	return nil
}

// WindowDigits extracts the digits of each draw in order
func WindowDigits(draws []Draw) []Digits {
	out := make([]Digits, len(draws))
	for i := range draws {
		out[i] = draws[i].Digits
	}
	return out
}
