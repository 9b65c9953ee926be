package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// DimensionUnit tells how a Dimension value is interpreted.
type DimensionUnit int

const (
	// UnitAuto sizes to content. It is the zero value.
	UnitAuto DimensionUnit = iota
	// UnitAbsolute is a length in points.
	UnitAbsolute
	// UnitPercent is a share of the available width.
	UnitPercent
	// UnitStar fills the remaining space.
	UnitStar
)

// Dimension is a width or height that is stored as either a number or a string
// ("auto", "*", "50%", "120").
type Dimension struct {
	Value float64
	Unit  DimensionUnit
}

// Points returns an absolute dimension.
func Points(v float64) Dimension { return Dimension{Value: v, Unit: UnitAbsolute} }

// Percent returns a percentage dimension.
func Percent(v float64) Dimension { return Dimension{Value: v, Unit: UnitPercent} }

// Star returns a fill-remaining dimension.
func Star() Dimension { return Dimension{Unit: UnitStar} }

// Auto returns a size-to-content dimension.
func Auto() Dimension { return Dimension{} }

// IsAuto reports whether the dimension sizes to content.
func (d Dimension) IsAuto() bool { return d.Unit == UnitAuto }

// Resolve converts the dimension to points against total. Auto and star have no
// fixed size and report false.
func (d Dimension) Resolve(total float64) (float64, bool) {
	switch d.Unit {
	case UnitAbsolute:
		return d.Value, true
	case UnitPercent:
		return total * d.Value / 100, true
	}
	return 0, false
}

// String renders the dimension the same way it is stored.
func (d Dimension) String() string {
	switch d.Unit {
	case UnitAbsolute:
		return strconv.FormatFloat(d.Value, 'f', -1, 64)
	case UnitPercent:
		return strconv.FormatFloat(d.Value, 'f', -1, 64) + "%"
	case UnitStar:
		return "*"
	}
	return "auto"
}

// MarshalJSON writes absolute values as numbers and everything else as strings.
func (d Dimension) MarshalJSON() ([]byte, error) {
	if d.Unit == UnitAbsolute {
		return json.Marshal(d.Value)
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts numbers, numeric strings with an optional px/pt suffix,
// percentages, "*" and "auto".
func (d *Dimension) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Dimension{}
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*d = Points(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("dimension: %w", err)
	}
	parsed, err := ParseDimension(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDimension parses the string forms of a dimension.
func ParseDimension(value string) (Dimension, error) {
	s := strings.ToLower(strings.TrimSpace(value))
	switch s {
	case "", "auto":
		return Auto(), nil
	case "*":
		return Star(), nil
	}
	if strings.HasSuffix(s, "%") {
		v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s, "%")), 64)
		if err != nil {
			return Dimension{}, fmt.Errorf("dimension %q: %w", value, err)
		}
		return Percent(v), nil
	}
	s = strings.TrimSuffix(strings.TrimSuffix(s, "px"), "pt")
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return Dimension{}, fmt.Errorf("dimension %q: %w", value, err)
	}
	return Points(v), nil
}
