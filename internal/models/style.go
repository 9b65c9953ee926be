package models

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// ErrInvalidStyleValue is returned when a style value cannot be stored under its key.
var ErrInvalidStyleValue = errors.New("invalid_style_value")

// Box is a margin or padding 4-tuple in left, top, right, bottom order.
type Box [4]float64

// FontWeight holds a CSS-like weight and accepts numbers or strings when decoded.
type FontWeight string

// UnmarshalJSON accepts 700 as well as "700" or "bold".
func (w *FontWeight) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*w = FontWeight(strings.TrimSpace(s))
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*w = FontWeight(strconv.FormatFloat(n, 'f', -1, 64))
	return nil
}

// IsBold reports whether the weight renders bold. The rendering engine has no
// intermediate weights, so 600 and 700 both collapse to bold.
func (w FontWeight) IsBold() bool {
	switch strings.ToLower(string(w)) {
	case "bold", "600", "700":
		return true
	}
	return false
}

// Style is the visual record shared by all element kinds.
type Style struct {
	FontSize        float64    `json:"fontSize,omitempty"`
	FontWeight      FontWeight `json:"fontWeight,omitempty"`
	FontStyle       string     `json:"fontStyle,omitempty"`
	FontFamily      string     `json:"fontFamily,omitempty"`
	Color           string     `json:"color,omitempty"`
	BackgroundColor string     `json:"backgroundColor,omitempty"`
	TextAlign       string     `json:"textAlign,omitempty"`
	Margin          *Box       `json:"margin,omitempty"`
	Padding         *Box       `json:"padding,omitempty"`
	Opacity         *float64   `json:"opacity,omitempty"`
	TextDecoration  string     `json:"textDecoration,omitempty"`
	LineHeight      float64    `json:"lineHeight,omitempty"`
}

// Clone returns a copy that shares no pointers with s.
func (s Style) Clone() Style {
	if s.Margin != nil {
		m := *s.Margin
		s.Margin = &m
	}
	if s.Padding != nil {
		p := *s.Padding
		s.Padding = &p
	}
	if s.Opacity != nil {
		o := *s.Opacity
		s.Opacity = &o
	}
	return s
}

// With returns a copy of s where only key changes. A nil value clears the key.
// Keys use the JSON names (fontSize, color, margin, ...).
func (s Style) With(key string, value any) (Style, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return s, ErrInvalidStyleValue
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return s, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return s, err
	}
	if !isStyleKey(key) {
		return s, ErrInvalidStyleValue
	}
	if value == nil {
		delete(fields, key)
	} else {
		encoded, err := json.Marshal(value)
		if err != nil {
			return s, ErrInvalidStyleValue
		}
		fields[key] = encoded
	}
	merged, err := json.Marshal(fields)
	if err != nil {
		return s, err
	}
	var next Style
	if err := json.Unmarshal(merged, &next); err != nil {
		return s, ErrInvalidStyleValue
	}
	return next, nil
}

var styleKeys = map[string]struct{}{
	"fontSize": {}, "fontWeight": {}, "fontStyle": {}, "fontFamily": {}, "color": {},
	"backgroundColor": {}, "textAlign": {}, "margin": {}, "padding": {}, "opacity": {},
	"textDecoration": {}, "lineHeight": {},
}

func isStyleKey(key string) bool {
	_, ok := styleKeys[key]
	return ok
}
