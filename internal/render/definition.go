package render

import "encoding/json"

// BackgroundFunc produces the content drawn behind a page.
type BackgroundFunc func(page int, width, height float64) []Node

// PageSize is either a named sheet or explicit dimensions in points.
type PageSize struct {
	Name   string
	Width  float64
	Height float64
}

// MarshalJSON writes a named size as a string and a custom size as {width, height}.
func (p PageSize) MarshalJSON() ([]byte, error) {
	if p.Name != "" {
		return json.Marshal(p.Name)
	}
	return json.Marshal(map[string]float64{"width": p.Width, "height": p.Height})
}

// Watermark is the engine's native page watermark.
type Watermark struct {
	Text     string  `json:"text"`
	Color    string  `json:"color,omitempty"`
	Opacity  float64 `json:"opacity,omitempty"`
	FontSize float64 `json:"fontSize,omitempty"`
	Bold     bool    `json:"bold,omitempty"`
	Angle    float64 `json:"angle,omitempty"`
}

// Definition is a complete document definition.
type Definition struct {
	PageSize        PageSize       `json:"pageSize"`
	PageOrientation string         `json:"pageOrientation,omitempty"`
	PageMargins     [4]float64     `json:"pageMargins"` // left, top, right, bottom
	Content         []Node         `json:"content"`
	Watermark       *Watermark     `json:"watermark,omitempty"`
	Background      BackgroundFunc `json:"-"`

	// PageWidth and PageHeight are the oriented sheet size handed to Background.
	PageWidth  float64 `json:"-"`
	PageHeight float64 `json:"-"`
}

// BackgroundAt evaluates the background callback for a page.
func (d *Definition) BackgroundAt(page int) []Node {
	if d.Background == nil {
		return nil
	}
	return d.Background(page, d.PageWidth, d.PageHeight)
}

// MarshalJSON writes the definition with the background evaluated for the
// first page, since the engine also accepts static background content.
func (d Definition) MarshalJSON() ([]byte, error) {
	type plain Definition
	out := struct {
		plain
		Background []Node `json:"background,omitempty"`
	}{plain: plain(d), Background: d.BackgroundAt(1)}
	if out.Content == nil {
		out.Content = []Node{}
	}
	return json.Marshal(out)
}
