// Package render holds the document-definition tree consumed by the PDF
// rendering engine. Field names follow the engine's JSON vocabulary; every
// optional field is omitted when unset so an empty Node encodes as {}.
package render

import "encoding/json"

// Node is one content block of the definition tree.
type Node struct {
	Text             any          `json:"text,omitempty"`
	Stack            []Node       `json:"stack,omitempty"`
	Columns          []Node       `json:"columns,omitempty"`
	ColumnGap        float64      `json:"columnGap,omitempty"`
	Table            *Table       `json:"table,omitempty"`
	Layout           *TableLayout `json:"layout,omitempty"`
	Canvas           []CanvasItem `json:"canvas,omitempty"`
	Image            string       `json:"image,omitempty"`
	QR               string       `json:"qr,omitempty"`
	Fit              any          `json:"fit,omitempty"`
	UL               []Node       `json:"ul,omitempty"`
	OL               []Node       `json:"ol,omitempty"`
	Width            any          `json:"width,omitempty"`
	Height           any          `json:"height,omitempty"`
	FontSize         float64      `json:"fontSize,omitempty"`
	Font             string       `json:"font,omitempty"`
	Bold             bool         `json:"bold,omitempty"`
	Italics          bool         `json:"italics,omitempty"`
	Color            string       `json:"color,omitempty"`
	Background       string       `json:"background,omitempty"`
	Alignment        string       `json:"alignment,omitempty"`
	Margin           []float64    `json:"margin,omitempty"`
	Decoration       string       `json:"decoration,omitempty"`
	LineHeight       float64      `json:"lineHeight,omitempty"`
	Opacity          *float64     `json:"opacity,omitempty"`
	RowSpan          int          `json:"rowSpan,omitempty"`
	ColSpan          int          `json:"colSpan,omitempty"`
	FillColor        string       `json:"fillColor,omitempty"`
	AbsolutePosition *Position    `json:"absolutePosition,omitempty"`
}

// Text returns a text node.
func Text(s string) Node {
	return Node{Text: s}
}

// MarshalJSON writes a table layout in its resolved form, sized by the table body.
func (n Node) MarshalJSON() ([]byte, error) {
	type plain Node
	if n.Layout == nil {
		return json.Marshal(plain(n))
	}
	rows, cols := 0, 0
	if n.Table != nil {
		rows = len(n.Table.Body)
		cols = len(n.Table.Widths)
		for _, row := range n.Table.Body {
			cols = max(cols, len(row))
		}
	}
	return json.Marshal(struct {
		plain
		Layout ResolvedLayout `json:"layout"`
	}{plain: plain(n), Layout: n.Layout.Resolve(rows, cols)})
}

// Position is an absolute page coordinate in points.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Table is the table payload of a node.
type Table struct {
	HeaderRows int      `json:"headerRows,omitempty"`
	Widths     []any    `json:"widths,omitempty"`
	Body       [][]Node `json:"body"`
}

// CanvasItem is one vector primitive of a canvas node.
type CanvasItem struct {
	Type      string  // line or rect
	X1, Y1    float64 // line start
	X2, Y2    float64 // line end
	X, Y      float64 // rect origin
	W, H      float64 // rect size
	LineWidth float64
	LineColor string
	Color     string // rect fill
	Dash      float64
	Opacity   *float64
}

// Line returns a line primitive.
func Line(x1, y1, x2, y2, width float64, color string) CanvasItem {
	return CanvasItem{Type: "line", X1: x1, Y1: y1, X2: x2, Y2: y2, LineWidth: width, LineColor: color}
}

// Rect returns a filled rectangle primitive.
func Rect(x, y, w, h float64, color string) CanvasItem {
	return CanvasItem{Type: "rect", X: x, Y: y, W: w, H: h, Color: color}
}

// MarshalJSON writes only the coordinates that belong to the primitive type.
func (c CanvasItem) MarshalJSON() ([]byte, error) {
	out := map[string]any{"type": c.Type}
	switch c.Type {
	case "rect":
		out["x"], out["y"], out["w"], out["h"] = c.X, c.Y, c.W, c.H
		if c.Color != "" {
			out["color"] = c.Color
		}
	default:
		out["x1"], out["y1"], out["x2"], out["y2"] = c.X1, c.Y1, c.X2, c.Y2
	}
	if c.LineWidth > 0 {
		out["lineWidth"] = c.LineWidth
	}
	if c.LineColor != "" {
		out["lineColor"] = c.LineColor
	}
	if c.Dash > 0 {
		out["dash"] = map[string]float64{"length": c.Dash}
	}
	if c.Opacity != nil {
		out["fillOpacity"] = *c.Opacity
	}
	return json.Marshal(out)
}
