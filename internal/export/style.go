package export

import (
	"strings"

	"docdesigner/internal/models"
	"docdesigner/internal/render"
)

// mapStyle copies the text attributes of style onto n. Weights collapse to a
// bold flag: bold, 600 and 700 are bold, everything else is regular.
func mapStyle(n *render.Node, style models.Style, defaultFontSize float64) {
	n.FontSize = style.FontSize
	if n.FontSize == 0 {
		n.FontSize = defaultFontSize
	}
	n.Bold = style.FontWeight.IsBold()
	n.Italics = strings.EqualFold(style.FontStyle, "italic")
	n.Color = style.Color
	n.Background = style.BackgroundColor
	n.Alignment = style.TextAlign
	n.LineHeight = style.LineHeight
	n.Decoration = decoration(style.TextDecoration)
	applyBox(n, style)
}

// applyBox copies the layout attributes that apply to every block.
func applyBox(n *render.Node, style models.Style) {
	if style.Margin != nil {
		m := *style.Margin
		n.Margin = m[:]
	}
	if style.Opacity != nil {
		v := *style.Opacity
		n.Opacity = &v
	}
}

func decoration(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "underline":
		return "underline"
	case "line-through", "linethrough":
		return "lineThrough"
	case "overline":
		return "overline"
	}
	return ""
}

func textNode(content string, style models.Style, defaultFontSize float64) render.Node {
	n := render.Text(content)
	mapStyle(&n, style, defaultFontSize)
	return n
}

// widthValue writes a dimension the way the engine expects widths: numbers
// for absolute values, strings for percentages, star and auto.
func widthValue(d models.Dimension) any {
	if d.Unit == models.UnitAbsolute {
		return d.Value
	}
	return d.String()
}
