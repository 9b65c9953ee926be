package render

// LineRule describes the table lines of one direction: lines listed in Only
// (or every line when Only is empty) get Width, the rest are not drawn.
type LineRule struct {
	Width float64
	Color string
	Only  []int
}

// WidthAt returns the width of line i. A nil rule keeps the engine default of 1.
func (r *LineRule) WidthAt(i int) float64 {
	if r == nil {
		return 1
	}
	if len(r.Only) == 0 {
		return r.Width
	}
	for _, idx := range r.Only {
		if idx == i {
			return r.Width
		}
	}
	return 0
}

// TableLayout holds what the engine's layout callbacks compute per line and
// per cell. JSON cannot carry callbacks, so Resolve writes the results under
// the callback names: a number when every line gets the same value, otherwise
// an array indexed by line. Nil parts keep the engine defaults.
type TableLayout struct {
	HLine         *LineRule
	VLine         *LineRule
	PaddingLeft   *float64
	PaddingRight  *float64
	PaddingTop    *float64
	PaddingBottom *float64
}

// ResolvedLayout is the engine-facing form of a TableLayout.
type ResolvedLayout struct {
	HLineWidth    any      `json:"hLineWidth,omitempty"`
	VLineWidth    any      `json:"vLineWidth,omitempty"`
	HLineColor    string   `json:"hLineColor,omitempty"`
	VLineColor    string   `json:"vLineColor,omitempty"`
	PaddingLeft   *float64 `json:"paddingLeft,omitempty"`
	PaddingRight  *float64 `json:"paddingRight,omitempty"`
	PaddingTop    *float64 `json:"paddingTop,omitempty"`
	PaddingBottom *float64 `json:"paddingBottom,omitempty"`
}

// UniformPadding sets all four cell paddings.
func (l *TableLayout) UniformPadding(v float64) {
	l.PaddingLeft, l.PaddingRight, l.PaddingTop, l.PaddingBottom = &v, &v, &v, &v
}

// HLineWidth evaluates the horizontal line width for line i.
func (l *TableLayout) HLineWidth(i int) float64 {
	if l == nil {
		return (*LineRule)(nil).WidthAt(i)
	}
	return l.HLine.WidthAt(i)
}

// VLineWidth evaluates the vertical line width for line i.
func (l *TableLayout) VLineWidth(i int) float64 {
	if l == nil {
		return (*LineRule)(nil).WidthAt(i)
	}
	return l.VLine.WidthAt(i)
}

// Resolve evaluates the layout for a table of rows x cols cells, which has
// rows+1 horizontal and cols+1 vertical lines.
func (l *TableLayout) Resolve(rows, cols int) ResolvedLayout {
	out := ResolvedLayout{
		PaddingLeft:   l.PaddingLeft,
		PaddingRight:  l.PaddingRight,
		PaddingTop:    l.PaddingTop,
		PaddingBottom: l.PaddingBottom,
	}
	if l.HLine != nil {
		out.HLineWidth = lineWidths(l.HLine, rows+1, l.HLineWidth)
		out.HLineColor = l.HLine.Color
	}
	if l.VLine != nil {
		out.VLineWidth = lineWidths(l.VLine, cols+1, l.VLineWidth)
		out.VLineColor = l.VLine.Color
	}
	return out
}

func lineWidths(rule *LineRule, lines int, at func(int) float64) any {
	if len(rule.Only) == 0 {
		return rule.Width
	}
	widths := make([]float64, lines)
	for i := range widths {
		widths[i] = at(i)
	}
	return widths
}
