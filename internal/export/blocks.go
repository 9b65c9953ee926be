package export

import (
	"strings"

	"docdesigner/internal/models"
	"docdesigner/internal/render"
	"docdesigner/internal/tablegrid"
)

// dividerNode draws the rule as a canvas line. Its length comes from the width
// against ContentWidth and its start offset from the alignment.
func dividerNode(e *models.DividerElement) render.Node {
	length, ok := e.Width.Resolve(ContentWidth)
	if !ok || length > ContentWidth {
		length = ContentWidth
	}
	length = max(length, 0)
	var offset float64
	switch e.Style.TextAlign {
	case "center":
		offset = (ContentWidth - length) / 2
	case "right":
		offset = ContentWidth - length
	}
	thickness := e.Thickness
	if thickness <= 0 {
		thickness = 1
	}
	color := e.Color
	if color == "" {
		color = "#cccccc"
	}
	line := render.Line(offset, 0, offset+length, 0, thickness, color)
	switch e.LineStyle {
	case "dashed":
		line.Dash = 5
	case "dotted":
		line.Dash = 1
	}
	n := render.Node{Canvas: []render.CanvasItem{line}}
	applyBox(&n, e.Style)
	return n
}

func imageNode(e *models.ImageElement) (render.Node, bool) {
	if strings.TrimSpace(e.Src) == "" {
		return render.Node{}, false
	}
	n := render.Node{Image: e.Src, Alignment: e.Style.TextAlign}
	if w, ok := e.Width.Resolve(ContentWidth); ok {
		n.Width = w
	}
	if e.Height.Unit == models.UnitAbsolute {
		n.Height = e.Height.Value
	}
	applyBox(&n, e.Style)
	return n, true
}

// tableNode maps the grid. Covered positions become empty placeholders, header
// rows repeat across pages and fills resolve header, alternating row and
// explicit background in that order.
func (w *walker) tableNode(e *models.TableElement) render.Node {
	covered := tablegrid.CoverMap(e.Body)
	cols := e.Cols
	body := make([][]render.Node, len(e.Body))
	for r, row := range e.Body {
		cols = max(cols, len(row))
		body[r] = make([]render.Node, len(row))
		for c, cell := range row {
			if covered[r][c] {
				body[r][c] = render.Node{}
				continue
			}
			n := render.Node{Stack: w.nodes(cell.Content)}
			if len(n.Stack) == 0 {
				n.Text = ""
			}
			rs, cs := cell.Spans()
			if rs > 1 {
				n.RowSpan = rs
			}
			if cs > 1 {
				n.ColSpan = cs
			}
			n.FillColor = cellFill(e, r, cell)
			body[r][c] = n
		}
	}

	for r := range body {
		for len(body[r]) < cols {
			body[r] = append(body[r], render.Text(""))
		}
	}

	widths := make([]any, cols)
	for c := range widths {
		widths[c] = "*"
		if c < len(e.ColumnWidths) {
			widths[c] = widthValue(e.ColumnWidths[c])
		}
	}
	table := &render.Table{Widths: widths, Body: body}
	if e.HeaderRow {
		table.HeaderRows = 1
	}
	n := render.Node{Table: table, Layout: tableLayout(e)}
	mapStyle(&n, e.Style, 0)
	return n
}

func cellFill(e *models.TableElement, row int, cell models.TableCell) string {
	if e.HeaderRow && row == 0 && e.HeaderBackground != "" {
		return e.HeaderBackground
	}
	dataRow := row
	if e.HeaderRow {
		dataRow--
	}
	if e.AlternateRowColor != "" && dataRow >= 0 && dataRow%2 == 1 {
		return e.AlternateRowColor
	}
	return cell.BackgroundColor
}

// tableLayout returns nil unless the table customises borders or padding.
func tableLayout(e *models.TableElement) *render.TableLayout {
	if e.BorderWidth == nil && e.BorderColor == "" && e.CellPadding == nil {
		return nil
	}
	layout := &render.TableLayout{}
	if e.BorderWidth != nil || e.BorderColor != "" {
		width := 1.0
		if e.BorderWidth != nil {
			width = *e.BorderWidth
		}
		layout.HLine = &render.LineRule{Width: width, Color: e.BorderColor}
		layout.VLine = &render.LineRule{Width: width, Color: e.BorderColor}
	}
	if e.CellPadding != nil {
		layout.UniformPadding(*e.CellPadding)
	}
	return layout
}

func infoStack(heading, content string, hs models.HeadingStyle, style models.Style) render.Node {
	var stack []render.Node
	if strings.TrimSpace(heading) != "" {
		h := render.Text(heading)
		h.FontSize = hs.FontSize
		if h.FontSize == 0 {
			h.FontSize = 12
		}
		h.Bold = hs.FontWeight.IsBold()
		h.Color = hs.Color
		h.Margin = []float64{0, 0, 0, 4}
		stack = append(stack, h)
	}
	stack = append(stack, render.Text(content))
	n := render.Node{Stack: stack}
	mapStyle(&n, style, 11)
	return n
}

// clientInfoNode wraps the stack in a one-cell table whose only drawn line is
// the left border, which gives a bordered block with inner padding.
func clientInfoNode(e *models.ClientInfoElement) render.Node {
	stack := infoStack(e.Heading, e.Content, e.HeadingStyle, e.Style)
	if !e.ShowBorder {
		return stack
	}
	margin := stack.Margin
	stack.Margin = nil
	width := e.BorderWidth
	if width <= 0 {
		width = 3
	}
	color := e.BorderColor
	if color == "" {
		color = "#3b82f6"
	}
	layout := &render.TableLayout{
		HLine: &render.LineRule{Width: 0},
		VLine: &render.LineRule{Width: width, Color: color, Only: []int{0}},
	}
	left, zero := 10.0, 0.0
	layout.PaddingLeft, layout.PaddingRight = &left, &zero
	layout.PaddingTop, layout.PaddingBottom = &zero, &zero
	return render.Node{
		Table:  &render.Table{Widths: []any{"*"}, Body: [][]render.Node{{stack}}},
		Layout: layout,
		Margin: margin,
	}
}

func signatureNode(e *models.SignatureElement) render.Node {
	length := e.LineLength
	if length <= 0 {
		length = 200
	}
	caption := render.Text(e.Label)
	caption.Margin = []float64{0, 4, 0, 0}
	n := render.Node{Stack: []render.Node{
		{Canvas: []render.CanvasItem{render.Line(0, 0, length, 0, 1, "#000000")}},
		caption,
	}}
	mapStyle(&n, e.Style, 10)
	return n
}

func listNode(e *models.ListElement) (render.Node, bool) {
	if len(e.Items) == 0 {
		return render.Node{}, false
	}
	items := make([]render.Node, len(e.Items))
	for i, item := range e.Items {
		items[i] = render.Text(item)
	}
	var n render.Node
	if e.Ordered {
		n.OL = items
	} else {
		n.UL = items
	}
	mapStyle(&n, e.Style, 12)
	return n, true
}
