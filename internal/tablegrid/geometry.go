// Package tablegrid computes which positions of a merged-cell grid are covered
// by another cell's row or column span, and applies structural edits that keep
// spans consistent.
//
// A grid is a slice of rows, each holding one entry per column. A cell that is
// covered by a span keeps its placeholder entry; coverage is always computed
// from the originating cells, never stored.
//
// The edit functions rewrite spans of the given grid in place and return the
// resulting grid; pass a copy when the original must survive.
package tablegrid

// Cell is anything that reports its row and column span. Spans below 1 are
// treated as 1 by callers implementing the interface.
type Cell interface {
	Spans() (rowSpan, colSpan int)
}

// Editable is a cell that can produce a copy of itself with new spans.
type Editable[C any] interface {
	Cell
	WithSpans(rowSpan, colSpan int) C
}

// Span describes a merge region anchored at its origin cell.
type Span struct {
	Row     int
	Col     int
	RowSpan int
	ColSpan int
}

// Contains reports whether (row, col) lies inside the region.
func (s Span) Contains(row, col int) bool {
	return row >= s.Row && row < s.Row+s.RowSpan && col >= s.Col && col < s.Col+s.ColSpan
}

// Covered reports whether (row, col) is occupied by a span that originates at
// an earlier cell. Every cell placed before (row, col) in row-major order is
// scanned, so a pass over the whole grid costs O(rows² × cols). Overlapping
// regions are not rejected.
func Covered[C Cell](body [][]C, row, col int) bool {
	if row < 0 || row >= len(body) {
		return false
	}
	for r := 0; r <= row; r++ {
		limit := len(body[r])
		if r == row {
			limit = min(col, len(body[r]))
		}
		for c := 0; c < limit; c++ {
			rs, cs := body[r][c].Spans()
			if rs <= 1 && cs <= 1 {
				continue
			}
			if (Span{Row: r, Col: c, RowSpan: rs, ColSpan: cs}).Contains(row, col) {
				return true
			}
		}
	}
	return false
}

// CoverMap classifies every grid position; true marks a covered position.
func CoverMap[C Cell](body [][]C) [][]bool {
	out := make([][]bool, len(body))
	for r, row := range body {
		out[r] = make([]bool, len(row))
		for c := range row {
			out[r][c] = Covered(body, r, c)
		}
	}
	return out
}

// Origin returns the origin of the span covering (row, col). When regions
// overlap the last origin in row-major order wins. A position that is not
// covered is its own origin.
func Origin[C Cell](body [][]C, row, col int) (int, int) {
	or, oc := row, col
	for r := 0; r <= row && r < len(body); r++ {
		for c := range body[r] {
			if r == row && c >= col {
				break
			}
			rs, cs := body[r][c].Spans()
			if (rs > 1 || cs > 1) && (Span{Row: r, Col: c, RowSpan: rs, ColSpan: cs}).Contains(row, col) {
				or, oc = r, c
			}
		}
	}
	return or, oc
}

// Merges lists the regions of every uncovered cell with a span above 1.
func Merges[C Cell](body [][]C) []Span {
	covered := CoverMap(body)
	var spans []Span
	for r, row := range body {
		for c, cell := range row {
			if covered[r][c] {
				continue
			}
			rs, cs := cell.Spans()
			if rs > 1 || cs > 1 {
				spans = append(spans, Span{Row: r, Col: c, RowSpan: rs, ColSpan: cs})
			}
		}
	}
	return spans
}

// RemoveRow deletes row index. Spans crossing the removed row shrink by one; a
// span whose origin is removed disappears with it, freeing the cells it covered.
func RemoveRow[C Editable[C]](body [][]C, index int) [][]C {
	if index < 0 || index >= len(body) {
		return body
	}
	for _, s := range Merges(body) {
		if s.Row < index && index < s.Row+s.RowSpan {
			body[s.Row][s.Col] = body[s.Row][s.Col].WithSpans(s.RowSpan-1, s.ColSpan)
		}
	}
	out := make([][]C, 0, len(body)-1)
	out = append(out, body[:index]...)
	return append(out, body[index+1:]...)
}

// RemoveColumn deletes column index from every row with the same span policy as RemoveRow.
func RemoveColumn[C Editable[C]](body [][]C, index int) [][]C {
	for _, s := range Merges(body) {
		if s.Col < index && index < s.Col+s.ColSpan {
			body[s.Row][s.Col] = body[s.Row][s.Col].WithSpans(s.RowSpan, s.ColSpan-1)
		}
	}
	out := make([][]C, len(body))
	for r, row := range body {
		if index < 0 || index >= len(row) {
			out[r] = row
			continue
		}
		next := make([]C, 0, len(row)-1)
		next = append(next, row[:index]...)
		out[r] = append(next, row[index+1:]...)
	}
	return out
}

// InsertRow inserts a row of cols blank cells before at (len(body) appends).
// Spans that straddle the insertion line grow to include the new row.
func InsertRow[C Editable[C]](body [][]C, at, cols int, blank func() C) [][]C {
	if at < 0 || at > len(body) {
		return body
	}
	for _, s := range Merges(body) {
		if s.Row < at && at < s.Row+s.RowSpan {
			body[s.Row][s.Col] = body[s.Row][s.Col].WithSpans(s.RowSpan+1, s.ColSpan)
		}
	}
	row := make([]C, cols)
	for c := range row {
		row[c] = blank()
	}
	out := make([][]C, 0, len(body)+1)
	out = append(out, body[:at]...)
	out = append(out, row)
	return append(out, body[at:]...)
}

// InsertColumn inserts a blank cell before at in every row.
// Spans that straddle the insertion line grow to include the new column.
func InsertColumn[C Editable[C]](body [][]C, at int, blank func() C) [][]C {
	for _, s := range Merges(body) {
		if s.Col < at && at < s.Col+s.ColSpan {
			body[s.Row][s.Col] = body[s.Row][s.Col].WithSpans(s.RowSpan, s.ColSpan+1)
		}
	}
	out := make([][]C, len(body))
	for r, row := range body {
		pos := min(max(at, 0), len(row))
		next := make([]C, 0, len(row)+1)
		next = append(next, row[:pos]...)
		next = append(next, blank())
		out[r] = append(next, row[pos:]...)
	}
	return out
}

// Clamp shrinks spans that reach past the grid bounds.
func Clamp[C Editable[C]](body [][]C) {
	for r, row := range body {
		for c, cell := range row {
			rs, cs := cell.Spans()
			maxRS := len(body) - r
			maxCS := len(row) - c
			if rs > maxRS || cs > maxCS {
				body[r][c] = cell.WithSpans(min(rs, maxRS), min(cs, maxCS))
			}
		}
	}
}

// Region returns the rectangle a merge at (row, col) would occupy, bounded by
// the grid, and whether it is a real merge (more than one position) that fits.
func Region[C Cell](body [][]C, row, col, rowSpan, colSpan int) (Span, bool) {
	if row < 0 || row >= len(body) || col < 0 || col >= len(body[row]) {
		return Span{}, false
	}
	if rowSpan < 1 || colSpan < 1 || (rowSpan == 1 && colSpan == 1) {
		return Span{}, false
	}
	if row+rowSpan > len(body) {
		return Span{}, false
	}
	for r := row; r < row+rowSpan; r++ {
		if col+colSpan > len(body[r]) {
			return Span{}, false
		}
	}
	return Span{Row: row, Col: col, RowSpan: rowSpan, ColSpan: colSpan}, true
}
