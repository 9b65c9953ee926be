package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"docdesigner/internal/tablegrid"
)

// ErrDocumentIncomplete indicates a document payload lacks page, elements or rootElementIds.
var ErrDocumentIncomplete = errors.New("document_incomplete")

// Document is one complete state of a template layout. Elements is the single
// source of truth; containers and RootElementIDs refer to it by ID.
type Document struct {
	Page           PageSettings       `json:"page"`
	Elements       map[string]Element `json:"elements"`
	RootElementIDs []string           `json:"rootElementIds"`
}

// NewDocument returns an empty document on a default page.
func NewDocument() Document {
	return Document{
		Page:           DefaultPageSettings(),
		Elements:       map[string]Element{},
		RootElementIDs: []string{},
	}
}

// Clone returns a deep copy that shares no mutable state with d.
func (d Document) Clone() Document {
	out := Document{
		Page:           d.Page.Clone(),
		Elements:       make(map[string]Element, len(d.Elements)),
		RootElementIDs: cloneIDs(d.RootElementIDs),
	}
	for id, el := range d.Elements {
		out.Elements[id] = CopyElement(el)
	}
	return out
}

// Element returns the element stored under id.
func (d Document) Element(id string) (Element, bool) {
	el, ok := d.Elements[id]
	return el, ok && el != nil
}

// UnmarshalJSON decodes the element map through DecodeElement.
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw struct {
		Page           *PageSettings              `json:"page"`
		Elements       map[string]json.RawMessage `json:"elements"`
		RootElementIDs []string                   `json:"rootElementIds"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Page == nil || raw.Elements == nil || raw.RootElementIDs == nil {
		return ErrDocumentIncomplete
	}
	elements := make(map[string]Element, len(raw.Elements))
	for id, payload := range raw.Elements {
		el, err := DecodeElement(payload)
		if err != nil {
			return fmt.Errorf("element %s: %w", id, err)
		}
		if el.Common().ID == "" {
			el.Common().ID = id
		}
		elements[id] = el
	}
	d.Page = *raw.Page
	d.Elements = elements
	d.RootElementIDs = raw.RootElementIDs
	return nil
}

// Normalize enforces the table invariants on every table element: every row
// has exactly cols placeholder entries, counters match the body and spans stay
// inside the grid.
func (d Document) Normalize() {
	for _, el := range d.Elements {
		if table, ok := el.(*TableElement); ok {
			normalizeTable(table)
		}
	}
}

func normalizeTable(t *TableElement) {
	cols := t.Cols
	for _, row := range t.Body {
		cols = max(cols, len(row))
	}
	if cols == 0 {
		cols = 1
	}
	if len(t.Body) == 0 {
		t.Body = [][]TableCell{make([]TableCell, 0, cols)}
	}
	for r, row := range t.Body {
		for len(row) < cols {
			row = append(row, NewTableCell())
		}
		for c := range row {
			if row[c].Content == nil {
				row[c].Content = []string{}
			}
		}
		t.Body[r] = row[:cols]
	}
	t.Rows = len(t.Body)
	t.Cols = cols
	tablegrid.Clamp(t.Body)
	if len(t.ColumnWidths) > 0 {
		for len(t.ColumnWidths) < cols {
			t.ColumnWidths = append(t.ColumnWidths, Star())
		}
		t.ColumnWidths = t.ColumnWidths[:cols]
	}
}

// Reference locates one child-ID slot inside the document.
type Reference struct {
	HolderID string `json:"holderId,omitempty"` // empty for the root list
	Row      int    `json:"row"`                // column index for columns, row for tables
	Col      int    `json:"col"`                // cell column for tables, -1 otherwise
	ChildID  string `json:"childId"`
}

// DanglingReferences lists every referenced ID that is not present in Elements,
// ordered by holder and position. Export tolerates them; they remain a structural defect.
func (d Document) DanglingReferences() []Reference {
	var out []Reference
	for i, id := range d.RootElementIDs {
		if _, ok := d.Element(id); !ok {
			out = append(out, Reference{Row: i, Col: -1, ChildID: id})
		}
	}
	holders := make([]string, 0, len(d.Elements))
	for id := range d.Elements {
		holders = append(holders, id)
	}
	sort.Strings(holders)
	for _, holderID := range holders {
		switch el := d.Elements[holderID].(type) {
		case *ColumnsElement:
			for ci, col := range el.Columns {
				for _, id := range col.Content {
					if _, ok := d.Element(id); !ok {
						out = append(out, Reference{HolderID: holderID, Row: ci, Col: -1, ChildID: id})
					}
				}
			}
		case *TableElement:
			for r, row := range el.Body {
				for c, cell := range row {
					for _, id := range cell.Content {
						if _, ok := d.Element(id); !ok {
							out = append(out, Reference{HolderID: holderID, Row: r, Col: c, ChildID: id})
						}
					}
				}
			}
		}
	}
	return out
}

// Subtree returns id followed by every element transitively reachable through
// container child lists, depth first. Missing IDs are skipped.
func (d Document) Subtree(id string) []string {
	var out []string
	seen := map[string]struct{}{}
	var walk func(string)
	walk = func(current string) {
		if _, ok := seen[current]; ok {
			return
		}
		el, ok := d.Element(current)
		if !ok {
			return
		}
		seen[current] = struct{}{}
		out = append(out, current)
		if container, ok := el.(Container); ok {
			for _, child := range container.ChildIDs() {
				walk(child)
			}
		}
	}
	walk(id)
	return out
}

// ParentOf returns the container holding id and the slot it sits in. An empty
// holder with ok=true means id sits in the root list.
func (d Document) ParentOf(id string) (Reference, bool) {
	for i, rootID := range d.RootElementIDs {
		if rootID == id {
			return Reference{Row: i, Col: -1, ChildID: id}, true
		}
	}
	for holderID, el := range d.Elements {
		switch el := el.(type) {
		case *ColumnsElement:
			for ci, col := range el.Columns {
				for _, child := range col.Content {
					if child == id {
						return Reference{HolderID: holderID, Row: ci, Col: -1, ChildID: id}, true
					}
				}
			}
		case *TableElement:
			for r, row := range el.Body {
				for c, cell := range row {
					for _, child := range cell.Content {
						if child == id {
							return Reference{HolderID: holderID, Row: r, Col: c, ChildID: id}, true
						}
					}
				}
			}
		}
	}
	return Reference{}, false
}

// PlainTexter is implemented by element kinds with a plain-text rendition.
type PlainTexter interface {
	PlainText() string
}

// TableText returns the plain text of every table cell (children joined by
// newlines) together with the table's merge regions.
func (d Document) TableText(tableID string) ([][]string, []tablegrid.Span, bool) {
	el, ok := d.Element(tableID)
	if !ok {
		return nil, nil, false
	}
	table, ok := el.(*TableElement)
	if !ok {
		return nil, nil, false
	}
	grid := make([][]string, len(table.Body))
	for r, row := range table.Body {
		grid[r] = make([]string, len(row))
		for c, cell := range row {
			var parts []string
			for _, id := range cell.Content {
				child, ok := d.Element(id)
				if !ok {
					continue
				}
				if texter, ok := child.(PlainTexter); ok {
					parts = append(parts, texter.PlainText())
				}
			}
			grid[r][c] = joinNonEmpty(parts...)
		}
	}
	return grid, tablegrid.Merges(table.Body), true
}
