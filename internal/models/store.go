package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"docdesigner/internal/tablegrid"
)

// ErrInvalidFields is returned when an update payload cannot be decoded into the target record.
var ErrInvalidFields = errors.New("invalid_fields")

// Store owns the document being edited, the current selection and the undo
// history. Every successful mutation edits a fresh clone and commits it as a
// new snapshot; an operation that cannot apply leaves the document untouched
// and records nothing.
type Store struct {
	mu       sync.RWMutex
	doc      Document
	selected string
	history  historyStack
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithHistoryLimit bounds the number of undo steps; 0 keeps every step.
func WithHistoryLimit(limit int) StoreOption {
	return func(s *Store) {
		if limit >= 0 {
			s.history.limit = limit
		}
	}
}

// NewStore constructs a store holding an empty document.
func NewStore(opts ...StoreOption) *Store {
	store := &Store{doc: NewDocument()}
	store.history.limit = DefaultHistoryLimit
	for _, opt := range opts {
		opt(store)
	}
	store.history.Reset(store.doc)
	return store
}

// Placement selects a child list: the root list, one column of a columns
// element, or one cell of a table.
type Placement struct {
	ParentID string
	Index    int // column index for columns, row for tables
	Cell     int // cell column for tables, -1 for columns
	Position int // insert position in the list, -1 appends
}

// AtRoot targets the end of the root list.
func AtRoot() Placement {
	return Placement{Index: -1, Cell: -1, Position: -1}
}

// InColumn targets the end of column index of a columns element.
func InColumn(columnsID string, index int) Placement {
	return Placement{ParentID: columnsID, Index: index, Cell: -1, Position: -1}
}

// InCell targets the end of cell (row, col) of a table.
func InCell(tableID string, row, col int) Placement {
	return Placement{ParentID: tableID, Index: row, Cell: col, Position: -1}
}

// At returns p inserting at position instead of appending.
func (p Placement) At(position int) Placement {
	p.Position = position
	return p
}

// list resolves the child list p points at. Columns take exactly one index and
// tables exactly two; covered table positions are not addressable.
func (d *Document) list(p Placement) (*[]string, bool) {
	if p.ParentID == "" {
		return &d.RootElementIDs, true
	}
	el, ok := d.Element(p.ParentID)
	if !ok {
		return nil, false
	}
	switch e := el.(type) {
	case *ColumnsElement:
		if p.Cell >= 0 || p.Index < 0 || p.Index >= len(e.Columns) {
			return nil, false
		}
		return &e.Columns[p.Index].Content, true
	case *TableElement:
		if _, ok := e.Cell(p.Index, p.Cell); !ok {
			return nil, false
		}
		if tablegrid.Covered(e.Body, p.Index, p.Cell) {
			return nil, false
		}
		return &e.Body[p.Index][p.Cell].Content, true
	}
	return nil, false
}

func insertAt(ids []string, position int, id string) []string {
	if position < 0 || position > len(ids) {
		position = len(ids)
	}
	return slices.Insert(ids, position, id)
}

// mutateLocked applies fn to a clone of the current document and commits the
// result when fn reports a change. It must be called with the mutex held.
func (s *Store) mutateLocked(fn func(doc *Document) bool) bool {
	next := s.doc.Clone()
	if !fn(&next) {
		return false
	}
	s.doc = next
	s.history.Push(next)
	return true
}

func (s *Store) mutate(fn func(doc *Document) bool) Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mutateLocked(fn)
	return s.doc.Clone()
}

// Document returns a copy of the current snapshot.
func (s *Store) Document() Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone()
}

// State is a consistent view of the document, selection and history depth.
type State struct {
	Document  Document
	Selected  string
	UndoSteps int
	RedoSteps int
}

// State reads the document, selection and history under one lock.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	undo, redo := s.history.Depth()
	return State{Document: s.doc.Clone(), Selected: s.selected, UndoSteps: undo, RedoSteps: redo}
}

// Selected returns the selected element ID, or "" when nothing is selected.
func (s *Store) Selected() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// SelectElement makes id the single selection. An empty id clears it; an
// unknown id leaves the selection unchanged.
func (s *Store) SelectElement(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "" {
		s.selected = ""
		return
	}
	if _, ok := s.doc.Element(id); ok {
		s.selected = id
	}
}

// ClearSelection drops the selection.
func (s *Store) ClearSelection() {
	s.SelectElement("")
}

// AddElement creates the default element of typ and appends it to the list p
// names. The new element becomes the selection. It returns "" and the
// unchanged document when typ is unknown or p does not resolve.
func (s *Store) AddElement(typ ElementType, p Placement) (string, Document) {
	el, err := NewElement(typ)
	if err != nil {
		return "", s.Document()
	}
	id := el.Common().ID
	s.mu.Lock()
	defer s.mu.Unlock()
	ok := s.mutateLocked(func(doc *Document) bool {
		target, ok := doc.list(p)
		if !ok {
			return false
		}
		doc.Elements[id] = el
		*target = insertAt(*target, p.Position, id)
		return true
	})
	if !ok {
		return "", s.doc.Clone()
	}
	s.selected = id
	return id, s.doc.Clone()
}

// UpdateElement shallow-merges fields (JSON names) into the element stored
// under id. The id and type keys are ignored. An unknown id is a no-op; fields
// that do not decode into the element kind fail with ErrInvalidFields.
func (s *Store) UpdateElement(id string, fields map[string]any) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var updateErr error
	s.mutateLocked(func(doc *Document) bool {
		el, ok := doc.Element(id)
		if !ok || len(fields) == 0 {
			return false
		}
		merged, err := mergeFields(el, fields, "id", "type")
		if err != nil {
			updateErr = err
			return false
		}
		next, err := DecodeElement(merged)
		if err != nil {
			updateErr = fmt.Errorf("%w: %v", ErrInvalidFields, err)
			return false
		}
		next.Common().ID = id
		if table, ok := next.(*TableElement); ok {
			normalizeTable(table)
		}
		doc.Elements[id] = next
		return true
	})
	return s.doc.Clone(), updateErr
}

// mergeFields overlays fields onto the JSON form of v, skipping protected keys.
func mergeFields(v any, fields map[string]any, protected ...string) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	current := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &current); err != nil {
		return nil, err
	}
	for key, value := range fields {
		if slices.Contains(protected, key) {
			continue
		}
		if value == nil {
			delete(current, key)
			continue
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidFields, key)
		}
		current[key] = encoded
	}
	return json.Marshal(current)
}

// UpdateElementStyle replaces one style key of the element stored under id,
// keeping every sibling key. A nil value clears the key.
func (s *Store) UpdateElementStyle(id, key string, value any) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var styleErr error
	s.mutateLocked(func(doc *Document) bool {
		el, ok := doc.Element(id)
		if !ok {
			return false
		}
		next, err := el.Common().Style.With(key, value)
		if err != nil {
			styleErr = err
			return false
		}
		el.Common().Style = next
		return true
	})
	return s.doc.Clone(), styleErr
}

// RemoveElement deletes id from the element map and the root list. Children of
// the removed element stay in the map, and containers that list id keep the
// now dangling reference.
func (s *Store) RemoveElement(id string) Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := s.mutateLocked(func(doc *Document) bool {
		if _, ok := doc.Elements[id]; !ok {
			return false
		}
		delete(doc.Elements, id)
		doc.RootElementIDs = slices.DeleteFunc(doc.RootElementIDs, func(v string) bool { return v == id })
		return true
	})
	if removed && s.selected == id {
		s.selected = ""
	}
	return s.doc.Clone()
}

// CloneElement deep-copies id and everything it contains under fresh IDs. The
// copy is inserted right after the original in the list holding it, or at the
// end of the root list when the original is not referenced anywhere. The copy
// becomes the selection.
func (s *Store) CloneElement(id string) (string, Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var cloneID string
	s.mutateLocked(func(doc *Document) bool {
		copied, ok := doc.cloneSubtree(id)
		if !ok {
			return false
		}
		cloneID = copied
		ref, found := doc.ParentOf(id)
		if !found {
			doc.RootElementIDs = append(doc.RootElementIDs, copied)
			return true
		}
		target := doc.slot(ref)
		pos := slices.Index(*target, id) + 1
		*target = insertAt(*target, pos, copied)
		return true
	})
	if cloneID != "" {
		s.selected = cloneID
	}
	return cloneID, s.doc.Clone()
}

// slot addresses the list a reference found by ParentOf sits in.
func (d *Document) slot(ref Reference) *[]string {
	switch e := d.Elements[ref.HolderID].(type) {
	case *ColumnsElement:
		return &e.Columns[ref.Row].Content
	case *TableElement:
		return &e.Body[ref.Row][ref.Col].Content
	}
	return &d.RootElementIDs
}

// ReorderElements moves activeID to the root position currently held by
// overID. Both must be root elements.
func (s *Store) ReorderElements(activeID, overID string) Document {
	return s.mutate(func(doc *Document) bool {
		from := slices.Index(doc.RootElementIDs, activeID)
		to := slices.Index(doc.RootElementIDs, overID)
		if from < 0 || to < 0 || from == to {
			return false
		}
		ids := slices.Delete(doc.RootElementIDs, from, from+1)
		doc.RootElementIDs = slices.Insert(ids, to, activeID)
		return true
	})
}

// MoveElement detaches id from the list holding it and inserts it into the
// list p names. Moving an element into itself or one of its descendants is rejected.
func (s *Store) MoveElement(id string, p Placement) Document {
	return s.mutate(func(doc *Document) bool {
		if _, ok := doc.Element(id); !ok {
			return false
		}
		if p.ParentID != "" && slices.Contains(doc.Subtree(id), p.ParentID) {
			return false
		}
		if _, ok := doc.list(p); !ok {
			return false
		}
		if ref, found := doc.ParentOf(id); found {
			source := doc.slot(ref)
			*source = slices.DeleteFunc(*source, func(v string) bool { return v == id })
		}
		target, _ := doc.list(p)
		*target = insertAt(*target, p.Position, id)
		return true
	})
}

func (d *Document) table(id string) (*TableElement, bool) {
	el, ok := d.Element(id)
	if !ok {
		return nil, false
	}
	table, ok := el.(*TableElement)
	return table, ok
}

// AddTableRow appends a row of empty cells to the table.
func (s *Store) AddTableRow(tableID string) Document {
	return s.InsertTableRow(tableID, -1)
}

// InsertTableRow inserts a row of empty cells before row at; -1 appends.
// Merges straddling the insertion line grow to include the new row.
func (s *Store) InsertTableRow(tableID string, at int) Document {
	return s.mutate(func(doc *Document) bool {
		t, ok := doc.table(tableID)
		if !ok {
			return false
		}
		if at < 0 {
			at = len(t.Body)
		}
		if at > len(t.Body) {
			return false
		}
		t.Body = tablegrid.InsertRow(t.Body, at, t.Cols, NewTableCell)
		t.Rows = len(t.Body)
		return true
	})
}

// AddTableColumn appends an empty cell to every row of the table.
func (s *Store) AddTableColumn(tableID string) Document {
	return s.InsertTableColumn(tableID, -1)
}

// InsertTableColumn inserts an empty cell before column at in every row; -1
// appends. Merges straddling the insertion line grow to include the new column.
func (s *Store) InsertTableColumn(tableID string, at int) Document {
	return s.mutate(func(doc *Document) bool {
		t, ok := doc.table(tableID)
		if !ok {
			return false
		}
		if at < 0 {
			at = t.Cols
		}
		if at > t.Cols {
			return false
		}
		t.Body = tablegrid.InsertColumn(t.Body, at, NewTableCell)
		t.Cols++
		if len(t.ColumnWidths) > 0 {
			t.ColumnWidths = slices.Insert(t.ColumnWidths, min(at, len(t.ColumnWidths)), Star())
		}
		return true
	})
}

// RemoveTableRow deletes row index. Merges crossing it shrink by one and a
// merge anchored on it is dissolved, its content moving to the cell below.
// The last remaining row cannot be removed.
func (s *Store) RemoveTableRow(tableID string, index int) Document {
	return s.mutate(func(doc *Document) bool {
		t, ok := doc.table(tableID)
		if !ok || index < 0 || index >= len(t.Body) || len(t.Body) <= 1 {
			return false
		}
		carryOriginContent(t.Body, index, true)
		t.Body = tablegrid.RemoveRow(t.Body, index)
		t.Rows = len(t.Body)
		return true
	})
}

// RemoveTableColumn deletes column index with the same merge policy as RemoveTableRow.
func (s *Store) RemoveTableColumn(tableID string, index int) Document {
	return s.mutate(func(doc *Document) bool {
		t, ok := doc.table(tableID)
		if !ok || index < 0 || index >= t.Cols || t.Cols <= 1 {
			return false
		}
		carryOriginContent(t.Body, index, false)
		t.Body = tablegrid.RemoveColumn(t.Body, index)
		t.Cols--
		if index < len(t.ColumnWidths) {
			t.ColumnWidths = slices.Delete(t.ColumnWidths, index, index+1)
		}
		return true
	})
}

// carryOriginContent hands the content of each merge anchored on the removed
// row (or column) to the first cell the dissolved merge frees.
func carryOriginContent(body [][]TableCell, index int, row bool) {
	for _, m := range tablegrid.Merges(body) {
		r, c := m.Row, m.Col
		switch {
		case row && m.Row == index && m.RowSpan > 1:
			r++
		case !row && m.Col == index && m.ColSpan > 1:
			c++
		default:
			continue
		}
		origin := &body[m.Row][m.Col]
		body[r][c].Content = slices.Concat(body[r][c].Content, origin.Content)
		origin.Content = nil
	}
}

// UpdateTableWidths replaces the column widths wholesale. The slice must hold
// one entry per column.
func (s *Store) UpdateTableWidths(tableID string, widths []Dimension) Document {
	return s.mutate(func(doc *Document) bool {
		t, ok := doc.table(tableID)
		if !ok || len(widths) != t.Cols {
			return false
		}
		t.ColumnWidths = append([]Dimension{}, widths...)
		return true
	})
}

// MergeCells anchors a rowSpan x colSpan merge at (row, col). The region must
// fit the grid and must not cut through an existing merge. Children of the
// absorbed cells are appended to the origin cell.
func (s *Store) MergeCells(tableID string, row, col, rowSpan, colSpan int) Document {
	return s.mutate(func(doc *Document) bool {
		t, ok := doc.table(tableID)
		if !ok {
			return false
		}
		region, ok := tablegrid.Region(t.Body, row, col, rowSpan, colSpan)
		if !ok {
			return false
		}
		for r := region.Row; r < region.Row+region.RowSpan; r++ {
			for c := region.Col; c < region.Col+region.ColSpan; c++ {
				or, oc := tablegrid.Origin(t.Body, r, c)
				if !region.Contains(or, oc) {
					return false
				}
				rs, cs := t.Body[r][c].Spans()
				end := tablegrid.Span{Row: r, Col: c, RowSpan: rs, ColSpan: cs}
				if !region.Contains(end.Row+end.RowSpan-1, end.Col+end.ColSpan-1) {
					return false
				}
			}
		}
		origin := t.Body[row][col]
		for r := region.Row; r < region.Row+region.RowSpan; r++ {
			for c := region.Col; c < region.Col+region.ColSpan; c++ {
				if r == row && c == col {
					continue
				}
				origin.Content = append(origin.Content, t.Body[r][c].Content...)
				t.Body[r][c] = t.Body[r][c].WithSpans(1, 1)
				t.Body[r][c].Content = []string{}
			}
		}
		t.Body[row][col] = origin.WithSpans(rowSpan, colSpan)
		return true
	})
}

// SplitCell dissolves the merge anchored at (row, col); the covered
// placeholders become ordinary empty cells again.
func (s *Store) SplitCell(tableID string, row, col int) Document {
	return s.mutate(func(doc *Document) bool {
		t, ok := doc.table(tableID)
		if !ok {
			return false
		}
		cell, ok := t.Cell(row, col)
		if !ok {
			return false
		}
		if rs, cs := cell.Spans(); rs == 1 && cs == 1 {
			return false
		}
		t.Body[row][col] = cell.WithSpans(1, 1)
		return true
	})
}

// SetCellBackground sets the explicit fill of cell (row, col); "" clears it.
func (s *Store) SetCellBackground(tableID string, row, col int, color string) Document {
	return s.mutate(func(doc *Document) bool {
		t, ok := doc.table(tableID)
		if !ok {
			return false
		}
		if _, ok := t.Cell(row, col); !ok {
			return false
		}
		t.Body[row][col].BackgroundColor = strings.TrimSpace(color)
		return true
	})
}

// ImportTableGrid replaces the table body with grid. Every non-empty cell gets
// one paragraph child; the previous cell children and their subtrees are
// deleted. Ragged rows are padded to the widest row.
func (s *Store) ImportTableGrid(tableID string, grid [][]string) Document {
	return s.mutate(func(doc *Document) bool {
		t, ok := doc.table(tableID)
		if !ok || len(grid) == 0 {
			return false
		}
		cols := 0
		for _, row := range grid {
			cols = max(cols, len(row))
		}
		if cols == 0 {
			return false
		}
		for _, child := range t.ChildIDs() {
			for _, id := range doc.Subtree(child) {
				delete(doc.Elements, id)
			}
		}
		body := make([][]TableCell, len(grid))
		for r, row := range grid {
			body[r] = make([]TableCell, cols)
			for c := range body[r] {
				body[r][c] = NewTableCell()
				if c >= len(row) || strings.TrimSpace(row[c]) == "" {
					continue
				}
				el, _ := NewElement(ElementParagraph)
				para := el.(*ParagraphElement)
				para.Content = row[c]
				doc.Elements[para.ID] = para
				body[r][c].Content = []string{para.ID}
			}
		}
		t.Body = body
		t.Rows, t.Cols = len(body), cols
		t.ColumnWidths = nil
		return true
	})
}

// UpdatePage shallow-merges fields (JSON names) into the page settings.
func (s *Store) UpdatePage(fields map[string]any) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var pageErr error
	s.mutateLocked(func(doc *Document) bool {
		if len(fields) == 0 {
			return false
		}
		merged, err := mergeFields(doc.Page, fields)
		if err != nil {
			pageErr = err
			return false
		}
		var page PageSettings
		if err := json.Unmarshal(merged, &page); err != nil {
			pageErr = fmt.Errorf("%w: %v", ErrInvalidFields, err)
			return false
		}
		doc.Page = page
		return true
	})
	return s.doc.Clone(), pageErr
}

// Undo restores the previous snapshot.
func (s *Store) Undo() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot, err := s.history.Undo()
	if err != nil {
		return err
	}
	s.restoreLocked(snapshot)
	return nil
}

// Redo reapplies the next snapshot from history.
func (s *Store) Redo() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot, err := s.history.Redo()
	if err != nil {
		return err
	}
	s.restoreLocked(snapshot)
	return nil
}

func (s *Store) restoreLocked(snapshot Document) {
	s.doc = snapshot
	if _, ok := s.doc.Element(s.selected); !ok {
		s.selected = ""
	}
}

// CanUndo reports whether history contains a previous snapshot.
func (s *Store) CanUndo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.CanUndo()
}

// CanRedo reports whether history contains a forward snapshot.
func (s *Store) CanRedo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.CanRedo()
}

// HistoryDepth returns the counts of undo and redo steps currently available.
func (s *Store) HistoryDepth() (int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.Depth()
}

// ResetDocument replaces the document with an empty one and clears history.
func (s *Store) ResetDocument() Document {
	return s.LoadDocument(NewDocument())
}

// LoadDocument replaces the document with a normalised copy of doc and clears
// history and selection.
func (s *Store) LoadDocument(doc Document) Document {
	next := doc.Clone()
	if next.Elements == nil {
		next.Elements = map[string]Element{}
	}
	if next.RootElementIDs == nil {
		next.RootElementIDs = []string{}
	}
	next.Normalize()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = next
	s.selected = ""
	s.history.Reset(next)
	return s.doc.Clone()
}

// LoadTemplate loads the document of t.
func (s *Store) LoadTemplate(t *Template) Document {
	if t == nil {
		return s.Document()
	}
	return s.LoadDocument(t.Document)
}
