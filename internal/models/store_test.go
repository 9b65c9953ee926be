package models

import (
	"errors"
	"reflect"
	"slices"
	"testing"
)

func TestStoreAddTableScenario(t *testing.T) {
	store := NewStore()
	id, doc := store.AddElement(ElementTable, AtRoot())
	if id == "" {
		t.Fatalf("expected table to be added")
	}
	if store.Selected() != id {
		t.Fatalf("expected new table selected, got %q", store.Selected())
	}
	table := doc.Elements[id].(*TableElement)
	if table.Rows != 2 || table.Cols != 2 || !table.HeaderRow {
		t.Fatalf("unexpected table defaults: rows=%d cols=%d header=%v", table.Rows, table.Cols, table.HeaderRow)
	}
	for _, row := range table.Body {
		for _, cell := range row {
			if cell.Content == nil || len(cell.Content) != 0 {
				t.Fatalf("expected empty cell content, got %#v", cell.Content)
			}
		}
	}

	doc = store.AddTableRow(id)
	table = doc.Elements[id].(*TableElement)
	if table.Rows != 3 || len(table.Body) != 3 {
		t.Fatalf("expected 3 rows, got rows=%d body=%d", table.Rows, len(table.Body))
	}
	if got := len(table.Body[2]); got != 2 {
		t.Fatalf("expected new row with 2 cells, got %d", got)
	}
	for _, cell := range table.Body[2] {
		if cell.Content == nil || len(cell.Content) != 0 {
			t.Fatalf("expected empty content in new row, got %#v", cell.Content)
		}
	}
}

func TestStoreCloneHeadingScenario(t *testing.T) {
	store := NewStore()
	headingID, _ := store.AddElement(ElementHeading, AtRoot())
	cloneID, doc := store.CloneElement(headingID)
	if cloneID == "" || cloneID == headingID {
		t.Fatalf("expected distinct clone id, got %q", cloneID)
	}
	if !reflect.DeepEqual(doc.RootElementIDs, []string{headingID, cloneID}) {
		t.Fatalf("unexpected root order: %v", doc.RootElementIDs)
	}
	original := doc.Elements[headingID].(*HeadingElement)
	clone := doc.Elements[cloneID].(*HeadingElement)
	if original.Content != clone.Content {
		t.Fatalf("expected clone content %q, got %q", original.Content, clone.Content)
	}
	if store.Selected() != cloneID {
		t.Fatalf("expected selection to move to clone")
	}
}

func TestStoreCloneNestedSubtree(t *testing.T) {
	store := NewStore()
	columnsID, _ := store.AddElement(ElementColumns, AtRoot())
	tableID, _ := store.AddElement(ElementTable, InColumn(columnsID, 0))
	paraID, _ := store.AddElement(ElementParagraph, InCell(tableID, 1, 1))
	headingID, _ := store.AddElement(ElementHeading, InColumn(columnsID, 1))
	before := store.Document()

	cloneID, doc := store.CloneElement(columnsID)
	if len(doc.Elements) != len(before.Elements)*2 {
		t.Fatalf("expected every element duplicated, got %d from %d", len(doc.Elements), len(before.Elements))
	}
	originalIDs := doc.Subtree(columnsID)
	cloneIDs := doc.Subtree(cloneID)
	if len(cloneIDs) != len(originalIDs) {
		t.Fatalf("expected isomorphic subtrees, got %v vs %v", cloneIDs, originalIDs)
	}
	for i, id := range cloneIDs {
		if slices.Contains(originalIDs, id) {
			t.Fatalf("clone reuses id %s", id)
		}
		a, b := doc.Elements[originalIDs[i]], doc.Elements[id]
		if a.Kind() != b.Kind() {
			t.Fatalf("kind mismatch at %d: %s vs %s", i, a.Kind(), b.Kind())
		}
	}
	clonedColumns := doc.Elements[cloneID].(*ColumnsElement)
	clonedTable := doc.Elements[clonedColumns.Columns[0].Content[0]].(*TableElement)
	if got := len(clonedTable.Body[1][1].Content); got != 1 {
		t.Fatalf("expected cloned cell child, got %d", got)
	}
	if clonedTable.Body[1][1].Content[0] == paraID {
		t.Fatalf("cloned cell must not share the original paragraph")
	}
	if clonedColumns.Columns[1].Content[0] == headingID {
		t.Fatalf("cloned column must not share the original heading")
	}
}

func TestStoreCloneInsideContainerStaysInPlace(t *testing.T) {
	store := NewStore()
	columnsID, _ := store.AddElement(ElementColumns, AtRoot())
	first, _ := store.AddElement(ElementParagraph, InColumn(columnsID, 0))
	last, _ := store.AddElement(ElementParagraph, InColumn(columnsID, 0))
	cloneID, doc := store.CloneElement(first)
	got := doc.Elements[columnsID].(*ColumnsElement).Columns[0].Content
	if !reflect.DeepEqual(got, []string{first, cloneID, last}) {
		t.Fatalf("unexpected column content %v", got)
	}
	if len(doc.RootElementIDs) != 1 {
		t.Fatalf("nested clone must not touch the root list: %v", doc.RootElementIDs)
	}
}

func TestStoreAddElementRejectsMismatchedParent(t *testing.T) {
	store := NewStore()
	columnsID, _ := store.AddElement(ElementColumns, AtRoot())
	tableID, _ := store.AddElement(ElementTable, AtRoot())
	headingID, _ := store.AddElement(ElementHeading, AtRoot())
	before := store.Document()
	undo, _ := store.HistoryDepth()

	cases := []Placement{
		InColumn("missing", 0),
		InColumn(columnsID, 5),
		InCell(columnsID, 0, 0),
		InColumn(tableID, 0),
		InCell(tableID, 2, 0),
		InColumn(headingID, 0),
	}
	for _, p := range cases {
		if id, _ := store.AddElement(ElementParagraph, p); id != "" {
			t.Fatalf("expected no-op for %+v", p)
		}
	}
	if !reflect.DeepEqual(store.Document(), before) {
		t.Fatalf("rejected adds changed the document")
	}
	if after, _ := store.HistoryDepth(); after != undo {
		t.Fatalf("rejected adds recorded history: %d -> %d", undo, after)
	}
	if id, _ := store.AddElement(ElementType("sparkline"), AtRoot()); id != "" {
		t.Fatalf("unknown types must not be added")
	}
}

func TestStoreUndoRedoInverse(t *testing.T) {
	store := NewStore()
	d0 := store.Document()

	headingID, _ := store.AddElement(ElementHeading, AtRoot())
	tableID, _ := store.AddElement(ElementTable, AtRoot())
	store.AddTableColumn(tableID)
	if _, err := store.UpdateElementStyle(headingID, "color", "#ff0000"); err != nil {
		t.Fatalf("update style: %v", err)
	}
	store.ReorderElements(tableID, headingID)
	store.MergeCells(tableID, 0, 0, 2, 2)
	dn := store.Document()
	const steps = 6

	if undo, _ := store.HistoryDepth(); undo != steps {
		t.Fatalf("expected %d undo steps, got %d", steps, undo)
	}
	for i := 0; i < steps; i++ {
		if err := store.Undo(); err != nil {
			t.Fatalf("undo %d: %v", i, err)
		}
	}
	if !reflect.DeepEqual(store.Document(), d0) {
		t.Fatalf("expected initial document after undoing everything")
	}
	if err := store.Undo(); !errors.Is(err, ErrUndoUnavailable) {
		t.Fatalf("expected ErrUndoUnavailable, got %v", err)
	}
	if store.Selected() != "" {
		t.Fatalf("selection of a vanished element must be cleared")
	}
	for i := 0; i < steps; i++ {
		if err := store.Redo(); err != nil {
			t.Fatalf("redo %d: %v", i, err)
		}
	}
	if !reflect.DeepEqual(store.Document(), dn) {
		t.Fatalf("expected final document after redoing everything")
	}
	if err := store.Redo(); !errors.Is(err, ErrRedoUnavailable) {
		t.Fatalf("expected ErrRedoUnavailable, got %v", err)
	}
}

func TestStoreUndoThenRedoIsIdentity(t *testing.T) {
	store := NewStore()
	store.AddElement(ElementParagraph, AtRoot())
	store.AddElement(ElementDivider, AtRoot())
	before := store.Document()
	if err := store.Undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if err := store.Redo(); err != nil {
		t.Fatalf("redo: %v", err)
	}
	if !reflect.DeepEqual(store.Document(), before) {
		t.Fatalf("undo followed by redo must restore the document")
	}
}

func TestStoreMutationClearsRedo(t *testing.T) {
	store := NewStore()
	store.AddElement(ElementParagraph, AtRoot())
	_ = store.Undo()
	if !store.CanRedo() {
		t.Fatalf("expected redo after undo")
	}
	store.AddElement(ElementHeading, AtRoot())
	if store.CanRedo() {
		t.Fatalf("a new mutation must discard forward history")
	}
}

func TestStoreHistoryLimit(t *testing.T) {
	store := NewStore(WithHistoryLimit(2))
	for i := 0; i < 5; i++ {
		store.AddElement(ElementParagraph, AtRoot())
	}
	if undo, _ := store.HistoryDepth(); undo != 2 {
		t.Fatalf("expected history capped at 2, got %d", undo)
	}
}

func TestStoreLoadResetsHistory(t *testing.T) {
	store := NewStore()
	store.AddElement(ElementParagraph, AtRoot())
	doc := store.ResetDocument()
	if len(doc.RootElementIDs) != 0 || store.CanUndo() || store.CanRedo() {
		t.Fatalf("reset must replace the document and history")
	}
}

func TestStoreReorderRoundTrip(t *testing.T) {
	store := NewStore()
	a, _ := store.AddElement(ElementHeading, AtRoot())
	b, _ := store.AddElement(ElementParagraph, AtRoot())
	c, _ := store.AddElement(ElementDivider, AtRoot())
	original := store.Document().RootElementIDs

	doc := store.ReorderElements(a, b)
	if !reflect.DeepEqual(doc.RootElementIDs, []string{b, a, c}) {
		t.Fatalf("unexpected order after reorder: %v", doc.RootElementIDs)
	}
	doc = store.ReorderElements(b, a)
	if !reflect.DeepEqual(doc.RootElementIDs, original) {
		t.Fatalf("expected original order restored, got %v", doc.RootElementIDs)
	}

	doc = store.ReorderElements(a, c)
	if !reflect.DeepEqual(doc.RootElementIDs, []string{b, c, a}) {
		t.Fatalf("expected array move rather than swap, got %v", doc.RootElementIDs)
	}
}

func TestStoreUpdateElementStyleKeepsSiblings(t *testing.T) {
	store := NewStore()
	id, _ := store.AddElement(ElementParagraph, AtRoot())
	doc, err := store.UpdateElementStyle(id, "color", "red")
	if err != nil {
		t.Fatalf("update style: %v", err)
	}
	style := doc.Elements[id].Common().Style
	if style.Color != "red" || style.FontSize != 12 {
		t.Fatalf("expected color red and fontSize 12, got %+v", style)
	}
	if _, err := store.UpdateElementStyle(id, "fontSize", "large"); !errors.Is(err, ErrInvalidStyleValue) {
		t.Fatalf("expected ErrInvalidStyleValue, got %v", err)
	}
	if _, err := store.UpdateElementStyle(id, "zIndex", 3); !errors.Is(err, ErrInvalidStyleValue) {
		t.Fatalf("expected unknown style key rejected, got %v", err)
	}
}

func TestStoreUpdateElementMergesFields(t *testing.T) {
	store := NewStore()
	id, _ := store.AddElement(ElementHeading, AtRoot())
	doc, err := store.UpdateElement(id, map[string]any{"content": "Tax Invoice", "id": "other", "type": "paragraph"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	heading, ok := doc.Elements[id].(*HeadingElement)
	if !ok {
		t.Fatalf("type must be protected, got %T", doc.Elements[id])
	}
	if heading.Content != "Tax Invoice" || heading.ID != id || heading.Level != 1 {
		t.Fatalf("unexpected heading after update: %+v", heading)
	}
	if heading.Style.FontSize != 24 {
		t.Fatalf("untouched fields must survive, got %+v", heading.Style)
	}
	if _, err := store.UpdateElement(id, map[string]any{"level": "first"}); !errors.Is(err, ErrInvalidFields) {
		t.Fatalf("expected ErrInvalidFields, got %v", err)
	}
	if _, err := store.UpdateElement("missing", map[string]any{"content": "x"}); err != nil {
		t.Fatalf("unknown ids are a silent no-op, got %v", err)
	}
}

func TestStoreRemoveElementLeavesNestedReferences(t *testing.T) {
	store := NewStore()
	columnsID, _ := store.AddElement(ElementColumns, AtRoot())
	childID, _ := store.AddElement(ElementParagraph, InColumn(columnsID, 0))
	doc := store.RemoveElement(childID)
	if _, ok := doc.Elements[childID]; ok {
		t.Fatalf("expected child removed from the element map")
	}
	refs := doc.DanglingReferences()
	if len(refs) != 1 || refs[0].HolderID != columnsID || refs[0].ChildID != childID {
		t.Fatalf("expected one dangling reference, got %+v", refs)
	}

	doc = store.RemoveElement(columnsID)
	if len(doc.RootElementIDs) != 0 {
		t.Fatalf("expected root list cleaned, got %v", doc.RootElementIDs)
	}
	if store.Selected() != "" {
		t.Fatalf("expected selection cleared after delete")
	}
}

func TestStoreMoveElement(t *testing.T) {
	store := NewStore()
	columnsID, _ := store.AddElement(ElementColumns, AtRoot())
	tableID, _ := store.AddElement(ElementTable, InColumn(columnsID, 0))
	paraID, _ := store.AddElement(ElementParagraph, AtRoot())

	doc := store.MoveElement(paraID, InCell(tableID, 0, 1))
	if slices.Contains(doc.RootElementIDs, paraID) {
		t.Fatalf("expected paragraph detached from root")
	}
	if got := doc.Elements[tableID].(*TableElement).Body[0][1].Content; !reflect.DeepEqual(got, []string{paraID}) {
		t.Fatalf("unexpected cell content %v", got)
	}

	doc = store.MoveElement(paraID, AtRoot().At(0))
	if doc.RootElementIDs[0] != paraID {
		t.Fatalf("expected paragraph first in root, got %v", doc.RootElementIDs)
	}
	if got := doc.Elements[tableID].(*TableElement).Body[0][1].Content; len(got) != 0 {
		t.Fatalf("expected cell emptied, got %v", got)
	}

	before := store.Document()
	store.MoveElement(columnsID, InCell(tableID, 0, 0))
	store.MoveElement(columnsID, InColumn(columnsID, 1))
	if !reflect.DeepEqual(store.Document(), before) {
		t.Fatalf("moves into the element's own subtree must be rejected")
	}
}

func TestStoreRemoveTableRowShrinksSpan(t *testing.T) {
	store := NewStore()
	id, _ := store.AddElement(ElementTable, AtRoot())
	store.AddTableRow(id)
	store.MergeCells(id, 0, 0, 3, 1)
	doc := store.RemoveTableRow(id, 1)
	table := doc.Elements[id].(*TableElement)
	if table.Rows != 2 || len(table.Body) != 2 {
		t.Fatalf("expected 2 rows, got %d", table.Rows)
	}
	if table.Body[0][0].RowSpan != 2 {
		t.Fatalf("expected rowSpan shrunk to 2, got %d", table.Body[0][0].RowSpan)
	}

	store.RemoveTableRow(id, 0)
	doc = store.RemoveTableRow(id, 0)
	if got := doc.Elements[id].(*TableElement).Rows; got != 1 {
		t.Fatalf("the last row must not be removable, got %d rows", got)
	}
}

func TestStoreRemoveMergeOriginKeepsContent(t *testing.T) {
	store := NewStore()
	id, _ := store.AddElement(ElementTable, AtRoot())
	store.AddTableRow(id)
	childID, _ := store.AddElement(ElementParagraph, InCell(id, 0, 0))
	store.MergeCells(id, 0, 0, 2, 1)
	doc := store.RemoveTableRow(id, 0)
	cell := doc.Elements[id].(*TableElement).Body[0][0]
	if !slices.Contains(cell.Content, childID) {
		t.Fatalf("origin content should move to the freed cell, got %v", cell.Content)
	}
	if rs, cs := cell.Spans(); rs != 1 || cs != 1 {
		t.Fatalf("the dissolved merge leaves a plain cell, got %dx%d", rs, cs)
	}

	otherID, _ := store.AddElement(ElementParagraph, InCell(id, 1, 0))
	store.MergeCells(id, 1, 0, 1, 2)
	doc = store.RemoveTableColumn(id, 0)
	cell = doc.Elements[id].(*TableElement).Body[1][0]
	if !slices.Contains(cell.Content, otherID) {
		t.Fatalf("origin content should move right, got %v", cell.Content)
	}
	if refs := doc.DanglingReferences(); len(refs) != 0 {
		t.Fatalf("unexpected dangling references %v", refs)
	}
}

func TestStoreStateIsConsistent(t *testing.T) {
	store := NewStore()
	id, _ := store.AddElement(ElementHeading, AtRoot())
	store.UpdateElement(id, map[string]any{"content": "Invoice"})
	store.Undo()
	st := store.State()
	if st.Selected != id || st.UndoSteps != 1 || st.RedoSteps != 1 {
		t.Fatalf("unexpected state %+v", st)
	}
	if !reflect.DeepEqual(st.Document, store.Document()) {
		t.Fatalf("state document should match the current snapshot")
	}
	st.Document.RootElementIDs = nil
	if len(store.Document().RootElementIDs) != 1 {
		t.Fatalf("state must hand out a copy")
	}
}

func TestStoreRemoveTableColumnDropsWidth(t *testing.T) {
	store := NewStore()
	id, _ := store.AddElement(ElementTable, AtRoot())
	store.AddTableColumn(id)
	store.UpdateTableWidths(id, []Dimension{Points(100), Star(), Percent(20)})
	doc := store.RemoveTableColumn(id, 1)
	table := doc.Elements[id].(*TableElement)
	if table.Cols != 2 || len(table.Body[0]) != 2 {
		t.Fatalf("expected 2 columns, got %d", table.Cols)
	}
	if !reflect.DeepEqual(table.ColumnWidths, []Dimension{Points(100), Percent(20)}) {
		t.Fatalf("unexpected widths %v", table.ColumnWidths)
	}
	before := store.Document()
	store.UpdateTableWidths(id, []Dimension{Star()})
	if !reflect.DeepEqual(store.Document(), before) {
		t.Fatalf("width arrays must match the column count")
	}
}

func TestStoreMergeAndSplitCells(t *testing.T) {
	store := NewStore()
	id, _ := store.AddElement(ElementTable, AtRoot())
	absorbed, _ := store.AddElement(ElementParagraph, InCell(id, 1, 1))
	doc := store.MergeCells(id, 0, 0, 2, 2)
	table := doc.Elements[id].(*TableElement)
	origin := table.Body[0][0]
	if origin.RowSpan != 2 || origin.ColSpan != 2 {
		t.Fatalf("unexpected spans %+v", origin)
	}
	if !reflect.DeepEqual(origin.Content, []string{absorbed}) || len(table.Body[1][1].Content) != 0 {
		t.Fatalf("expected absorbed content moved to origin, got %+v", table.Body)
	}
	if id2, _ := store.AddElement(ElementParagraph, InCell(id, 1, 0)); id2 != "" {
		t.Fatalf("covered positions must not accept children")
	}

	before := store.Document()
	store.MergeCells(id, 1, 1, 1, 1)
	store.MergeCells(id, 0, 1, 2, 1)
	if !reflect.DeepEqual(store.Document(), before) {
		t.Fatalf("invalid merges must be rejected")
	}

	doc = store.SplitCell(id, 0, 0)
	if cell := doc.Elements[id].(*TableElement).Body[0][0]; cell.RowSpan != 0 || cell.ColSpan != 0 {
		t.Fatalf("expected split cell, got %+v", cell)
	}
}

func TestStoreSetCellBackground(t *testing.T) {
	store := NewStore()
	id, _ := store.AddElement(ElementTable, AtRoot())
	doc := store.SetCellBackground(id, 1, 0, "#fee2e2")
	if got := doc.Elements[id].(*TableElement).Body[1][0].BackgroundColor; got != "#fee2e2" {
		t.Fatalf("unexpected background %q", got)
	}
}

func TestStoreImportTableGrid(t *testing.T) {
	store := NewStore()
	id, _ := store.AddElement(ElementTable, AtRoot())
	old, _ := store.AddElement(ElementParagraph, InCell(id, 0, 0))
	doc := store.ImportTableGrid(id, [][]string{{"Item", "Qty", "Price"}, {"Widget", "", "9.50"}})
	if _, ok := doc.Elements[old]; ok {
		t.Fatalf("expected previous cell children deleted")
	}
	grid, _, ok := doc.TableText(id)
	if !ok {
		t.Fatalf("expected table text")
	}
	want := [][]string{{"Item", "Qty", "Price"}, {"Widget", "", "9.50"}}
	if !reflect.DeepEqual(grid, want) {
		t.Fatalf("unexpected grid %v", grid)
	}
	table := doc.Elements[id].(*TableElement)
	if table.Rows != 2 || table.Cols != 3 || len(table.Body[1][1].Content) != 0 {
		t.Fatalf("unexpected imported table %+v", table)
	}
}

func TestStoreUpdatePage(t *testing.T) {
	store := NewStore()
	doc, err := store.UpdatePage(map[string]any{"orientation": "landscape", "backgroundColor": "#fef3c7"})
	if err != nil {
		t.Fatalf("update page: %v", err)
	}
	if doc.Page.Orientation != Landscape || doc.Page.Size != PageA4 || doc.Page.Margins.Top != 40 {
		t.Fatalf("unexpected page %+v", doc.Page)
	}
	if !store.CanUndo() {
		t.Fatalf("page updates must be undoable")
	}
	if _, err := store.UpdatePage(map[string]any{"margins": "wide"}); !errors.Is(err, ErrInvalidFields) {
		t.Fatalf("expected ErrInvalidFields, got %v", err)
	}
}

func TestStoreDocumentIsACopy(t *testing.T) {
	store := NewStore()
	id, _ := store.AddElement(ElementHeading, AtRoot())
	doc := store.Document()
	doc.Elements[id].(*HeadingElement).Content = "mutated"
	doc.RootElementIDs[0] = "other"
	fresh := store.Document()
	if fresh.Elements[id].(*HeadingElement).Content == "mutated" || fresh.RootElementIDs[0] != id {
		t.Fatalf("callers must not be able to mutate the stored snapshot")
	}
}
