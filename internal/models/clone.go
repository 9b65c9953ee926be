package models

// cloneSubtree copies the element stored under id and every element reachable
// through its columns or cells, registering each copy in d.Elements under a
// fresh ID. Dangling child IDs are dropped from the copy. The returned ID is
// the copy of id.
func (d *Document) cloneSubtree(id string) (string, bool) {
	return d.cloneSubtreeVisiting(id, map[string]struct{}{})
}

func (d *Document) cloneSubtreeVisiting(id string, visiting map[string]struct{}) (string, bool) {
	original, ok := d.Element(id)
	if !ok {
		return "", false
	}
	if _, loop := visiting[id]; loop {
		return "", false
	}
	visiting[id] = struct{}{}
	defer delete(visiting, id)

	el := CopyElement(original)
	el.Common().ID = GenerateID(string(el.Kind()))

	cloneList := func(ids []string) []string {
		out := make([]string, 0, len(ids))
		for _, child := range ids {
			if copied, ok := d.cloneSubtreeVisiting(child, visiting); ok {
				out = append(out, copied)
			}
		}
		return out
	}

	switch e := el.(type) {
	case *ColumnsElement:
		for i := range e.Columns {
			e.Columns[i].Content = cloneList(e.Columns[i].Content)
		}
	case *TableElement:
		for r := range e.Body {
			for c := range e.Body[r] {
				e.Body[r][c].Content = cloneList(e.Body[r][c].Content)
			}
		}
	}

	d.Elements[el.Common().ID] = el
	return el.Common().ID, true
}
