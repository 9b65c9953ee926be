package models

import "errors"

var (
	// ErrUndoUnavailable indicates there is no further history to rewind.
	ErrUndoUnavailable = errors.New("undo_unavailable")
	// ErrRedoUnavailable indicates there is no further forward history.
	ErrRedoUnavailable = errors.New("redo_unavailable")
)

// DefaultHistoryLimit bounds the number of snapshots kept for undo.
const DefaultHistoryLimit = 100

// historyStack holds immutable document snapshots. Snapshots pushed here are
// never edited afterwards; the store always mutates a fresh clone.
type historyStack struct {
	states []Document
	future []Document
	limit  int
}

func (h *historyStack) Reset(snapshot Document) {
	h.states = []Document{snapshot}
	h.future = nil
}

func (h *historyStack) Push(snapshot Document) {
	h.states = append(h.states, snapshot)
	h.trim()
	h.future = nil
}

func (h *historyStack) trim() {
	if h.limit > 0 && len(h.states) > h.limit+1 {
		h.states = h.states[len(h.states)-h.limit-1:]
	}
}

func (h *historyStack) Current() Document {
	if len(h.states) == 0 {
		return NewDocument()
	}
	return h.states[len(h.states)-1]
}

func (h *historyStack) Undo() (Document, error) {
	if len(h.states) <= 1 {
		return Document{}, ErrUndoUnavailable
	}
	current := h.states[len(h.states)-1]
	h.states = h.states[:len(h.states)-1]
	h.future = append([]Document{current}, h.future...)
	return h.states[len(h.states)-1], nil
}

func (h *historyStack) Redo() (Document, error) {
	if len(h.future) == 0 {
		return Document{}, ErrRedoUnavailable
	}
	next := h.future[0]
	h.future = h.future[1:]
	h.states = append(h.states, next)
	h.trim()
	return next, nil
}

func (h *historyStack) CanUndo() bool {
	return len(h.states) > 1
}

func (h *historyStack) CanRedo() bool {
	return len(h.future) > 0
}

// Depth returns the number of undo and redo steps available.
func (h *historyStack) Depth() (int, int) {
	undo := 0
	if len(h.states) > 0 {
		undo = len(h.states) - 1
	}
	return undo, len(h.future)
}
