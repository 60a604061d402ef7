// ABOUTME: Undo/redo stack manager for filter and pin edits
// ABOUTME: Manages state history with maximum stack size limit

package tui

import "playlist-explorer/filter"

// ExplorerState captures the editable state for undo/redo
type ExplorerState struct {
	Filter    filter.Snapshot
	Pinned    []int // Pinned track indices in pin order
	CursorPos int
}

// clone deep-copies the state so later edits cannot leak into history
func (s ExplorerState) clone() ExplorerState {
	out := ExplorerState{
		Filter:    s.Filter,
		Pinned:    append([]int{}, s.Pinned...),
		CursorPos: s.CursorPos,
	}

	if s.Filter.Genres != nil {
		out.Filter.Genres = s.Filter.Genres.Clone()
	}

	return out
}

// UndoManager manages undo/redo stacks with maximum size limit
type UndoManager struct {
	undoStack []ExplorerState
	redoStack []ExplorerState
	maxSize   int
}

// NewUndoManager creates a new undo manager with the specified max stack size
func NewUndoManager(maxSize int) *UndoManager {
	return &UndoManager{
		undoStack: []ExplorerState{},
		redoStack: []ExplorerState{},
		maxSize:   maxSize,
	}
}

// Push saves a new state to the undo stack
// Clears the redo stack (you can't redo after a new action)
func (um *UndoManager) Push(state ExplorerState) {
	um.undoStack = append(um.undoStack, state.clone())

	if len(um.undoStack) > um.maxSize {
		um.undoStack = um.undoStack[1:]
	}

	um.redoStack = []ExplorerState{}
}

// Undo restores the previous state
// Returns the state and true if undo was successful, or zero value and false if nothing to undo
func (um *UndoManager) Undo(currentState ExplorerState) (ExplorerState, bool) {
	if len(um.undoStack) == 0 {
		return ExplorerState{}, false
	}

	um.redoStack = append(um.redoStack, currentState.clone())

	if len(um.redoStack) > um.maxSize {
		um.redoStack = um.redoStack[1:]
	}

	state := um.undoStack[len(um.undoStack)-1]
	um.undoStack = um.undoStack[:len(um.undoStack)-1]

	return state, true
}

// Redo restores the next state
// Returns the state and true if redo was successful, or zero value and false if nothing to redo
func (um *UndoManager) Redo(currentState ExplorerState) (ExplorerState, bool) {
	if len(um.redoStack) == 0 {
		return ExplorerState{}, false
	}

	um.undoStack = append(um.undoStack, currentState.clone())

	if len(um.undoStack) > um.maxSize {
		um.undoStack = um.undoStack[1:]
	}

	state := um.redoStack[len(um.redoStack)-1]
	um.redoStack = um.redoStack[:len(um.redoStack)-1]

	return state, true
}

// UndoSize returns the number of items in the undo stack
func (um *UndoManager) UndoSize() int {
	return len(um.undoStack)
}

// RedoSize returns the number of items in the redo stack
func (um *UndoManager) RedoSize() int {
	return len(um.redoStack)
}

// Clear clears both stacks
func (um *UndoManager) Clear() {
	um.undoStack = []ExplorerState{}
	um.redoStack = []ExplorerState{}
}
