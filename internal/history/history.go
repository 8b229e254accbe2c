// Package history keeps the editor's linear undo/redo log.
package history

import (
	"image"

	"github.com/codynego/smarteditor/internal/adjust"
)

// Entry is one snapshot of the editor. The working bitmap referenced by an
// entry is never modified after the entry is pushed; the rendered output is
// derived from it and State on restore.
type Entry struct {
	Label   string
	State   adjust.State
	Working *image.NRGBA
}

// Stack is a linear history with a cursor. Pushing after undoing drops the
// redo branch.
type Stack struct {
	entries []Entry
	index   int
	limit   int
}

// New creates a Stack holding at most limit entries. A limit of zero or less
// keeps everything.
func New(limit int) *Stack {
	return &Stack{index: -1, limit: limit}
}

// Push appends e after the cursor and moves the cursor onto it.
func (s *Stack) Push(e Entry) {
	s.entries = append(s.entries[:s.index+1], e)
	if s.limit > 0 && len(s.entries) > s.limit {
		drop := len(s.entries) - s.limit
		s.entries = append([]Entry(nil), s.entries[drop:]...)
	}
	s.index = len(s.entries) - 1
}

// Undo moves the cursor back one entry and returns it. It reports false at
// the oldest entry.
func (s *Stack) Undo() (Entry, bool) {
	if s.index <= 0 {
		return Entry{}, false
	}
	s.index--
	return s.entries[s.index], true
}

// Redo moves the cursor forward one entry and returns it.
func (s *Stack) Redo() (Entry, bool) {
	if s.index >= len(s.entries)-1 {
		return Entry{}, false
	}
	s.index++
	return s.entries[s.index], true
}

// Current returns the entry under the cursor.
func (s *Stack) Current() (Entry, bool) {
	if s.index < 0 {
		return Entry{}, false
	}
	return s.entries[s.index], true
}

func (s *Stack) CanUndo() bool { return s.index > 0 }
func (s *Stack) CanRedo() bool { return s.index < len(s.entries)-1 }
func (s *Stack) Len() int      { return len(s.entries) }
func (s *Stack) Index() int    { return s.index }

// Reset empties the stack.
func (s *Stack) Reset() {
	s.entries = nil
	s.index = -1
}
