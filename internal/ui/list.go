package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/mycoach/internal/listdiff"
)

// listState keeps the cursor on the same item across reloads and remembers
// which rows the last reload inserted or changed.
type listState[T any, K comparable] struct {
	items     []T
	cursor    int
	highlight map[K]bool
	loaded    bool

	key   func(T) K
	equal func(T, T) bool
}

func newListState[T any, K comparable](key func(T) K, equal func(T, T) bool) listState[T, K] {
	return listState[T, K]{key: key, equal: equal}
}

// replace swaps in a reloaded list. The first load highlights nothing.
func (l *listState[T, K]) replace(next []T) {
	if l.loaded {
		l.highlight = listdiff.Diff(l.items, next, l.key, l.equal).Touched()
	}
	l.cursor = listdiff.Reselect(l.items, next, l.key, l.cursor)
	l.items = next
	l.loaded = true
}

func (l *listState[T, K]) selected() (T, bool) {
	var zero T
	if l.cursor < 0 || l.cursor >= len(l.items) {
		return zero, false
	}
	return l.items[l.cursor], true
}

func (l *listState[T, K]) move(delta int) {
	if len(l.items) == 0 {
		return
	}
	l.cursor = min(max(l.cursor+delta, 0), len(l.items)-1)
}

func (l *listState[T, K]) top() {
	if len(l.items) > 0 {
		l.cursor = 0
	}
}

func (l *listState[T, K]) bottom() {
	l.cursor = len(l.items) - 1
}

func (l *listState[T, K]) isHighlighted(item T) bool {
	return l.highlight[l.key(item)]
}

// navigate applies a movement key. It reports whether the key was one.
func (l *listState[T, K]) navigate(keys keyMap, msg tea.KeyMsg) bool {
	switch {
	case key.Matches(msg, keys.Up):
		l.move(-1)
	case key.Matches(msg, keys.Down):
		l.move(1)
	case key.Matches(msg, keys.Top):
		l.top()
	case key.Matches(msg, keys.Bottom):
		l.bottom()
	default:
		return false
	}
	return true
}
