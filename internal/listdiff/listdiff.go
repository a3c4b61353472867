// Package listdiff compares two versions of a list by identity and content
// so views can keep the selection and mark rows that changed.
package listdiff

// Result describes how next differs from prev.
type Result[K comparable] struct {
	Inserted  []K
	Removed   []K
	Changed   []K
	Unchanged int
}

// Empty reports whether the lists hold the same items with the same content.
// Order changes are not reported.
func (r Result[K]) Empty() bool {
	return len(r.Inserted) == 0 && len(r.Removed) == 0 && len(r.Changed) == 0
}

// Touched returns the set of keys that are new or changed.
func (r Result[K]) Touched() map[K]bool {
	out := make(map[K]bool, len(r.Inserted)+len(r.Changed))
	for _, k := range r.Inserted {
		out[k] = true
	}
	for _, k := range r.Changed {
		out[k] = true
	}
	return out
}

// Diff matches items by key and compares matched pairs with equal. Keys are
// reported in the order they appear in next (removals in prev order).
func Diff[T any, K comparable](prev, next []T, key func(T) K, equal func(T, T) bool) Result[K] {
	var res Result[K]
	old := make(map[K]T, len(prev))
	for _, item := range prev {
		old[key(item)] = item
	}
	seen := make(map[K]bool, len(next))
	for _, item := range next {
		k := key(item)
		seen[k] = true
		before, ok := old[k]
		switch {
		case !ok:
			res.Inserted = append(res.Inserted, k)
		case !equal(before, item):
			res.Changed = append(res.Changed, k)
		default:
			res.Unchanged++
		}
	}
	for _, item := range prev {
		if k := key(item); !seen[k] {
			res.Removed = append(res.Removed, k)
		}
	}
	return res
}

// Index returns the position of k in items, or -1.
func Index[T any, K comparable](items []T, key func(T) K, k K) int {
	for i, item := range items {
		if key(item) == k {
			return i
		}
	}
	return -1
}

// Reselect maps a cursor on prev to next: the same item when it survived,
// otherwise the nearest valid row. It returns -1 for an empty next.
func Reselect[T any, K comparable](prev, next []T, key func(T) K, cursor int) int {
	if len(next) == 0 {
		return -1
	}
	if cursor >= 0 && cursor < len(prev) {
		if i := Index(next, key, key(prev[cursor])); i >= 0 {
			return i
		}
	}
	return min(max(cursor, 0), len(next)-1)
}
