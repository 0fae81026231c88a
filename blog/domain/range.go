package domain

// ListRange selects which part of a sorted post list to return. The zero
// value selects everything.
type ListRange struct {
	kind  rangeKind
	n     int
	start int
	end   int
}

type rangeKind int

const (
	rangeAll rangeKind = iota
	rangeLast
	rangeWindow
)

// All selects every post.
func All() ListRange {
	return ListRange{kind: rangeAll}
}

// Last selects the final n entries of the sorted list. Listings are sorted
// newest first, so this yields the n oldest posts under consideration;
// existing consumers depend on exactly that slice.
func Last(n int) ListRange {
	return ListRange{kind: rangeLast, n: n}
}

// Window selects the inclusive index range [start, end] of the sorted list.
func Window(start, end int) ListRange {
	return ListRange{kind: rangeWindow, start: start, end: end}
}

// Slice applies the range to posts. Out-of-range indices clamp to the valid
// bounds rather than erroring.
func (r ListRange) Slice(posts []Post) []Post {
	switch r.kind {
	case rangeLast:
		n := r.n
		if n < 0 {
			n = 0
		}
		if n > len(posts) {
			n = len(posts)
		}
		return posts[len(posts)-n:]
	case rangeWindow:
		start := r.start
		end := r.end + 1
		if start < 0 {
			start = 0
		}
		if end > len(posts) {
			end = len(posts)
		}
		if start >= end {
			return []Post{}
		}
		return posts[start:end]
	default:
		return posts
	}
}
