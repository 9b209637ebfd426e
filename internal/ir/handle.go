package ir

import "sync/atomic"

// Handle is the identity of a Type. The zero Handle means "unbound".
type Handle int64

var lastHandle atomic.Int64

// NewHandle allocates a fresh, never reused Handle.
func NewHandle() Handle {
	return Handle(lastHandle.Add(1))
}

// IsZero reports whether h is unbound.
func (h Handle) IsZero() bool {
	return h == 0
}

// AssignHandles gives every Type in the tree rooted at t a Handle if it has none.
func AssignHandles(t *Type) {
	t.Walk(func(cur *Type) {
		if cur.ID.IsZero() {
			cur.ID = NewHandle()
		}
	})
}
