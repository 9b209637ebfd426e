package common

// GroupBy buckets items by key, preserving first-seen key order and item order.
func GroupBy[E any, K comparable](items []E, key func(E) K) ([]K, map[K][]E) {
	var order []K

	groups := make(map[K][]E)

	for _, item := range items {
		k := key(item)
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}

		groups[k] = append(groups[k], item)
	}

	return order, groups
}

// RemoveAt returns s without the element at index i.
func RemoveAt[S ~[]E, E any](s S, i int) S {
	return append(s[:i:i], s[i+1:]...)
}

// InsertAt returns s with items inserted before index i.
func InsertAt[S ~[]E, E any](s S, i int, items ...E) S {
	out := make(S, 0, len(s)+len(items))
	out = append(out, s[:i]...)
	out = append(out, items...)

	return append(out, s[i:]...)
}
