package analytics

// GroupBy folds items into one accumulator per key. Keys are returned in the order
// they were first seen so callers can sort stably on top of source order.
func GroupBy[T any, K comparable, A any](
	items []T,
	key func(T) K,
	newAcc func(K) A,
	reduce func(A, T) A,
) ([]K, map[K]A) {
	keys := make([]K, 0)
	groups := make(map[K]A)

	for _, item := range items {
		k := key(item)
		acc, ok := groups[k]
		if !ok {
			acc = newAcc(k)
			keys = append(keys, k)
		}
		groups[k] = reduce(acc, item)
	}

	return keys, groups
}

// Ordered flattens the GroupBy result back into a slice in key order
func Ordered[K comparable, A any](keys []K, groups map[K]A) []A {
	out := make([]A, 0, len(keys))
	for _, k := range keys {
		out = append(out, groups[k])
	}
	return out
}
