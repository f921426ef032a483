package utils

// FilterSlice maps in through fn, keeping the results fn marks as ok.
func FilterSlice[S any, T any](in []S, fn func(S) (T, bool)) []T {
	out := make([]T, 0, len(in))
	for _, s := range in {
		if t, ok := fn(s); ok {
			out = append(out, t)
		}
	}
	return out
}

// Distinct drops repeated values while keeping first-seen order.
func Distinct[T comparable](in []T) []T {
	seen := make(map[T]struct{}, len(in))
	out := make([]T, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func Contains[T comparable](in []T, v T) bool {
	for _, s := range in {
		if s == v {
			return true
		}
	}
	return false
}

func Ptr[T any](v T) *T {
	return &v
}
