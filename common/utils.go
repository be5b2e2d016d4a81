package common

// Coalesce returns the first non-zero value from the provided values, or the zero value if all are zero.
//
// Parameters:
//   - values: a variadic list of values to check for non-zero status
//
// Returns:
//   - T: the first non-zero value from the input, or the zero value if all are zero
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// CeilDiv returns the number of size-wide blocks needed to cover n items.
// Used to turn a grid extent into a workgroup count.
//
// Parameters:
//   - n: the number of items to cover
//   - size: the block size (values <= 0 are treated as 1)
//
// Returns:
//   - uint32: ceil(n / size)
func CeilDiv(n, size int) uint32 {
	if size <= 0 {
		size = 1
	}
	if n <= 0 {
		return 0
	}
	return uint32((n + size - 1) / size)
}
