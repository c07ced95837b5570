package gfx

import "unsafe"

// sizeOf returns the in-memory size of T.
func sizeOf[T any]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// asBytes reinterprets data as raw bytes without copying. T must not
// contain pointers; every element type used with the data functions is a
// plain value type.
func asBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	n := len(data) * int(unsafe.Sizeof(data[0]))
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(data))), n)
}

// checkSpan validates a startIndex/elementCount window into a slice of n
// elements.
func checkSpan(n, startIndex, elementCount int) error {
	if startIndex < 0 || (n > 0 && startIndex >= n) || (n == 0 && startIndex > 0) {
		return argError("startIndex", "must be within the range of the data array, got %d for length %d", startIndex, n)
	}
	if elementCount < 0 {
		return argError("elementCount", "must not be negative, got %d", elementCount)
	}
	if startIndex+elementCount > n {
		return argError("elementCount", "the data array holds %d elements, %d are needed from index %d",
			n, elementCount, startIndex)
	}
	return nil
}

func alignUp(v, align int) int {
	if align <= 1 {
		return v
	}
	return (v + align - 1) / align * align
}
