// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

package ktx2

const (
	maxInt    = int(^uint(0) >> 1)
	maxUint32 = uint64(^uint32(0))
)

// u32FromInt converts an int to a uint32.
func u32FromInt(n int) (uint32, error) {
	if n < 0 || uint64(n) > maxUint32 {
		return 0, ErrSizeOverflow
	}

	// #nosec G115 -- bounds checked above.
	return uint32(n), nil
}

// intFromU64 converts a uint64 file offset or length to an int.
func intFromU64(n uint64) (int, error) {
	if n > uint64(maxInt) {
		return 0, ErrSizeOverflow
	}

	return int(n), nil
}

// alignUp rounds n up to the next multiple of align. align <= 1 returns n.
func alignUp(n, align int) int {
	if align <= 1 {
		return n
	}
	if rem := n % align; rem != 0 {
		return n + align - rem
	}

	return n
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}

	return a
}

// lcm returns the least common multiple of two positive ints.
func lcm(a, b int) int {
	if a <= 0 || b <= 0 {
		return max(a, b)
	}

	return a / gcd(a, b) * b
}
