package decode

// maxPreallocate bounds how much backing storage a size hint may claim
// before any elements have actually been seen. A malformed or hostile
// hint must not translate into a large allocation.
const maxPreallocate = 4096

// Cautious clamps a caller-provided element count hint to a sane
// pre-allocation size.
func Cautious(hint int) int {
	if hint < 0 {
		return 0
	}
	if hint > maxPreallocate {
		return maxPreallocate
	}
	return hint
}
