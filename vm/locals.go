package vm

// ---------------------------------------------------------------------------
// Frame local storage
// ---------------------------------------------------------------------------
//
// Each call frame owns an array of 64-bit slots addressed by a logical index
// space finer than the slot granularity: 8-, 16-, and 32-bit values pack 8,
// 4, or 2 per slot. The packing arithmetic lives in pure functions so it can
// be tested independently of the dispatch loop.

// maxFrameSize is the inclusive upper bound on reserved slots per frame.
const maxFrameSize = 255

// frame is the per-call local storage, grown and shrunk by RESERVE.
type frame struct {
	slots []uint64
}

// slotShift translates a logical index at the given bit width into a
// physical slot index, the in-slot bit shift, and the value mask. width must
// be 8, 16, 32, or 64.
func slotShift(index uint64, width uint) (slot uint64, shift uint, mask uint64) {
	perSlot := uint64(64 / width)
	slot = index / perSlot
	shift = width * uint(index%perSlot)
	if width == 64 {
		mask = ^uint64(0)
	} else {
		mask = (uint64(1) << width) - 1
	}
	return slot, shift, mask
}

// get extracts the packed value at the logical index, zero-extended. The
// boolean is false when the physical slot is not reserved.
func (f *frame) get(index uint64, width uint) (uint64, bool) {
	slot, shift, mask := slotShift(index, width)
	if slot >= uint64(len(f.slots)) {
		return 0, false
	}
	return (f.slots[slot] >> shift) & mask, true
}

// set truncates the value to the given width and merges it into the packed
// position at the logical index. The boolean is false when the physical slot
// is not reserved; unreserved slots are never grown implicitly.
func (f *frame) set(index, value uint64, width uint) bool {
	slot, shift, mask := slotShift(index, width)
	if slot >= uint64(len(f.slots)) {
		return false
	}
	f.slots[slot] = (f.slots[slot] &^ (mask << shift)) | ((value & mask) << shift)
	return true
}

// reserve adjusts the frame size by the signed delta. The boolean is false
// when the resulting size would leave [0, maxFrameSize]; the frame is
// unchanged in that case.
func (f *frame) reserve(delta int) bool {
	size := len(f.slots) + delta
	if size < 0 || size > maxFrameSize {
		return false
	}
	if size <= len(f.slots) {
		// Zero the released tail so a later grow never resurrects old values.
		for i := size; i < len(f.slots); i++ {
			f.slots[i] = 0
		}
		f.slots = f.slots[:size]
		return true
	}
	for len(f.slots) < size {
		f.slots = append(f.slots, 0)
	}
	return true
}

// signExtend widens the low width bits of v to a full 64-bit two's
// complement value.
func signExtend(v uint64, width uint) uint64 {
	shift := 64 - width
	return uint64(int64(v<<shift) >> shift)
}
