package client

// sequenceTracker holds per-connection sequencing state: whether a
// server sequence has been observed yet, and the last one seen.
type sequenceTracker struct {
	hasSeq        bool
	lastServerSeq uint32
}

// accept applies the sequencing rule for an incoming FullUpdate or
// PartialUpdate header. It returns true if the update arrived with a
// gap (repair must be raised by the caller).
func (t *sequenceTracker) accept(seq uint32) (gap bool) {
	if !t.hasSeq {
		t.hasSeq = true
		t.lastServerSeq = seq
		return false
	}
	if seq == t.lastServerSeq+1 {
		t.lastServerSeq = seq
		return false
	}
	// Gap or backward jump: ordinary u32 arithmetic, a wraparound is
	// indistinguishable from a large backward jump and resolves the
	// same way — repair.
	t.lastServerSeq = seq
	return true
}

func (t *sequenceTracker) reset() {
	t.hasSeq = false
	t.lastServerSeq = 0
}
