package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequenceTrackerFirstUpdateAccepted(t *testing.T) {
	var tr sequenceTracker
	gap := tr.accept(1)
	assert.False(t, gap)
	assert.True(t, tr.hasSeq)
	assert.EqualValues(t, 1, tr.lastServerSeq)
}

func TestSequenceTrackerContiguousAccepted(t *testing.T) {
	var tr sequenceTracker
	tr.accept(1)
	gap := tr.accept(2)
	assert.False(t, gap)
	assert.EqualValues(t, 2, tr.lastServerSeq)
}

func TestSequenceTrackerGapRaisesRepairAndAdvances(t *testing.T) {
	var tr sequenceTracker
	tr.accept(1)
	gap := tr.accept(5)
	assert.True(t, gap)
	assert.EqualValues(t, 5, tr.lastServerSeq, "baseline must advance even on a gap")
}

func TestSequenceTrackerBackwardJumpTreatedAsGap(t *testing.T) {
	var tr sequenceTracker
	tr.accept(10)
	gap := tr.accept(3)
	assert.True(t, gap)
	assert.EqualValues(t, 3, tr.lastServerSeq)
}
