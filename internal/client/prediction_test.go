package client

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/acherenovich/snake-app/internal/config"
	"github.com/acherenovich/snake-app/internal/proto"
)

func TestStepBodyPullsOverstretchedSegment(t *testing.T) {
	segments := []proto.Point{{X: 0, Y: 0}, {X: 100, Y: 0}}
	stepBody(segments, 8)
	assert.InDelta(t, 8.0, dist(segments[0], segments[1]), 0.01)
}

func TestStepBodyLeavesInBoundsSegmentUnchanged(t *testing.T) {
	segments := []proto.Point{{X: 0, Y: 0}, {X: 5, Y: 0}}
	stepBody(segments, 8)
	assert.Equal(t, float32(5), segments[1].X)
}

func TestApplyExperienceGrowShrinkGrows(t *testing.T) {
	segments := []proto.Point{{X: 0, Y: 0}}
	out := applyExperienceGrowShrink(segments, uint32(config.ExperiencePerSegment*5))
	assert.Len(t, out, 5)
}

func TestApplyExperienceGrowShrinkRespectsMinSegments(t *testing.T) {
	segments := []proto.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}}
	out := applyExperienceGrowShrink(segments, 0)
	assert.Len(t, out, config.MinSegments)
}

func TestBuildExpectedSamplesAlwaysIncludesHeadAndTail(t *testing.T) {
	segments := []proto.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}}
	samples := buildExpectedSamples(segments, 100)
	assert.Equal(t, segments[0], samples[0])
	assert.Equal(t, segments[len(segments)-1], samples[len(samples)-1])
}

func TestValidateSamplesSizeMismatchFails(t *testing.T) {
	expected := []proto.Point{{X: 0, Y: 0}}
	server := []proto.Point{{X: 0, Y: 0}, {X: 1, Y: 0}}
	assert.False(t, validateSamples(expected, server, 8))
}

func TestValidateSamplesWithinThresholdPasses(t *testing.T) {
	expected := []proto.Point{{X: 0, Y: 0}, {X: 100, Y: 0}}
	server := []proto.Point{{X: 0, Y: 0}, {X: 101, Y: 0}}
	assert.True(t, validateSamples(expected, server, 8))
}

func TestValidateSamplesExceedingBudgetFails(t *testing.T) {
	expected := make([]proto.Point, 20)
	server := make([]proto.Point, 20)
	for i := range expected {
		expected[i] = proto.Point{X: float32(i), Y: 0}
		server[i] = proto.Point{X: float32(i), Y: 0}
	}
	// budget = max(2, 20/10) = 2; push 5 points far off.
	for i := 0; i < 5; i++ {
		server[i] = proto.Point{X: 1e6, Y: 1e6}
	}
	assert.False(t, validateSamples(expected, server, 8))
}
