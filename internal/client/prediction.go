package client

import (
	"math"

	"github.com/acherenovich/snake-app/internal/config"
	"github.com/acherenovich/snake-app/internal/proto"
)

func dist(a, b proto.Point) float32 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return float32(math.Sqrt(dx*dx + dy*dy))
}

// stepBody is the pull-to-leader chain rule: for each segment, if it
// is farther than stepDistance from its predecessor, pull it back
// along the line to the predecessor until it is exactly stepDistance
// away.
func stepBody(segments []proto.Point, stepDistance float32) {
	for i := 1; i < len(segments); i++ {
		prev := segments[i-1]
		cur := segments[i]
		d := dist(prev, cur)
		if d <= stepDistance || d == 0 {
			continue
		}
		scale := stepDistance / d
		segments[i] = proto.Point{
			X: prev.X - (prev.X-cur.X)*scale,
			Y: prev.Y - (prev.Y-cur.Y)*scale,
		}
	}
}

// applyExperienceGrowShrink resizes segments to
// max(MinSegments, round(experience/ExperiencePerSegment)). Growing
// duplicates the last segment; shrinking drops from the tail.
func applyExperienceGrowShrink(segments []proto.Point, experience uint32) []proto.Point {
	target := int(math.Round(float64(experience) / float64(config.ExperiencePerSegment)))
	if target < config.MinSegments {
		target = config.MinSegments
	}
	if len(segments) == 0 {
		return segments
	}
	if target == len(segments) {
		return segments
	}
	if target > len(segments) {
		last := segments[len(segments)-1]
		for len(segments) < target {
			segments = append(segments, last)
		}
		return segments
	}
	return segments[:target]
}

// buildExpectedSamples walks head to tail, emitting a point every time
// the accumulated arc-distance since the last emitted point reaches
// minDist, always emitting the tail.
func buildExpectedSamples(segments []proto.Point, minDist float32) []proto.Point {
	if len(segments) == 0 {
		return nil
	}
	samples := make([]proto.Point, 0, 8)
	samples = append(samples, segments[0])
	var accum float32
	last := segments[0]
	for i := 1; i < len(segments); i++ {
		accum += dist(last, segments[i])
		last = segments[i]
		if accum >= minDist {
			samples = append(samples, segments[i])
			accum = 0
		}
	}
	tail := segments[len(segments)-1]
	if samples[len(samples)-1] != tail {
		samples = append(samples, tail)
	}
	return samples
}

// validateSamples compares the expected (predicted) samples against
// the server-sent ValidationSamples using a tolerance proportional to
// segment spacing: threshold = max(120, 3*minDist), and allows a small
// failure budget (max(2, n/10)) before declaring drift.
func validateSamples(expected, serverSamples []proto.Point, minDist float32) bool {
	if len(expected) != len(serverSamples) {
		return false
	}
	threshold := float32(config.DriftMinThreshold)
	if t := config.DriftThresholdFactor * minDist; t > threshold {
		threshold = t
	}
	n := len(expected)
	budget := config.DriftMinFailureBudget
	if b := n / config.DriftFailureBudgetDivisor; b > budget {
		budget = b
	}
	bad := 0
	for i := range expected {
		if dist(expected[i], serverSamples[i]) > threshold {
			bad++
		}
	}
	return bad <= budget
}
