package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Yogeshkharb111/Form-Correctness-Detection-Using-Pose-Estimation/internal/config"
	"github.com/Yogeshkharb111/Form-Correctness-Detection-Using-Pose-Estimation/internal/models"
)

func testSmoothing() config.Smoothing {
	return config.Smoothing{Window: 5, ConfidenceGate: 0.5, GapFrames: 2}
}

func sample(x, y, conf float64) models.Keypoint {
	return models.Keypoint{X: x, Y: y, Confidence: conf}
}

func TestSmootherConstantInputIsIdentity(t *testing.T) {
	s := NewSmoother(testSmoothing())
	for i := 0; i < 10; i++ {
		kp, stale := s.Update(models.LeftWrist, sample(0.5, 0.3, 0.9))
		assert.False(t, stale)
		assert.InDelta(t, 0.5, kp.X, 1e-9)
		assert.InDelta(t, 0.3, kp.Y, 1e-9)
	}
}

func TestSmootherConvergesAfterWindow(t *testing.T) {
	s := NewSmoother(testSmoothing())
	for i := 0; i < 5; i++ {
		s.Update(models.LeftWrist, sample(0.2, 0.2, 0.9))
	}

	// After a full window of the new value, the old values have left the
	// buffer and the output equals the input exactly.
	var kp models.Keypoint
	for i := 0; i < 5; i++ {
		kp, _ = s.Update(models.LeftWrist, sample(0.8, 0.8, 0.9))
	}
	assert.InDelta(t, 0.8, kp.X, 1e-9)
	assert.InDelta(t, 0.8, kp.Y, 1e-9)
}

func TestSmootherWindowMean(t *testing.T) {
	s := NewSmoother(testSmoothing())
	s.Update(models.LeftWrist, sample(0.1, 0, 0.9))
	s.Update(models.LeftWrist, sample(0.2, 0, 0.9))
	kp, _ := s.Update(models.LeftWrist, sample(0.3, 0, 0.9))
	assert.InDelta(t, 0.2, kp.X, 1e-9, "partial window averages what it has")
}

func TestSmootherHoldsThroughLowConfidence(t *testing.T) {
	s := NewSmoother(testSmoothing())
	for i := 0; i < 5; i++ {
		s.Update(models.LeftWrist, sample(0.5, 0.5, 0.9))
	}

	// Untrusted samples do not move the filter; the held position keeps
	// the raw confidence so downstream sees how weak the detection was.
	kp, stale := s.Update(models.LeftWrist, sample(0.9, 0.9, 0.1))
	assert.False(t, stale)
	assert.InDelta(t, 0.5, kp.X, 1e-9)
	assert.Equal(t, 0.1, kp.Confidence)

	_, stale = s.Update(models.LeftWrist, sample(0.9, 0.9, 0.1))
	assert.False(t, stale, "second hold still within the gap limit")

	_, stale = s.Update(models.LeftWrist, sample(0.9, 0.9, 0.1))
	assert.True(t, stale, "third consecutive hold exceeds gap_frames=2")
}

func TestSmootherRecoversFromStale(t *testing.T) {
	s := NewSmoother(testSmoothing())
	for i := 0; i < 5; i++ {
		s.Update(models.LeftWrist, sample(0.5, 0.5, 0.9))
	}
	for i := 0; i < 4; i++ {
		s.Update(models.LeftWrist, sample(0, 0, 0.1))
	}

	_, stale := s.Update(models.LeftWrist, sample(0.5, 0.5, 0.9))
	assert.False(t, stale, "a confident sample clears staleness")
}

func TestSmootherColdStartLowConfidence(t *testing.T) {
	s := NewSmoother(testSmoothing())

	// Nothing to hold yet: the raw sample passes through unchanged.
	kp, stale := s.Update(models.LeftWrist, sample(0.7, 0.2, 0.3))
	assert.False(t, stale)
	assert.Equal(t, 0.7, kp.X)
	assert.Equal(t, 0.3, kp.Confidence)
}

func TestSmootherJointsAreIndependent(t *testing.T) {
	s := NewSmoother(testSmoothing())
	for i := 0; i < 5; i++ {
		s.Update(models.LeftWrist, sample(0.2, 0.2, 0.9))
	}
	kp, _ := s.Update(models.RightWrist, sample(0.9, 0.9, 0.9))
	assert.InDelta(t, 0.9, kp.X, 1e-9, "a fresh joint starts its own filter")
}

func TestSmoothCarriesFrameMetadata(t *testing.T) {
	s := NewSmoother(testSmoothing())
	sf := s.Smooth(&models.Frame{
		Index:       42,
		TimestampMS: 1400,
		Joints: map[models.JointID]models.Keypoint{
			models.LeftWrist: sample(0.5, 0.5, 0.9),
		},
	})
	assert.Equal(t, 42, sf.Index)
	assert.Equal(t, int64(1400), sf.TimestampMS)
	assert.Len(t, sf.Joints, 1)
}

func TestSmootherReset(t *testing.T) {
	s := NewSmoother(testSmoothing())
	for i := 0; i < 5; i++ {
		s.Update(models.LeftWrist, sample(0.2, 0.2, 0.9))
	}
	s.Reset()

	kp, _ := s.Update(models.LeftWrist, sample(0.8, 0.8, 0.9))
	assert.InDelta(t, 0.8, kp.X, 1e-9, "reset drops the previous window")
}
