package services

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yogeshkharb111/Form-Correctness-Detection-Using-Pose-Estimation/internal/models"
)

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// primedBridge returns a bridge wired to a buffered result channel
// instead of a live subprocess, so roundtrip handling can be driven
// directly.
func primedBridge() *PoseBridge {
	b := NewPoseBridge("python3 detector/pose_worker.py", "pose_landmarker_full")
	b.stdin = nopWriteCloser{io.Discard}
	b.results = make(chan poseResult, 10)
	b.active.Store(true)
	return b
}

func landmarks33(x float64) []poseLandmark {
	lms := make([]poseLandmark, 33)
	for i := range lms {
		lms[i] = poseLandmark{X: x, Y: 0.5, Visibility: 0.9}
	}
	return lms
}

func TestDetectSkipsResultsOfEarlierFrames(t *testing.T) {
	b := primedBridge()

	// The answer to frame 0 arrived after its roundtrip was given up on;
	// it must not be served as the answer for frame 1.
	b.results <- poseResult{Frame: 0, TimestampMS: 0, Landmarks: landmarks33(0.2)}
	b.results <- poseResult{Frame: 1, TimestampMS: 33, Landmarks: landmarks33(0.8)}

	f, err := b.Detect(context.Background(), []byte("jpeg"), 1, 33)
	require.NoError(t, err)
	assert.Equal(t, 1, f.Index)

	kp, ok := f.Joints[models.LeftShoulder]
	require.True(t, ok)
	assert.InDelta(t, 0.8, kp.X, 1e-9, "landmarks belong to the requested frame")

	stats := b.Stats()
	assert.Equal(t, int64(1), stats.Frames, "discarded results are not counted as roundtrips")
}

func TestDetectMatchingFrame(t *testing.T) {
	b := primedBridge()
	b.results <- poseResult{Frame: 4, TimestampMS: 132, Landmarks: landmarks33(0.5)}

	f, err := b.Detect(context.Background(), []byte("jpeg"), 4, 132)
	require.NoError(t, err)
	assert.Equal(t, 4, f.Index)
	assert.Equal(t, int64(132), f.TimestampMS)
}

func TestDetectPropagatesDetectorError(t *testing.T) {
	b := primedBridge()
	b.results <- poseResult{Frame: 2, Error: "decode failed"}

	_, err := b.Detect(context.Background(), []byte("jpeg"), 2, 66)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode failed")
	assert.Equal(t, int64(1), b.Stats().Errors)
}

func TestDetectHonorsContext(t *testing.T) {
	b := primedBridge()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := b.Detect(ctx, []byte("jpeg"), 0, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDetectRequiresRunningBridge(t *testing.T) {
	b := NewPoseBridge("python3 detector/pose_worker.py", "pose_landmarker_full")
	_, err := b.Detect(context.Background(), []byte("jpeg"), 0, 0)
	assert.Error(t, err)
}
