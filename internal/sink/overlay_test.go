package sink

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yogeshkharb111/Form-Correctness-Detection-Using-Pose-Estimation/internal/models"
)

func kp(x, y float64) models.Keypoint {
	return models.Keypoint{X: x, Y: y, Confidence: 0.9}
}

func armFrame() *models.SmoothedFrame {
	return &models.SmoothedFrame{
		Index: 7,
		Joints: map[models.JointID]models.Keypoint{
			models.LeftShoulder: kp(0.4, 0.3),
			models.LeftElbow:    kp(0.4, 0.45),
			models.LeftWrist:    kp(0.4, 0.6),
		},
		Stale: map[models.JointID]bool{},
	}
}

func TestBuildOverlaySegmentsNeedBothEnds(t *testing.T) {
	sf := armFrame()
	rec := &models.MetricsRecord{FrameIndex: 7, Correct: models.Bool(true)}

	of := BuildOverlay(rec, sf)
	assert.Equal(t, 7, of.FrameIndex)
	// shoulder-elbow and elbow-wrist; every other skeleton pair lacks an
	// endpoint and is skipped.
	assert.Len(t, of.Segments, 2)
	assert.Len(t, of.Points, 3)
	assert.Equal(t, "GOOD FORM", of.Label)
	assert.True(t, of.LabelOK)
}

func TestBuildOverlayLabels(t *testing.T) {
	sf := armFrame()

	of := BuildOverlay(&models.MetricsRecord{Correct: nil}, sf)
	assert.Equal(t, "NO POSE", of.Label)

	of = BuildOverlay(&models.MetricsRecord{
		Correct: models.Bool(false),
		Reasons: []models.ReasonCode{models.ReasonShallowSquat},
	}, sf)
	assert.Equal(t, "CHECK FORM", of.Label)
	assert.False(t, of.LabelOK)
	assert.Contains(t, of.Lines, "squat not deep enough")
}

func TestBuildOverlayMarksStaleJoints(t *testing.T) {
	sf := armFrame()
	sf.Stale[models.LeftWrist] = true

	of := BuildOverlay(&models.MetricsRecord{Correct: models.Bool(true)}, sf)
	// The stale wrist breaks the elbow-wrist segment but its dot is still
	// drawn, flagged.
	assert.Len(t, of.Segments, 1)
	var wrist *models.OverlayPoint
	for i := range of.Points {
		if of.Points[i].Joint == "left_wrist" {
			wrist = &of.Points[i]
		}
	}
	require.NotNil(t, wrist)
	assert.True(t, wrist.Stale)
}

func TestOverlayFileWritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overlay.jsonl")
	o, err := NewOverlayFile(path)
	require.NoError(t, err)

	sf := armFrame()
	require.NoError(t, o.Write(&models.MetricsRecord{FrameIndex: 0, Correct: models.Bool(true)}, sf))
	require.NoError(t, o.Write(&models.MetricsRecord{FrameIndex: 1, Correct: models.Bool(false)}, sf))
	require.NoError(t, o.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var frames []models.OverlayFrame
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var of models.OverlayFrame
		require.NoError(t, json.Unmarshal(sc.Bytes(), &of))
		frames = append(frames, of)
	}
	require.Len(t, frames, 2)
	assert.Equal(t, "GOOD FORM", frames[0].Label)
	assert.Equal(t, "CHECK FORM", frames[1].Label)
}
