package services

import (
	"github.com/Yogeshkharb111/Form-Correctness-Detection-Using-Pose-Estimation/internal/models"
)

// JSON protocol with the Python pose detector.
//
// Request (one line on stdin, interactive mode):
//
//	{"frame_data": "<base64 jpeg>", "frame": 12, "timestamp_ms": 400}
//
// Response (one line on stdout, both modes):
//
//	{"frame": 12, "timestamp_ms": 400,
//	 "landmarks": [{"x":0.5,"y":0.4,"z":0.0,"visibility":0.97}, ...]}
//
// Landmarks are the 33 MediaPipe pose landmarks in index order; a null or
// empty list means no person was detected in that frame. The detector may
// return several poses; "landmarks" always carries the highest-scoring
// one (multi-person association is out of scope, poses beyond the first
// are ignored).

type poseRequest struct {
	FrameData   string `json:"frame_data"`
	Frame       int    `json:"frame"`
	TimestampMS int64  `json:"timestamp_ms"`
}

type poseResult struct {
	Frame       int            `json:"frame"`
	TimestampMS int64          `json:"timestamp_ms"`
	Landmarks   []poseLandmark `json:"landmarks"`
	Error       string         `json:"error,omitempty"`
}

type poseLandmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

var trackedSet = func() map[int]models.JointID {
	m := make(map[int]models.JointID, len(models.TrackedJoints))
	for _, id := range models.TrackedJoints {
		m[int(id)] = id
	}
	return m
}()

// toFrame converts a detector result into a Frame, keeping only the
// joints the pipeline tracks. Landmarks with zero visibility are kept as
// confidence-0 keypoints so downstream can tell "detected nothing" from
// "joint absent".
func (r *poseResult) toFrame() *models.Frame {
	f := &models.Frame{
		Index:       r.Frame,
		TimestampMS: r.TimestampMS,
		Joints:      make(map[models.JointID]models.Keypoint),
	}
	for i, lm := range r.Landmarks {
		id, ok := trackedSet[i]
		if !ok {
			continue
		}
		f.Joints[id] = models.Keypoint{
			X:          lm.X,
			Y:          lm.Y,
			Z:          lm.Z,
			Confidence: lm.Visibility,
		}
	}
	return f
}
