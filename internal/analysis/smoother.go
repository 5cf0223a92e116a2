package analysis

import (
	"gonum.org/v1/gonum/stat"

	"github.com/Yogeshkharb111/Form-Correctness-Detection-Using-Pose-Estimation/internal/config"
	"github.com/Yogeshkharb111/Form-Correctness-Detection-Using-Pose-Estimation/internal/models"
)

// Smoother suppresses detector jitter with one windowed moving-average
// filter per joint, created lazily on first sighting. Samples below the
// confidence gate do not touch filter state; the previous smoothed value
// is held instead, and after GapFrames consecutive holds the joint is
// flagged stale so downstream treats it as missing rather than frozen.
//
// Joints are filtered independently; the rule layer absorbs the small
// left/right deltas this can introduce via its hysteresis.
type Smoother struct {
	cfg     config.Smoothing
	filters map[models.JointID]*jointFilter
}

type jointFilter struct {
	xs, ys, zs []float64 // ring buffers, oldest first
	last       models.Keypoint
	held       int
}

func NewSmoother(cfg config.Smoothing) *Smoother {
	return &Smoother{
		cfg:     cfg,
		filters: make(map[models.JointID]*jointFilter),
	}
}

// Reset drops all per-joint filter state. Call between videos.
func (s *Smoother) Reset() {
	s.filters = make(map[models.JointID]*jointFilter)
}

// Update feeds one raw sample for a joint and returns the smoothed
// position plus a staleness flag. The returned keypoint carries the raw
// sample's confidence; smoothing never fabricates confidence.
func (s *Smoother) Update(id models.JointID, raw models.Keypoint) (models.Keypoint, bool) {
	f, seen := s.filters[id]

	if raw.Confidence < s.cfg.ConfidenceGate {
		if !seen {
			// Cold start with an untrusted sample: pass it through
			// unchanged, no filter state to build on.
			return raw, false
		}
		f.held++
		held := f.last
		held.Confidence = raw.Confidence
		return held, f.held > s.cfg.GapFrames
	}

	if !seen {
		f = &jointFilter{}
		s.filters[id] = f
	}

	f.held = 0
	f.xs = push(f.xs, raw.X, s.cfg.Window)
	f.ys = push(f.ys, raw.Y, s.cfg.Window)
	f.zs = push(f.zs, raw.Z, s.cfg.Window)

	smoothed := models.Keypoint{
		X:          stat.Mean(f.xs, nil),
		Y:          stat.Mean(f.ys, nil),
		Z:          stat.Mean(f.zs, nil),
		Confidence: raw.Confidence,
	}
	f.last = smoothed
	return smoothed, false
}

// Smooth filters every joint present in a raw frame.
func (s *Smoother) Smooth(f *models.Frame) *models.SmoothedFrame {
	sf := &models.SmoothedFrame{
		Index:       f.Index,
		TimestampMS: f.TimestampMS,
		Joints:      make(map[models.JointID]models.Keypoint, len(f.Joints)),
		Stale:       make(map[models.JointID]bool),
	}
	for id, raw := range f.Joints {
		kp, stale := s.Update(id, raw)
		sf.Joints[id] = kp
		if stale {
			sf.Stale[id] = true
		}
	}
	return sf
}

func push(buf []float64, v float64, window int) []float64 {
	buf = append(buf, v)
	if len(buf) > window {
		buf = buf[1:]
	}
	return buf
}
