package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/Yogeshkharb111/Form-Correctness-Detection-Using-Pose-Estimation/internal/config"
	"github.com/Yogeshkharb111/Form-Correctness-Detection-Using-Pose-Estimation/internal/models"
)

// squatPhase tracks where in a repetition the lifter is, driven by the
// sign of the knee-angle derivative.
type squatPhase int

const (
	phaseUnknown squatPhase = iota
	phaseDescending
	phaseBottom
	phaseAscending
)

func (p squatPhase) String() string {
	switch p {
	case phaseDescending:
		return "descending"
	case phaseBottom:
		return "bottom"
	case phaseAscending:
		return "ascending"
	default:
		return "unknown"
	}
}

// squat checks squat depth at the bottom of each repetition, back tilt
// throughout, and that the knees do not collapse past the ankles.
//
// Depth is only evaluated at the bottom of a rep. The bottom is detected
// one frame after the fact, when the knee-angle derivative flips
// non-negative; the bottom event is attributed to the frame that held the
// minimum angle.
type squat struct {
	cfg     config.Squat
	verdict debounce

	phase       squatPhase
	prevAngle   float64
	hasPrev     bool
	minAngle    float64
	minIndex    int
	bottomIndex int // frame index of the last detected bottom, -1 before the first
	bottomCount int
}

func newSquat(rules config.Rules) *squat {
	return &squat{
		cfg:         rules.Squat,
		verdict:     debounce{n: rules.Hysteresis},
		bottomIndex: -1,
	}
}

func (e *squat) Exercise() models.Exercise { return models.ExerciseSquat }

func (e *squat) Reset() {
	e.verdict.reset()
	e.phase = phaseUnknown
	e.hasPrev = false
	e.bottomIndex = -1
	e.bottomCount = 0
}

func (e *squat) Evaluate(rec *models.MetricsRecord, sf *models.SmoothedFrame) {
	var angles []float64
	for _, s := range bodySides {
		if ang, err := AngleAt(sf, s.hip, s.knee, s.ankle); err == nil {
			angles = append(angles, ang)
		}
	}

	// Without a knee angle there is no phase progress and no verdict.
	if len(angles) == 0 {
		return
	}

	kneeAngle := stat.Mean(angles, nil)
	rec.KneeAngle = models.Float(kneeAngle)
	if len(angles) == 2 {
		rec.SymmetryDelta = models.Float(SymmetryDelta(angles[0], angles[1]))
	}

	var reasons []models.ReasonCode
	if atBottom, depthOK := e.step(rec.FrameIndex, kneeAngle); atBottom && !depthOK {
		reasons = append(reasons, models.ReasonShallowSquat)
	}

	scorable := true

	tilt, err := backTilt(sf)
	if err != nil {
		scorable = false
	} else {
		rec.BackTilt = models.Float(tilt)
		if math.Abs(tilt) > e.cfg.BackTiltMax {
			reasons = append(reasons, models.ReasonBackTilt)
		}
	}

	if level, err := shoulderLevel(sf); err == nil {
		rec.ShoulderTilt = models.Float(level)
	}

	kneeOver := false
	haveKneeOver := false
	for _, s := range bodySides {
		off, err := HorizontalOffsetAt(sf, s.knee, s.ankle)
		if err != nil {
			continue
		}
		haveKneeOver = true
		if off > e.cfg.KneeOverTolerance {
			kneeOver = true
		}
	}
	if kneeOver {
		reasons = append(reasons, models.ReasonKneeOverToe)
	}
	if !haveKneeOver {
		scorable = false
	}

	rec.Reasons = reasons
	if !scorable {
		return
	}
	rec.Correct = models.Bool(e.verdict.update(len(reasons) == 0))
}

// step advances the phase machine with this frame's knee angle. It
// returns whether a bottom was detected on this frame and, if so, whether
// the rep reached the configured depth.
func (e *squat) step(frameIndex int, angle float64) (atBottom, depthOK bool) {
	defer func() {
		e.prevAngle = angle
		e.hasPrev = true
	}()

	if !e.hasPrev {
		return false, false
	}
	deriv := angle - e.prevAngle

	switch e.phase {
	case phaseUnknown:
		if deriv <= -e.cfg.MinDescentDelta {
			e.phase = phaseDescending
			e.minAngle = angle
			e.minIndex = frameIndex
		}
	case phaseDescending:
		if deriv < 0 {
			if angle < e.minAngle {
				e.minAngle = angle
				e.minIndex = frameIndex
			}
			break
		}
		// Derivative flipped non-negative: the previous frame was the
		// bottom of the rep.
		e.phase = phaseBottom
		e.bottomIndex = e.minIndex
		e.bottomCount++
		return true, e.minAngle <= e.cfg.DepthAngle
	case phaseBottom:
		e.phase = phaseAscending
	case phaseAscending:
		if angle >= e.cfg.StandingAngle {
			e.phase = phaseUnknown
		}
	}
	return false, false
}
