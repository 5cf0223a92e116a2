package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/Yogeshkharb111/Form-Correctness-Detection-Using-Pose-Estimation/internal/config"
	"github.com/Yogeshkharb111/Form-Correctness-Detection-Using-Pose-Estimation/internal/models"
)

// lateralRaise checks that both arms stay close to a straight line, that
// the two sides raise symmetrically and that the shoulders are not
// shrugged above their anchored baseline.
type lateralRaise struct {
	cfg     config.LateralRaise
	verdict debounce
	anchors [2]anchor
}

func newLateralRaise(rules config.Rules) *lateralRaise {
	e := &lateralRaise{
		cfg:     rules.LateralRaise,
		verdict: debounce{n: rules.Hysteresis},
	}
	for i := range e.anchors {
		e.anchors[i].gate = rules.Smoothing.ConfidenceGate
	}
	return e
}

func (e *lateralRaise) Exercise() models.Exercise { return models.ExerciseLateralRaise }

func (e *lateralRaise) Reset() {
	e.verdict.reset()
	for i := range e.anchors {
		e.anchors[i].reset()
	}
}

func (e *lateralRaise) Evaluate(rec *models.MetricsRecord, sf *models.SmoothedFrame) {
	var (
		armAngles  []float64
		raiseAngle [2]float64
		haveRaise  [2]bool
	)
	for i, s := range bodySides {
		if ang, err := AngleAt(sf, s.wrist, s.elbow, s.shoulder); err == nil {
			armAngles = append(armAngles, ang)
		}
		// Raise angle: how far the shoulder->wrist segment has swung out
		// from hanging straight down.
		if tilt, err := VerticalTiltAt(sf, s.shoulder, s.wrist); err == nil {
			raiseAngle[i] = 180 - math.Abs(tilt)
			haveRaise[i] = true
		}
	}

	if len(armAngles) == 0 {
		return
	}

	rec.ElbowAngle = models.Float(stat.Mean(armAngles, nil))
	if level, err := shoulderLevel(sf); err == nil {
		rec.ShoulderTilt = models.Float(level)
	}

	var reasons []models.ReasonCode
	for _, ang := range armAngles {
		if ang < e.cfg.MinArmAngle {
			reasons = append(reasons, models.ReasonArmNotStraight)
			break
		}
	}

	scorable := len(armAngles) == 2

	if haveRaise[0] && haveRaise[1] {
		delta := SymmetryDelta(raiseAngle[0], raiseAngle[1])
		rec.SymmetryDelta = models.Float(delta)
		if delta > e.cfg.SymmetryDelta {
			reasons = append(reasons, models.ReasonAsymmetricRaise)
		}
	} else {
		scorable = false
	}

	// Shrug: shoulder elevated (moved up, i.e. smaller y) past the
	// baseline by more than the threshold.
	shrugged := false
	for i, s := range bodySides {
		base, ok := e.anchors[i].observe(sf, s.shoulder)
		if !ok {
			scorable = false
			continue
		}
		kp, ok := sf.Usable(s.shoulder)
		if !ok {
			scorable = false
			continue
		}
		if base.Y-kp.Y > e.cfg.ShrugThreshold {
			shrugged = true
		}
	}
	if shrugged {
		reasons = append(reasons, models.ReasonShoulderShrug)
	}

	rec.Reasons = reasons
	if !scorable {
		return
	}
	rec.Correct = models.Bool(e.verdict.update(len(reasons) == 0))
}
