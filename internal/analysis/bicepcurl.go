package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/Yogeshkharb111/Form-Correctness-Detection-Using-Pose-Estimation/internal/config"
	"github.com/Yogeshkharb111/Form-Correctness-Detection-Using-Pose-Estimation/internal/models"
)

// bicepCurl checks that the elbow angle stays inside the configured
// range, that the shoulders do not drift from their anchored baseline and
// that the wrist stays horizontally under the elbow.
type bicepCurl struct {
	cfg     config.BicepCurl
	verdict debounce
	anchors [2]anchor // shoulder baseline per body side
}

func newBicepCurl(rules config.Rules) *bicepCurl {
	e := &bicepCurl{
		cfg:     rules.BicepCurl,
		verdict: debounce{n: rules.Hysteresis},
	}
	for i := range e.anchors {
		e.anchors[i].gate = rules.Smoothing.ConfidenceGate
	}
	return e
}

func (e *bicepCurl) Exercise() models.Exercise { return models.ExerciseBicepCurl }

func (e *bicepCurl) Reset() {
	e.verdict.reset()
	for i := range e.anchors {
		e.anchors[i].reset()
	}
}

func (e *bicepCurl) Evaluate(rec *models.MetricsRecord, sf *models.SmoothedFrame) {
	var (
		angles   []float64
		perSide  [2]float64
		haveSide [2]bool
	)
	for i, s := range bodySides {
		ang, err := AngleAt(sf, s.shoulder, s.elbow, s.wrist)
		if err != nil {
			continue
		}
		perSide[i] = ang
		haveSide[i] = true
		angles = append(angles, ang)
	}

	// No elbow angle on either side: indeterminate frame, rolling state
	// untouched.
	if len(angles) == 0 {
		return
	}

	rec.ElbowAngle = models.Float(stat.Mean(angles, nil))
	if haveSide[0] && haveSide[1] {
		rec.SymmetryDelta = models.Float(SymmetryDelta(perSide[0], perSide[1]))
	}

	var reasons []models.ReasonCode
	for _, ang := range angles {
		if ang < e.cfg.ElbowMin || ang > e.cfg.ElbowMax {
			reasons = append(reasons, models.ReasonElbowRange)
			break
		}
	}

	if level, err := shoulderLevel(sf); err == nil {
		rec.ShoulderTilt = models.Float(level)
	}

	scorable := true

	// Shoulder drift against the first confident baseline, per side.
	drifted := false
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
		if math.Abs(kp.Y-base.Y) > e.cfg.ShoulderDrift {
			drifted = true
		}
	}
	if drifted {
		reasons = append(reasons, models.ReasonShoulderDrift)
	}

	// Wrist-under-elbow horizontal alignment.
	var worstOffset float64
	haveOffset := false
	for _, s := range bodySides {
		off, err := HorizontalOffsetAt(sf, s.wrist, s.elbow)
		if err != nil {
			continue
		}
		haveOffset = true
		worstOffset = math.Max(worstOffset, off)
	}
	if haveOffset {
		rec.WristOffset = models.Float(worstOffset)
		if worstOffset > e.cfg.WristOffset {
			reasons = append(reasons, models.ReasonWristMisaligned)
		}
	} else {
		scorable = false
	}

	rec.Reasons = reasons
	if !scorable {
		// Some sub-rule could not run; report what we saw but leave the
		// verdict indeterminate and the debouncer untouched.
		return
	}
	rec.Correct = models.Bool(e.verdict.update(len(reasons) == 0))
}
