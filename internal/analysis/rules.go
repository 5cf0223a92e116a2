package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/Yogeshkharb111/Form-Correctness-Detection-Using-Pose-Estimation/internal/config"
	"github.com/Yogeshkharb111/Form-Correctness-Detection-Using-Pose-Estimation/internal/models"
)

// ErrUnsupportedExercise is returned by NewEvaluator when the configured
// exercise type has no matching rule evaluator. Fatal at startup.
var ErrUnsupportedExercise = errors.New("unsupported exercise type")

// Evaluator scores one frame at a time against exercise-specific
// geometric rules. Implementations own their rolling state (baselines,
// phase markers, hysteresis counters) for the duration of one video; the
// state is reset at video start and never shared across videos.
//
// Evaluate fills in the metric fields, the reason codes of every violated
// sub-rule and the debounced verdict. When required joints are missing
// the verdict stays nil (indeterminate) and rolling state that depends on
// the missing data is left untouched.
type Evaluator interface {
	Exercise() models.Exercise
	Evaluate(rec *models.MetricsRecord, sf *models.SmoothedFrame)
	Reset()
}

// NewEvaluator builds the evaluator for the configured exercise.
func NewEvaluator(ex models.Exercise, rules config.Rules) (Evaluator, error) {
	switch ex {
	case models.ExerciseBicepCurl:
		return newBicepCurl(rules), nil
	case models.ExerciseLateralRaise:
		return newLateralRaise(rules), nil
	case models.ExerciseSquat:
		return newSquat(rules), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedExercise, ex)
	}
}

// debounce keeps the reported verdict stable under single-frame detector
// noise: a crossing must outlast n consecutive frames before the verdict
// flips. n of 0 disables debouncing.
type debounce struct {
	n       int
	primed  bool
	current bool
	counter int
}

func (d *debounce) update(observed bool) bool {
	if !d.primed {
		d.primed = true
		d.current = observed
		return d.current
	}
	if observed == d.current {
		d.counter = 0
		return d.current
	}
	d.counter++
	if d.counter > d.n {
		d.current = observed
		d.counter = 0
	}
	return d.current
}

func (d *debounce) reset() {
	d.primed = false
	d.current = false
	d.counter = 0
}

// anchor captures the first confident smoothed position of a joint and
// keeps it for the rest of the video. Drift checks measure against this
// fixed reference instead of frame-to-frame deltas, so small per-frame
// errors cannot accumulate into a false violation (and a slow real drift
// cannot hide).
type anchor struct {
	gate float64
	set  bool
	pos  models.Keypoint
}

// observe latches the joint on its first sighting at or above the
// confidence gate and returns the anchored position.
func (a *anchor) observe(sf *models.SmoothedFrame, id models.JointID) (models.Keypoint, bool) {
	if !a.set {
		if kp, ok := sf.Usable(id); ok && kp.Confidence >= a.gate {
			a.pos = kp
			a.set = true
		}
	}
	return a.pos, a.set
}

func (a *anchor) reset() {
	a.set = false
	a.pos = models.Keypoint{}
}

// side groups the joint IDs of one body side so evaluators can iterate
// left/right without duplicating rule code.
type side struct {
	name     string
	shoulder models.JointID
	elbow    models.JointID
	wrist    models.JointID
	hip      models.JointID
	knee     models.JointID
	ankle    models.JointID
}

var bodySides = [2]side{
	{"left", models.LeftShoulder, models.LeftElbow, models.LeftWrist,
		models.LeftHip, models.LeftKnee, models.LeftAnkle},
	{"right", models.RightShoulder, models.RightElbow, models.RightWrist,
		models.RightHip, models.RightKnee, models.RightAnkle},
}

// backTilt computes the torso lean: the tilt of the mid-hip to
// mid-shoulder segment from vertical.
func backTilt(sf *models.SmoothedFrame) (float64, error) {
	kps, err := joints(sf,
		models.LeftShoulder, models.RightShoulder,
		models.LeftHip, models.RightHip)
	if err != nil {
		return 0, err
	}
	midShoulder := Midpoint(kps[0], kps[1])
	midHip := Midpoint(kps[2], kps[3])
	return VerticalTilt(midHip, midShoulder)
}

// shoulderLevel measures how far the shoulder line deviates from
// horizontal, in degrees. Zero means level shoulders.
func shoulderLevel(sf *models.SmoothedFrame) (float64, error) {
	tilt, err := VerticalTiltAt(sf, models.LeftShoulder, models.RightShoulder)
	if err != nil {
		return 0, err
	}
	return 90 - math.Abs(tilt), nil
}
