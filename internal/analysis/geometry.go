// Package analysis implements the signal-conditioning and rule-evaluation
// core: keypoint smoothing, angle/alignment geometry and the per-exercise
// correctness evaluators.
package analysis

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/Yogeshkharb111/Form-Correctness-Detection-Using-Pose-Estimation/internal/models"
)

// ErrInsufficientData is returned when a computation needs joints that
// are missing, stale or carry zero confidence in the current frame.
var ErrInsufficientData = errors.New("insufficient keypoint data")

// AngleBetween returns the angle at vertex b formed by the rays b->a and
// b->c, in degrees in [0, 180]. Degenerate input (a ray of zero length)
// yields ErrInsufficientData.
func AngleBetween(a, b, c models.Keypoint) (float64, error) {
	v1 := []float64{a.X - b.X, a.Y - b.Y}
	v2 := []float64{c.X - b.X, c.Y - b.Y}

	denom := floats.Norm(v1, 2) * floats.Norm(v2, 2)
	if denom == 0 {
		return 0, ErrInsufficientData
	}

	cos := floats.Dot(v1, v2) / denom
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * 180 / math.Pi, nil
}

// VerticalTilt returns the signed angle of the segment a->b measured from
// the upward vertical axis, in degrees in (-180, 180]. Image coordinates
// have y growing downward, so an upright hip->shoulder segment tilts near
// zero and leaning toward +x gives a positive tilt.
func VerticalTilt(a, b models.Keypoint) (float64, error) {
	dx := b.X - a.X
	dy := b.Y - a.Y
	if dx == 0 && dy == 0 {
		return 0, ErrInsufficientData
	}
	return math.Atan2(dx, -dy) * 180 / math.Pi, nil
}

// HorizontalOffset is the absolute normalized horizontal distance between
// two joints, used for wrist-under-elbow and knee-over-toe checks.
func HorizontalOffset(a, b models.Keypoint) float64 {
	return math.Abs(a.X - b.X)
}

// SymmetryDelta is the absolute difference between a left-side and
// right-side instance of the same metric.
func SymmetryDelta(left, right float64) float64 {
	return math.Abs(left - right)
}

// Midpoint returns the point halfway between a and b. The confidence of
// the result is the weaker of the two inputs.
func Midpoint(a, b models.Keypoint) models.Keypoint {
	return models.Keypoint{
		X:          (a.X + b.X) / 2,
		Y:          (a.Y + b.Y) / 2,
		Z:          (a.Z + b.Z) / 2,
		Confidence: math.Min(a.Confidence, b.Confidence),
	}
}

// joints fetches the requested joints from a smoothed frame, failing with
// ErrInsufficientData when any of them is unusable.
func joints(sf *models.SmoothedFrame, ids ...models.JointID) ([]models.Keypoint, error) {
	out := make([]models.Keypoint, 0, len(ids))
	for _, id := range ids {
		kp, ok := sf.Usable(id)
		if !ok {
			return nil, ErrInsufficientData
		}
		out = append(out, kp)
	}
	return out, nil
}

// AngleAt computes the angle at vertex b from three joints of a frame.
func AngleAt(sf *models.SmoothedFrame, a, b, c models.JointID) (float64, error) {
	kps, err := joints(sf, a, b, c)
	if err != nil {
		return 0, err
	}
	return AngleBetween(kps[0], kps[1], kps[2])
}

// VerticalTiltAt computes the signed tilt of the segment a->b of a frame.
func VerticalTiltAt(sf *models.SmoothedFrame, a, b models.JointID) (float64, error) {
	kps, err := joints(sf, a, b)
	if err != nil {
		return 0, err
	}
	return VerticalTilt(kps[0], kps[1])
}

// HorizontalOffsetAt computes the horizontal offset between two joints of
// a frame.
func HorizontalOffsetAt(sf *models.SmoothedFrame, a, b models.JointID) (float64, error) {
	kps, err := joints(sf, a, b)
	if err != nil {
		return 0, err
	}
	return HorizontalOffset(kps[0], kps[1]), nil
}
