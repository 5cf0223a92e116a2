package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yogeshkharb111/Form-Correctness-Detection-Using-Pose-Estimation/internal/models"
)

func pt(x, y float64) models.Keypoint {
	return models.Keypoint{X: x, Y: y, Confidence: 0.9}
}

func TestAngleBetweenRightAngle(t *testing.T) {
	ang, err := AngleBetween(pt(0, 1), pt(0, 0), pt(1, 0))
	require.NoError(t, err)
	assert.InDelta(t, 90, ang, 1e-9)
}

func TestAngleBetweenColinear(t *testing.T) {
	ang, err := AngleBetween(pt(0, 1), pt(0, 0), pt(0, -1))
	require.NoError(t, err)
	assert.InDelta(t, 180, ang, 1e-9)

	// Same direction: zero angle.
	ang, err = AngleBetween(pt(0, 1), pt(0, 0), pt(0, 2))
	require.NoError(t, err)
	assert.InDelta(t, 0, ang, 1e-9)
}

func TestAngleBetweenDegenerate(t *testing.T) {
	_, err := AngleBetween(pt(0.5, 0.5), pt(0.5, 0.5), pt(1, 1))
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestAngleBetweenInvariance(t *testing.T) {
	base, err := AngleBetween(pt(0.2, 0.3), pt(0.4, 0.5), pt(0.6, 0.3))
	require.NoError(t, err)

	// Translating every point leaves the angle unchanged.
	shifted, err := AngleBetween(pt(0.3, 0.5), pt(0.5, 0.7), pt(0.7, 0.5))
	require.NoError(t, err)
	assert.InDelta(t, base, shifted, 1e-9)

	// Scaling about the vertex leaves the angle unchanged.
	scaled, err := AngleBetween(pt(0.0, 0.1), pt(0.4, 0.5), pt(0.8, 0.1))
	require.NoError(t, err)
	assert.InDelta(t, base, scaled, 1e-9)
}

func TestVerticalTilt(t *testing.T) {
	// Upright segment, y grows downward: hip below shoulder.
	tilt, err := VerticalTilt(pt(0.5, 0.6), pt(0.5, 0.4))
	require.NoError(t, err)
	assert.InDelta(t, 0, tilt, 1e-9)

	// Leaning toward +x gives a positive tilt.
	tilt, err = VerticalTilt(pt(0.5, 0.6), pt(0.7, 0.4))
	require.NoError(t, err)
	assert.InDelta(t, 45, tilt, 1e-9)

	// Leaning toward -x gives a negative tilt.
	tilt, err = VerticalTilt(pt(0.5, 0.6), pt(0.3, 0.4))
	require.NoError(t, err)
	assert.InDelta(t, -45, tilt, 1e-9)

	_, err = VerticalTilt(pt(0.5, 0.5), pt(0.5, 0.5))
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestSymmetryDeltaIsSymmetric(t *testing.T) {
	assert.Equal(t, SymmetryDelta(80, 40), SymmetryDelta(40, 80))
	assert.Equal(t, 0.0, SymmetryDelta(55, 55))
}

func TestMidpointConfidence(t *testing.T) {
	a := models.Keypoint{X: 0, Y: 0, Confidence: 0.9}
	b := models.Keypoint{X: 1, Y: 1, Confidence: 0.4}
	mid := Midpoint(a, b)
	assert.InDelta(t, 0.5, mid.X, 1e-9)
	assert.InDelta(t, 0.5, mid.Y, 1e-9)
	assert.Equal(t, 0.4, mid.Confidence, "midpoint keeps the weaker confidence")
}

func TestAngleAtMissingJoint(t *testing.T) {
	sf := &models.SmoothedFrame{
		Joints: map[models.JointID]models.Keypoint{
			models.LeftShoulder: pt(0.4, 0.3),
			models.LeftElbow:    pt(0.4, 0.45),
			// wrist absent
		},
		Stale: map[models.JointID]bool{},
	}
	_, err := AngleAt(sf, models.LeftShoulder, models.LeftElbow, models.LeftWrist)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestAngleAtStaleJoint(t *testing.T) {
	sf := &models.SmoothedFrame{
		Joints: map[models.JointID]models.Keypoint{
			models.LeftShoulder: pt(0.4, 0.3),
			models.LeftElbow:    pt(0.4, 0.45),
			models.LeftWrist:    pt(0.4, 0.6),
		},
		Stale: map[models.JointID]bool{models.LeftWrist: true},
	}
	_, err := AngleAt(sf, models.LeftShoulder, models.LeftElbow, models.LeftWrist)
	assert.ErrorIs(t, err, ErrInsufficientData, "stale joints count as missing")
}
