package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/Yogeshkharb111/Form-Correctness-Detection-Using-Pose-Estimation/internal/models"
)

// Rules carries every numeric threshold the core consumes. All values are
// configuration, never hard-coded in the evaluators; the defaults mirror
// the tuning from the original field report.
type Rules struct {
	// Hysteresis is the number of consecutive frames a threshold
	// crossing must outlast before the reported verdict flips. Zero
	// makes the verdict follow every frame directly.
	Hysteresis int `toml:"hysteresis"`

	Smoothing    Smoothing    `toml:"smoothing"`
	BicepCurl    BicepCurl    `toml:"bicep_curl"`
	LateralRaise LateralRaise `toml:"lateral_raise"`
	Squat        Squat        `toml:"squat"`
}

type Smoothing struct {
	Window         int     `toml:"window"`
	ConfidenceGate float64 `toml:"confidence_gate"`
	GapFrames      int     `toml:"gap_frames"`
}

type BicepCurl struct {
	ElbowMin      float64 `toml:"elbow_min"`
	ElbowMax      float64 `toml:"elbow_max"`
	ShoulderDrift float64 `toml:"shoulder_drift"`
	WristOffset   float64 `toml:"wrist_offset"`
}

type LateralRaise struct {
	MinArmAngle    float64 `toml:"min_arm_angle"`
	SymmetryDelta  float64 `toml:"symmetry_delta"`
	ShrugThreshold float64 `toml:"shrug_threshold"`
}

type Squat struct {
	DepthAngle        float64 `toml:"depth_angle"`
	StandingAngle     float64 `toml:"standing_angle"`
	MinDescentDelta   float64 `toml:"min_descent_delta"`
	BackTiltMax       float64 `toml:"back_tilt_max"`
	KneeOverTolerance float64 `toml:"knee_over_tolerance"`
}

func DefaultRules() Rules {
	return Rules{
		Hysteresis: 2,
		Smoothing: Smoothing{
			Window:         5,
			ConfidenceGate: 0.5,
			GapFrames:      15,
		},
		BicepCurl: BicepCurl{
			ElbowMin:      30,
			ElbowMax:      170,
			ShoulderDrift: 0.05,
			WristOffset:   0.10,
		},
		LateralRaise: LateralRaise{
			MinArmAngle:    150,
			SymmetryDelta:  15,
			ShrugThreshold: 0.04,
		},
		Squat: Squat{
			DepthAngle:        100,
			StandingAngle:     160,
			MinDescentDelta:   2,
			BackTiltMax:       25,
			KneeOverTolerance: 0.12,
		},
	}
}

// LoadRules reads thresholds from a TOML file layered over the defaults.
// A missing file is not an error; malformed content or invalid values are
// fatal at startup.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &rules); err != nil {
				return rules, fmt.Errorf("decode %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return rules, fmt.Errorf("stat %s: %w", path, err)
		}
	}
	if err := rules.Validate(); err != nil {
		return rules, err
	}
	return rules, nil
}

func (r Rules) Validate() error {
	if r.Hysteresis < 0 {
		return fmt.Errorf("hysteresis must be >= 0, got %d", r.Hysteresis)
	}
	if r.Smoothing.Window < 1 {
		return fmt.Errorf("smoothing window must be >= 1, got %d", r.Smoothing.Window)
	}
	if r.Smoothing.ConfidenceGate < 0 || r.Smoothing.ConfidenceGate > 1 {
		return fmt.Errorf("confidence gate must be in [0,1], got %f", r.Smoothing.ConfidenceGate)
	}
	if r.Smoothing.GapFrames < 1 {
		return fmt.Errorf("gap frames must be >= 1, got %d", r.Smoothing.GapFrames)
	}
	if r.BicepCurl.ElbowMin >= r.BicepCurl.ElbowMax {
		return fmt.Errorf("bicep curl elbow range is empty: [%f, %f]",
			r.BicepCurl.ElbowMin, r.BicepCurl.ElbowMax)
	}
	if r.Squat.DepthAngle >= r.Squat.StandingAngle {
		return fmt.Errorf("squat depth angle %f must be below standing angle %f",
			r.Squat.DepthAngle, r.Squat.StandingAngle)
	}
	return nil
}

// ValidExercise reports whether the configured exercise selector has a
// matching evaluator.
func ValidExercise(ex models.Exercise) bool {
	switch ex {
	case models.ExerciseBicepCurl, models.ExerciseLateralRaise, models.ExerciseSquat:
		return true
	}
	return false
}
