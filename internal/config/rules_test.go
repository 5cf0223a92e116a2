package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yogeshkharb111/Form-Correctness-Detection-Using-Pose-Estimation/internal/models"
)

func TestDefaultRulesAreValid(t *testing.T) {
	assert.NoError(t, DefaultRules().Validate())
}

func TestLoadRulesMissingFileUsesDefaults(t *testing.T) {
	rules, err := LoadRules(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultRules(), rules)
}

func TestLoadRulesEmptyPathUsesDefaults(t *testing.T) {
	rules, err := LoadRules("")
	require.NoError(t, err)
	assert.Equal(t, DefaultRules(), rules)
}

func TestLoadRulesOverridesLayerOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.toml")
	content := `
hysteresis = 4

[squat]
depth_angle = 95.0
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rules, err := LoadRules(path)
	require.NoError(t, err)

	assert.Equal(t, 4, rules.Hysteresis)
	assert.Equal(t, 95.0, rules.Squat.DepthAngle)
	// Untouched keys keep their defaults.
	assert.Equal(t, DefaultRules().Smoothing, rules.Smoothing)
	assert.Equal(t, DefaultRules().Squat.StandingAngle, rules.Squat.StandingAngle)
}

func TestLoadRulesMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.toml")
	require.NoError(t, os.WriteFile(path, []byte("hysteresis = \"two\""), 0o644))

	_, err := LoadRules(path)
	assert.Error(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Rules)
	}{
		{"negative hysteresis", func(r *Rules) { r.Hysteresis = -1 }},
		{"zero window", func(r *Rules) { r.Smoothing.Window = 0 }},
		{"gate above one", func(r *Rules) { r.Smoothing.ConfidenceGate = 1.5 }},
		{"zero gap frames", func(r *Rules) { r.Smoothing.GapFrames = 0 }},
		{"empty elbow range", func(r *Rules) { r.BicepCurl.ElbowMin = 170; r.BicepCurl.ElbowMax = 30 }},
		{"depth above standing", func(r *Rules) { r.Squat.DepthAngle = 170 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rules := DefaultRules()
			tc.mutate(&rules)
			assert.Error(t, rules.Validate())
		})
	}
}

func TestValidateAllowsZeroHysteresis(t *testing.T) {
	rules := DefaultRules()
	rules.Hysteresis = 0
	assert.NoError(t, rules.Validate())
}

func TestValidExercise(t *testing.T) {
	assert.True(t, ValidExercise(models.ExerciseBicepCurl))
	assert.True(t, ValidExercise(models.ExerciseLateralRaise))
	assert.True(t, ValidExercise(models.ExerciseSquat))
	assert.False(t, ValidExercise("deadlift"))
	assert.False(t, ValidExercise(""))
}
