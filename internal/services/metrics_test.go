package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yogeshkharb111/Form-Correctness-Detection-Using-Pose-Estimation/internal/models"
)

func TestRecordVerdictTalliesPerExercise(t *testing.T) {
	m := NewMetrics()

	m.RecordVerdict(models.ExerciseSquat, models.Bool(true))
	m.RecordVerdict(models.ExerciseSquat, models.Bool(true))
	m.RecordVerdict(models.ExerciseSquat, models.Bool(false))
	m.RecordVerdict(models.ExerciseSquat, nil)
	m.RecordVerdict(models.ExerciseBicepCurl, models.Bool(true))

	snap := m.VerdictSnapshot()
	require.Len(t, snap, 2)

	squat := snap[models.ExerciseSquat]
	assert.Equal(t, int64(4), squat.Frames)
	assert.Equal(t, int64(2), squat.Correct)
	assert.Equal(t, int64(1), squat.Incorrect)
	assert.Equal(t, int64(1), squat.Unscored)

	curl := snap[models.ExerciseBicepCurl]
	assert.Equal(t, int64(1), curl.Frames)
	assert.Equal(t, int64(1), curl.Correct)
}

func TestVerdictSnapshotIsACopy(t *testing.T) {
	m := NewMetrics()
	m.RecordVerdict(models.ExerciseSquat, models.Bool(true))

	snap := m.VerdictSnapshot()
	entry := snap[models.ExerciseSquat]
	entry.Correct = 99
	snap[models.ExerciseSquat] = entry

	fresh := m.VerdictSnapshot()
	assert.Equal(t, int64(1), fresh[models.ExerciseSquat].Correct,
		"mutating a snapshot does not touch the live tallies")
}

func TestAvgLatency(t *testing.T) {
	m := NewMetrics()
	assert.Equal(t, 0.0, m.GetAvgLatency(), "no frames yet")

	m.IncrementFrames()
	m.IncrementFrames()
	m.RecordLatency(30 * time.Millisecond)
	m.RecordLatency(50 * time.Millisecond)
	assert.InDelta(t, 40, m.GetAvgLatency(), 1e-9)
}
