package services

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/Yogeshkharb111/Form-Correctness-Detection-Using-Pose-Estimation/internal/models"
)

// Metrics aggregates service-wide analysis counters: detector roundtrips
// and latency, per-exercise verdict tallies, and websocket health.
type Metrics struct {
	totalFrames  atomic.Int64
	totalErrors  atomic.Int64
	totalLatency atomic.Int64

	wsConnections atomic.Int64
	wsMessages    atomic.Int64
	wsErrors      atomic.Int64

	mu         sync.Mutex
	byExercise map[models.Exercise]*VerdictCounts
}

// VerdictCounts tallies how the frames of one exercise were scored
// across all sessions since startup.
type VerdictCounts struct {
	Frames    int64 `json:"frames"`
	Correct   int64 `json:"correct"`
	Incorrect int64 `json:"incorrect"`
	Unscored  int64 `json:"unscored"`
}

var (
	metricsInstance *Metrics
	metricsOnce     sync.Once
)

func NewMetrics() *Metrics {
	return &Metrics{byExercise: make(map[models.Exercise]*VerdictCounts)}
}

func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		metricsInstance = NewMetrics()
	})
	return metricsInstance
}

func (m *Metrics) IncrementFrames() {
	m.totalFrames.Add(1)
}

func (m *Metrics) IncrementErrors() {
	m.totalErrors.Add(1)
}

func (m *Metrics) RecordLatency(duration time.Duration) {
	m.totalLatency.Add(duration.Milliseconds())
}

// RecordVerdict tallies one evaluated frame under its exercise.
func (m *Metrics) RecordVerdict(ex models.Exercise, correct *bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.byExercise[ex]
	if c == nil {
		c = &VerdictCounts{}
		m.byExercise[ex] = c
	}
	c.Frames++
	switch {
	case correct == nil:
		c.Unscored++
	case *correct:
		c.Correct++
	default:
		c.Incorrect++
	}
}

// VerdictSnapshot returns a copy of the per-exercise tallies.
func (m *Metrics) VerdictSnapshot() map[models.Exercise]VerdictCounts {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[models.Exercise]VerdictCounts, len(m.byExercise))
	for ex, c := range m.byExercise {
		out[ex] = *c
	}
	return out
}

func (m *Metrics) GetTotalFrames() int64 {
	return m.totalFrames.Load()
}

func (m *Metrics) GetTotalErrors() int64 {
	return m.totalErrors.Load()
}

// GetAvgLatency is the mean detector roundtrip in milliseconds.
func (m *Metrics) GetAvgLatency() float64 {
	frames := m.totalFrames.Load()
	if frames == 0 {
		return 0
	}
	return float64(m.totalLatency.Load()) / float64(frames)
}

func (m *Metrics) IncrementWebSocketConnections() {
	m.wsConnections.Add(1)
}

func (m *Metrics) DecrementWebSocketConnections() {
	m.wsConnections.Add(-1)
}

func (m *Metrics) GetWebSocketConnections() int64 {
	return m.wsConnections.Load()
}

func (m *Metrics) IncrementWebSocketMessages() {
	m.wsMessages.Add(1)
}

func (m *Metrics) IncrementWebSocketErrors() {
	m.wsErrors.Add(1)
}

func (m *Metrics) GetWebSocketMetrics() map[string]interface{} {
	return map[string]interface{}{
		"connections": m.wsConnections.Load(),
		"messages":    m.wsMessages.Load(),
		"errors":      m.wsErrors.Load(),
	}
}
