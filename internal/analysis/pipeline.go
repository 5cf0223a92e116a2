package analysis

import (
	"context"
	"errors"
	"io"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/Yogeshkharb111/Form-Correctness-Detection-Using-Pose-Estimation/internal/config"
	"github.com/Yogeshkharb111/Form-Correctness-Detection-Using-Pose-Estimation/internal/models"
)

// Source supplies the finite, ordered frame sequence of one video. Next
// returns io.EOF when the stream is exhausted. A source is not
// restartable mid-stream.
type Source interface {
	Next(ctx context.Context) (*models.Frame, error)
}

// Sink consumes one metrics record (and the smoothed frame it was
// computed from) per processed frame.
type Sink interface {
	Write(rec *models.MetricsRecord, sf *models.SmoothedFrame) error
}

// Pipeline runs the strictly sequential per-video chain:
// source -> smoother -> geometry/rules -> sinks. Each Pipeline owns its
// Smoother and Evaluator state; independent videos get independent
// pipelines and may run in parallel.
type Pipeline struct {
	smoother *Smoother
	eval     Evaluator
	sinks    []Sink
	log      *logrus.Entry
	summary  Summary
}

func NewPipeline(rules config.Rules, ex models.Exercise, sinks ...Sink) (*Pipeline, error) {
	eval, err := NewEvaluator(ex, rules)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		smoother: NewSmoother(rules.Smoothing),
		eval:     eval,
		sinks:    sinks,
		log:      logrus.WithField("exercise", ex),
		summary:  newSummary(),
	}, nil
}

// Process runs one frame through smoothing and rule evaluation. Used
// directly by the live websocket path; Run loops it over a Source.
func (p *Pipeline) Process(f *models.Frame) (*models.MetricsRecord, *models.SmoothedFrame) {
	sf := p.smoother.Smooth(f)
	rec := &models.MetricsRecord{
		FrameIndex:  f.Index,
		TimestampMS: f.TimestampMS,
		Exercise:    p.eval.Exercise(),
	}
	p.eval.Evaluate(rec, sf)
	p.summary.observe(rec)
	return rec, sf
}

// Sinks exposes the configured sinks for callers that drive Process
// directly instead of through Run.
func (p *Pipeline) Sinks() []Sink { return p.sinks }

// Summary returns the aggregate over all frames processed so far.
func (p *Pipeline) Summary() Summary { return p.summary }

// Run drains the source. Cancellation is honored between frames so a
// stopped video never leaves a half-written record behind. Sink errors
// degrade the affected frame only.
func (p *Pipeline) Run(ctx context.Context, src Source) (Summary, error) {
	for {
		select {
		case <-ctx.Done():
			return p.summary, ctx.Err()
		default:
		}

		f, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return p.summary, nil
		}
		if err != nil {
			return p.summary, err
		}

		rec, sf := p.Process(f)
		for _, s := range p.sinks {
			if err := s.Write(rec, sf); err != nil {
				p.summary.SinkErrors++
				p.log.WithError(err).WithField("frame", f.Index).Warn("sink write failed")
			}
		}
	}
}

// Summary aggregates one video's worth of records, mirroring the
// min/mean/max roll-up the metrics report exposes per session.
type Summary struct {
	Frames     int
	Correct    int
	Incorrect  int
	Unscored   int
	SinkErrors int
	Violations map[models.ReasonCode]int

	elbow []float64
	back  []float64
	knee  []float64
}

func newSummary() Summary {
	return Summary{Violations: make(map[models.ReasonCode]int)}
}

func (s *Summary) observe(rec *models.MetricsRecord) {
	s.Frames++
	switch {
	case rec.Correct == nil:
		s.Unscored++
	case *rec.Correct:
		s.Correct++
	default:
		s.Incorrect++
	}
	for _, r := range rec.Reasons {
		s.Violations[r]++
	}
	if rec.ElbowAngle != nil {
		s.elbow = append(s.elbow, *rec.ElbowAngle)
	}
	if rec.BackTilt != nil {
		s.back = append(s.back, *rec.BackTilt)
	}
	if rec.KneeAngle != nil {
		s.knee = append(s.knee, *rec.KneeAngle)
	}
}

// CorrectRatio is the share of scored frames that passed.
func (s *Summary) CorrectRatio() float64 {
	scored := s.Correct + s.Incorrect
	if scored == 0 {
		return 0
	}
	return float64(s.Correct) / float64(scored)
}

// MetricStats is a min/mean/max roll-up of one metric over a video.
type MetricStats struct {
	N    int
	Min  float64
	Mean float64
	Max  float64
}

func summarize(vals []float64) MetricStats {
	if len(vals) == 0 {
		return MetricStats{}
	}
	return MetricStats{
		N:    len(vals),
		Min:  floats.Min(vals),
		Mean: stat.Mean(vals, nil),
		Max:  floats.Max(vals),
	}
}

func (s *Summary) ElbowStats() MetricStats { return summarize(s.elbow) }
func (s *Summary) BackStats() MetricStats  { return summarize(s.back) }
func (s *Summary) KneeStats() MetricStats  { return summarize(s.knee) }
