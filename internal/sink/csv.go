// Package sink contains the consumers of per-frame metrics records: the
// CSV table, the overlay command stream for the annotator, and the
// database event store.
package sink

import (
	"encoding/csv"
	"os"
	"strconv"
	"strings"

	"github.com/Yogeshkharb111/Form-Correctness-Detection-Using-Pose-Estimation/internal/models"
)

var csvHeader = []string{
	"frame", "elbow_angle", "shoulder_level", "back_tilt",
	"knee_angle", "symmetry_score", "is_correct", "reasons",
}

// CSV appends one row per frame. Unavailable metrics become empty cells,
// never zeros, and an indeterminate verdict is an empty is_correct cell.
type CSV struct {
	f *os.File
	w *csv.Writer
}

func NewCSV(path string) (*CSV, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		f.Close()
		return nil, err
	}
	return &CSV{f: f, w: w}, nil
}

func (c *CSV) Write(rec *models.MetricsRecord, _ *models.SmoothedFrame) error {
	reasons := make([]string, len(rec.Reasons))
	for i, r := range rec.Reasons {
		reasons[i] = string(r)
	}

	verdict := ""
	if rec.Correct != nil {
		verdict = strconv.FormatBool(*rec.Correct)
	}

	return c.w.Write([]string{
		strconv.Itoa(rec.FrameIndex),
		formatMetric(rec.ElbowAngle),
		formatMetric(rec.ShoulderTilt),
		formatMetric(rec.BackTilt),
		formatMetric(rec.KneeAngle),
		formatMetric(rec.SymmetryDelta),
		verdict,
		strings.Join(reasons, ";"),
	})
}

func (c *CSV) Close() error {
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		c.f.Close()
		return err
	}
	return c.f.Close()
}

func formatMetric(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}
