package sink

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/Yogeshkharb111/Form-Correctness-Detection-Using-Pose-Estimation/internal/models"
)

// BuildOverlay turns a smoothed frame plus its verdict into draw commands
// for the external annotator: skeleton segments between usable joints,
// one dot per joint, and the verdict label. Shared by the overlay file
// sink and the websocket path.
func BuildOverlay(rec *models.MetricsRecord, sf *models.SmoothedFrame) *models.OverlayFrame {
	of := &models.OverlayFrame{FrameIndex: rec.FrameIndex}

	for _, pair := range models.Skeleton {
		a, okA := sf.Usable(pair[0])
		b, okB := sf.Usable(pair[1])
		if !okA || !okB {
			continue
		}
		of.Segments = append(of.Segments, models.OverlaySegment{
			X1: a.X, Y1: a.Y, X2: b.X, Y2: b.Y,
		})
	}

	for id, kp := range sf.Joints {
		if kp.Confidence == 0 {
			continue
		}
		of.Points = append(of.Points, models.OverlayPoint{
			Joint: id.String(),
			X:     kp.X,
			Y:     kp.Y,
			Stale: sf.Stale[id],
		})
	}

	switch {
	case rec.Correct == nil:
		of.Label = "NO POSE"
	case *rec.Correct:
		of.Label = "GOOD FORM"
		of.LabelOK = true
	default:
		of.Label = "CHECK FORM"
	}

	for _, r := range rec.Reasons {
		of.Lines = append(of.Lines, reasonText(r))
	}
	if rec.BackTilt != nil {
		of.Lines = append(of.Lines, fmt.Sprintf("back tilt %.1f deg", *rec.BackTilt))
	}
	if rec.ElbowAngle != nil {
		of.Lines = append(of.Lines, fmt.Sprintf("elbow %.1f deg", *rec.ElbowAngle))
	}
	if rec.KneeAngle != nil {
		of.Lines = append(of.Lines, fmt.Sprintf("knee %.1f deg", *rec.KneeAngle))
	}
	return of
}

func reasonText(r models.ReasonCode) string {
	switch r {
	case models.ReasonElbowRange:
		return "elbow angle out of range"
	case models.ReasonShoulderDrift:
		return "shoulder drifting from start position"
	case models.ReasonWristMisaligned:
		return "wrist not under elbow"
	case models.ReasonArmNotStraight:
		return "arm not straight"
	case models.ReasonAsymmetricRaise:
		return "arms raised unevenly"
	case models.ReasonShoulderShrug:
		return "shoulders shrugged"
	case models.ReasonShallowSquat:
		return "squat not deep enough"
	case models.ReasonBackTilt:
		return "back leaning too far"
	case models.ReasonKneeOverToe:
		return "knee past toe"
	default:
		return string(r)
	}
}

// OverlayFile streams overlay commands as JSON lines, one per frame.
type OverlayFile struct {
	f *os.File
	w *bufio.Writer
}

func NewOverlayFile(path string) (*OverlayFile, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &OverlayFile{f: f, w: bufio.NewWriter(f)}, nil
}

func (o *OverlayFile) Write(rec *models.MetricsRecord, sf *models.SmoothedFrame) error {
	line, err := json.Marshal(BuildOverlay(rec, sf))
	if err != nil {
		return err
	}
	if _, err := o.w.Write(line); err != nil {
		return err
	}
	return o.w.WriteByte('\n')
}

func (o *OverlayFile) Close() error {
	if err := o.w.Flush(); err != nil {
		o.f.Close()
		return err
	}
	return o.f.Close()
}
