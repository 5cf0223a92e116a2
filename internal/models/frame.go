package models

// Exercise selects which rule evaluator runs for a video.
type Exercise string

const (
	ExerciseBicepCurl    Exercise = "bicep_curl"
	ExerciseLateralRaise Exercise = "lateral_raise"
	ExerciseSquat        Exercise = "squat"
)

// Keypoint is a detected landmark position in normalized image
// coordinates (x right, y down, origin top-left). Confidence 0 means the
// position is meaningless and must be treated as missing.
type Keypoint struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z,omitempty"`
	Confidence float64 `json:"confidence"`
}

// Frame is one decoded video frame worth of raw detector output. The
// joint map may be partial when detection failed for some landmarks.
type Frame struct {
	Index       int                 `json:"frame"`
	TimestampMS int64               `json:"timestamp_ms"`
	Joints      map[JointID]Keypoint `json:"joints"`
}

// SmoothedFrame mirrors Frame after per-joint temporal filtering.
// Confidences are carried over from the raw samples; filtering never
// fabricates confidence. Stale marks joints that have been held past the
// gap limit and must be treated as missing downstream.
type SmoothedFrame struct {
	Index       int
	TimestampMS int64
	Joints      map[JointID]Keypoint
	Stale       map[JointID]bool
}

// Usable returns the joint only when it is present, has non-zero
// confidence and is not stale.
func (sf *SmoothedFrame) Usable(id JointID) (Keypoint, bool) {
	kp, ok := sf.Joints[id]
	if !ok || kp.Confidence == 0 || sf.Stale[id] {
		return Keypoint{}, false
	}
	return kp, true
}

// ReasonCode labels one violated geometric sub-rule.
type ReasonCode string

const (
	ReasonElbowRange      ReasonCode = "ELBOW_RANGE"
	ReasonShoulderDrift   ReasonCode = "SHOULDER_DRIFT"
	ReasonWristMisaligned ReasonCode = "WRIST_MISALIGNED"
	ReasonArmNotStraight  ReasonCode = "ARM_NOT_STRAIGHT"
	ReasonAsymmetricRaise ReasonCode = "ASYMMETRIC_RAISE"
	ReasonShoulderShrug   ReasonCode = "SHOULDER_SHRUG"
	ReasonShallowSquat    ReasonCode = "SHALLOW_SQUAT"
	ReasonBackTilt        ReasonCode = "BACK_TILT"
	ReasonKneeOverToe     ReasonCode = "KNEE_OVER_TOE"
)

// MetricsRecord is the per-frame output of the rule layer. Nil metric
// pointers mean "not available for this frame" (missing joints), which is
// distinct from zero. Correct is nil when the verdict is indeterminate.
type MetricsRecord struct {
	FrameIndex  int          `json:"frame"`
	TimestampMS int64        `json:"timestamp_ms"`
	Exercise    Exercise     `json:"exercise"`

	ElbowAngle    *float64 `json:"elbow_angle,omitempty"`
	ShoulderTilt  *float64 `json:"shoulder_tilt,omitempty"`
	BackTilt      *float64 `json:"back_tilt,omitempty"`
	KneeAngle     *float64 `json:"knee_angle,omitempty"`
	WristOffset   *float64 `json:"wrist_offset,omitempty"`
	SymmetryDelta *float64 `json:"symmetry_delta,omitempty"`

	Correct *bool        `json:"is_correct,omitempty"`
	Reasons []ReasonCode `json:"reasons,omitempty"`
}

// HasReason reports whether the record carries the given violation.
func (r *MetricsRecord) HasReason(code ReasonCode) bool {
	for _, c := range r.Reasons {
		if c == code {
			return true
		}
	}
	return false
}

func Float(v float64) *float64 { return &v }

func Bool(v bool) *bool { return &v }
