package models

// Wire types for the websocket analysis endpoint.

type WSMessage struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	ClientID  string      `json:"client_id,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// WSFrame is what a live client sends per captured frame: a JPEG payload
// plus its position in the stream.
type WSFrame struct {
	FrameData      string `json:"frame_data"` // base64 JPEG
	TimestampMS    int64  `json:"timestamp_ms"`
	SequenceNumber int    `json:"sequence_number,omitempty"`
}

// VerdictMessage is the per-frame answer streamed back to the client.
type VerdictMessage struct {
	FrameIndex    int           `json:"frame"`
	Exercise      Exercise      `json:"exercise"`
	Correct       *bool         `json:"is_correct"`
	Reasons       []ReasonCode  `json:"reasons,omitempty"`
	Metrics       MetricsRecord `json:"metrics"`
	Overlay       *OverlayFrame `json:"overlay,omitempty"`
	InferenceMS   float64       `json:"inference_time_ms"`
	TimestampMS   int64         `json:"timestamp_ms"`
}

// OverlayFrame carries draw commands for the external annotator: skeleton
// segments, joint dots and the verdict label. Coordinates are normalized.
type OverlayFrame struct {
	FrameIndex int              `json:"frame"`
	Segments   []OverlaySegment `json:"segments"`
	Points     []OverlayPoint   `json:"points"`
	Label      string           `json:"label"`
	LabelOK    bool             `json:"label_ok"`
	Lines      []string         `json:"lines,omitempty"`
}

type OverlaySegment struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

type OverlayPoint struct {
	Joint string  `json:"joint"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Stale bool    `json:"stale,omitempty"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

type HealthStatus struct {
	Status        string `json:"status"`
	Detector      bool   `json:"detector"`
	Database      bool   `json:"database"`
	ActiveClients int    `json:"active_clients"`
	Version       string `json:"version,omitempty"`
}
