package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/Yogeshkharb111/Form-Correctness-Detection-Using-Pose-Estimation/internal/analysis"
	"github.com/Yogeshkharb111/Form-Correctness-Detection-Using-Pose-Estimation/internal/models"
	"github.com/Yogeshkharb111/Form-Correctness-Detection-Using-Pose-Estimation/internal/sink"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024 * 1024 // base64 JPEG frames
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// wsClient is one live analysis connection. Frames arrive on the read
// pump, verdicts leave on the write pump; the pipeline in between is
// owned by the connection so concurrent clients never share state.
type wsClient struct {
	conn     *websocket.Conn
	send     chan []byte
	pipeline *analysis.Pipeline
	handler  *Handler
	session  *models.AnalysisSession
	log      *logrus.Entry
}

// AnalyzeWS upgrades to a websocket and streams per-frame verdicts back.
// Query params: exercise (required), session_id (optional, ties frames
// to a stored session owned by the authenticated user).
func (h *Handler) AnalyzeWS(w http.ResponseWriter, r *http.Request) {
	exercise := models.Exercise(r.URL.Query().Get("exercise"))

	var session *models.AnalysisSession
	if id := r.URL.Query().Get("session_id"); id != "" {
		userID, ok := h.userIDFromCookie(r)
		if !ok {
			http.Error(w, "Not authenticated", http.StatusUnauthorized)
			return
		}
		if h.db == nil {
			http.Error(w, "Session storage unavailable", http.StatusServiceUnavailable)
			return
		}
		s, err := h.db.GetSession(r.Context(), id)
		if err != nil || s.UserID != userID {
			http.Error(w, "Session not found", http.StatusNotFound)
			return
		}
		session = s
		if exercise == "" {
			exercise = s.Exercise
		}
	}

	if h.bridge == nil || !h.bridge.Healthy() {
		http.Error(w, "Pose detector unavailable", http.StatusServiceUnavailable)
		return
	}

	var sinks []analysis.Sink
	if session != nil {
		sinks = append(sinks, sink.NewStore(h.db, session.ID))
	}
	pipeline, err := analysis.NewPipeline(h.rules, exercise, sinks...)
	if err != nil {
		http.Error(w, "Unsupported exercise type", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Error("websocket upgrade failed")
		return
	}

	client := &wsClient{
		conn:     conn,
		send:     make(chan []byte, 32),
		pipeline: pipeline,
		handler:  h,
		session:  session,
		log: logrus.WithFields(logrus.Fields{
			"remote":   conn.RemoteAddr().String(),
			"exercise": exercise,
		}),
	}

	h.metrics.IncrementWebSocketConnections()
	client.log.Info("analysis client connected")

	go client.writePump()
	client.readPump()
}

func (c *wsClient) readPump() {
	defer c.close()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	frameIndex := 0
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.WithError(err).Warn("websocket read error")
			}
			return
		}
		c.handler.metrics.IncrementWebSocketMessages()

		var msg models.WSFrame
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendError("invalid frame message")
			continue
		}
		jpeg, err := base64.StdEncoding.DecodeString(msg.FrameData)
		if err != nil {
			c.sendError("frame_data is not valid base64")
			continue
		}
		if msg.SequenceNumber > 0 {
			frameIndex = msg.SequenceNumber
		}

		c.analyzeFrame(jpeg, frameIndex, msg.TimestampMS)
		frameIndex++
	}
}

func (c *wsClient) analyzeFrame(jpeg []byte, index int, timestampMS int64) {
	metrics := c.handler.metrics
	metrics.IncrementFrames()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	start := time.Now()
	frame, err := c.handler.bridge.Detect(ctx, jpeg, index, timestampMS)
	if err != nil {
		metrics.IncrementErrors()
		c.log.WithError(err).WithField("frame", index).Warn("detection failed")
		c.sendError("pose detection failed")
		return
	}
	metrics.RecordLatency(time.Since(start))

	rec, sf := c.pipeline.Process(frame)
	metrics.RecordVerdict(rec.Exercise, rec.Correct)
	for _, s := range c.pipeline.Sinks() {
		if err := s.Write(rec, sf); err != nil {
			c.log.WithError(err).WithField("frame", index).Warn("sink write failed")
		}
	}

	verdict := models.VerdictMessage{
		FrameIndex:  rec.FrameIndex,
		Exercise:    rec.Exercise,
		Correct:     rec.Correct,
		Reasons:     rec.Reasons,
		Metrics:     *rec,
		Overlay:     sink.BuildOverlay(rec, sf),
		InferenceMS: float64(time.Since(start).Milliseconds()),
		TimestampMS: timestampMS,
	}
	c.enqueue("verdict", verdict)
}

func (c *wsClient) sendError(msg string) {
	c.handler.metrics.IncrementWebSocketErrors()
	c.enqueue("error", models.ErrorResponse{
		Error:     msg,
		Timestamp: time.Now().UnixMilli(),
	})
}

func (c *wsClient) enqueue(msgType string, payload interface{}) {
	data, err := json.Marshal(models.WSMessage{
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		c.log.WithError(err).Error("marshal outgoing message")
		return
	}
	select {
	case c.send <- data:
	default:
		// Slow client; drop the frame rather than stall analysis.
		c.log.Warn("send buffer full, dropping message")
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *wsClient) close() {
	close(c.send)
	c.conn.Close()
	c.handler.metrics.DecrementWebSocketConnections()

	if c.session != nil && c.handler.db != nil {
		summary := c.pipeline.Summary()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.handler.db.CloseSession(ctx, c.session.ID,
			summary.Frames, summary.Correct, summary.Unscored); err != nil {
			c.log.WithError(err).Error("closing session failed")
		}
	}
	c.log.Info("analysis client disconnected")
}
