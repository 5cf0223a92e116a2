package services

import (
	"bufio"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Yogeshkharb111/Form-Correctness-Detection-Using-Pose-Estimation/internal/models"
)

const detectTimeout = 5 * time.Second

// PoseBridge manages the Python MediaPipe subprocess in interactive
// mode: JPEG frames go in as JSON lines on stdin, landmark results come
// back on stdout. Python stderr is relayed into our logs.
//
// One bridge serves one frame at a time; roundtrips are serialized, which
// matches the strictly sequential per-video ordering the core requires.
type PoseBridge struct {
	command string
	model   string

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	cancel context.CancelFunc

	mu      sync.Mutex // serializes Detect roundtrips
	results chan poseResult
	wg      sync.WaitGroup
	active  atomic.Bool

	frameCount   atomic.Int64
	errorCount   atomic.Int64
	totalLatency atomic.Int64

	log *logrus.Entry
}

func NewPoseBridge(command, model string) *PoseBridge {
	return &PoseBridge{
		command: command,
		model:   model,
		log:     logrus.WithField("component", "posebridge"),
	}
}

// Start spawns the detector process and the reader goroutines.
func (b *PoseBridge) Start(ctx context.Context) error {
	if b.active.Load() {
		return fmt.Errorf("pose bridge already started")
	}

	parts := strings.Fields(b.command)
	if len(parts) == 0 {
		return fmt.Errorf("detector command is empty")
	}
	args := append(parts[1:], "--interactive", "--model", b.model)

	ctx, b.cancel = context.WithCancel(ctx)
	b.cmd = exec.CommandContext(ctx, parts[0], args...)

	stdin, err := b.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := b.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := b.cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}

	if err := b.cmd.Start(); err != nil {
		return fmt.Errorf("spawn detector: %w", err)
	}

	b.stdin = stdin
	b.results = make(chan poseResult, 10)
	b.active.Store(true)

	b.wg.Add(2)
	go b.readResults(stdout)
	go b.relayStderr(stderr)
	go b.waitProcess(ctx)

	b.log.WithFields(logrus.Fields{
		"command": b.command,
		"model":   b.model,
	}).Info("pose detector started")
	return nil
}

// Detect sends one JPEG frame to the detector and waits for its landmark
// result.
func (b *PoseBridge) Detect(ctx context.Context, jpeg []byte, index int, timestampMS int64) (*models.Frame, error) {
	if !b.active.Load() {
		return nil, fmt.Errorf("pose bridge not running")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	req := poseRequest{
		FrameData:   base64.StdEncoding.EncodeToString(jpeg),
		Frame:       index,
		TimestampMS: timestampMS,
	}
	line, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	line = append(line, '\n')

	start := time.Now()
	if _, err := b.stdin.Write(line); err != nil {
		b.errorCount.Add(1)
		return nil, fmt.Errorf("write frame to detector: %w", err)
	}

	deadline := time.After(detectTimeout)
	for {
		select {
		case res, ok := <-b.results:
			if !ok {
				return nil, fmt.Errorf("detector exited")
			}
			// A result for an earlier frame is the leftover of a
			// roundtrip that timed out. Accepting it would leave every
			// later frame answered with the previous frame's landmarks.
			if res.Frame != index {
				b.log.WithFields(logrus.Fields{
					"want": index,
					"got":  res.Frame,
				}).Debug("discarding stale detector result")
				continue
			}
			b.frameCount.Add(1)
			b.totalLatency.Add(time.Since(start).Milliseconds())
			if res.Error != "" {
				b.errorCount.Add(1)
				return nil, fmt.Errorf("detector: %s", res.Error)
			}
			return res.toFrame(), nil
		case <-deadline:
			b.errorCount.Add(1)
			return nil, fmt.Errorf("detector timed out after %v", detectTimeout)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (b *PoseBridge) readResults(stdout io.Reader) {
	defer b.wg.Done()
	defer close(b.results)

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		var res poseResult
		if err := json.Unmarshal(scanner.Bytes(), &res); err != nil {
			b.log.WithError(err).Warn("bad detector output line, skipping")
			b.errorCount.Add(1)
			continue
		}
		select {
		case b.results <- res:
		default:
			// Consumer fell behind; drop the oldest pending result.
			select {
			case <-b.results:
			default:
			}
			b.results <- res
		}
	}
}

func (b *PoseBridge) relayStderr(stderr io.Reader) {
	defer b.wg.Done()

	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.Contains(line, "[ERROR]") || strings.Contains(line, "[CRITICAL]"):
			b.log.Error("detector: " + line)
		case strings.Contains(line, "[WARNING]"):
			b.log.Warn("detector: " + line)
		default:
			b.log.Debug("detector: " + line)
		}
	}
}

func (b *PoseBridge) waitProcess(ctx context.Context) {
	err := b.cmd.Wait()
	b.active.Store(false)
	if err != nil && ctx.Err() == nil {
		b.log.WithError(err).Error("detector process exited unexpectedly")
		return
	}
	b.log.Debug("detector process exited")
}

// Healthy reports whether the detector process is up.
func (b *PoseBridge) Healthy() bool {
	return b.active.Load()
}

// Stop closes stdin (the detector exits on EOF), then cancels the
// process context and waits for the reader goroutines.
func (b *PoseBridge) Stop() {
	if !b.active.Load() {
		return
	}
	b.active.Store(false)
	if b.stdin != nil {
		b.stdin.Close()
	}

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		b.log.Warn("detector did not exit in time, killing")
	}
	if b.cancel != nil {
		b.cancel()
	}
	b.log.Info("pose detector stopped")
}

// BridgeStats is a snapshot of the bridge counters.
type BridgeStats struct {
	Frames       int64   `json:"frames"`
	Errors       int64   `json:"errors"`
	AvgLatencyMS float64 `json:"avg_latency_ms"`
}

func (b *PoseBridge) Stats() BridgeStats {
	frames := b.frameCount.Load()
	s := BridgeStats{Frames: frames, Errors: b.errorCount.Load()}
	if frames > 0 {
		s.AvgLatencyMS = float64(b.totalLatency.Load()) / float64(frames)
	}
	return s
}
