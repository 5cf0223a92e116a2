package services

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Yogeshkharb111/Form-Correctness-Detection-Using-Pose-Estimation/internal/models"
)

// VideoSource runs the Python detector over a whole video file in batch
// mode and yields one Frame per decoded video frame from its stdout.
// It implements the pipeline's Source interface for offline analysis.
type VideoSource struct {
	cmd     *exec.Cmd
	scanner *bufio.Scanner
	log     *logrus.Entry
	started bool
	command string
	model   string
	video   string
}

func NewVideoSource(command, model, videoPath string) *VideoSource {
	return &VideoSource{
		command: command,
		model:   model,
		video:   videoPath,
		log:     logrus.WithField("component", "videosource"),
	}
}

func (v *VideoSource) start(ctx context.Context) error {
	parts := strings.Fields(v.command)
	if len(parts) == 0 {
		return fmt.Errorf("detector command is empty")
	}
	args := append(parts[1:], "--video", v.video, "--model", v.model)
	v.cmd = exec.CommandContext(ctx, parts[0], args...)

	stdout, err := v.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := v.cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	go func() {
		sc := bufio.NewScanner(stderr)
		for sc.Scan() {
			v.log.Debug("detector: " + sc.Text())
		}
	}()

	if err := v.cmd.Start(); err != nil {
		return fmt.Errorf("spawn detector: %w", err)
	}

	v.scanner = bufio.NewScanner(stdout)
	v.scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	v.started = true
	v.log.WithField("video", v.video).Info("decoding video through pose detector")
	return nil
}

func (v *VideoSource) Next(ctx context.Context) (*models.Frame, error) {
	if !v.started {
		if err := v.start(ctx); err != nil {
			return nil, err
		}
	}
	if !v.scanner.Scan() {
		if err := v.scanner.Err(); err != nil {
			return nil, err
		}
		if err := v.cmd.Wait(); err != nil && ctx.Err() == nil {
			return nil, fmt.Errorf("detector exited: %w", err)
		}
		return nil, io.EOF
	}

	var res poseResult
	if err := json.Unmarshal(v.scanner.Bytes(), &res); err != nil {
		return nil, fmt.Errorf("bad detector output: %w", err)
	}
	return res.toFrame(), nil
}

// PoseFileSource replays pose landmarks that were extracted earlier (the
// detector's JSONL export). Used for offline re-analysis and in CI, where
// no Python runtime is available.
type PoseFileSource struct {
	f       *os.File
	scanner *bufio.Scanner
}

func NewPoseFileSource(path string) (*PoseFileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return &PoseFileSource{f: f, scanner: scanner}, nil
}

func (p *PoseFileSource) Next(_ context.Context) (*models.Frame, error) {
	for p.scanner.Scan() {
		line := strings.TrimSpace(p.scanner.Text())
		if line == "" {
			continue
		}
		var res poseResult
		if err := json.Unmarshal([]byte(line), &res); err != nil {
			return nil, fmt.Errorf("bad pose line: %w", err)
		}
		return res.toFrame(), nil
	}
	if err := p.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

func (p *PoseFileSource) Close() error {
	return p.f.Close()
}
