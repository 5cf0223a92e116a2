// Manual test client: streams the frames of a JPEG sequence (or one
// image repeated) to the analysis websocket and prints the verdicts.
//
//	go run ./test-client -addr localhost:8081 -exercise squat -image frame.jpg -n 50
package main

import (
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gorilla/websocket"
)

type frameMessage struct {
	FrameData      string `json:"frame_data"`
	TimestampMS    int64  `json:"timestamp_ms"`
	SequenceNumber int    `json:"sequence_number"`
}

type serverMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type verdict struct {
	Frame     int      `json:"frame"`
	IsCorrect *bool    `json:"is_correct"`
	Reasons   []string `json:"reasons"`
}

func main() {
	addr := flag.String("addr", "localhost:8081", "server address")
	exercise := flag.String("exercise", "squat", "exercise type")
	image := flag.String("image", "", "JPEG file, or a directory of numbered JPEGs")
	count := flag.Int("n", 30, "frames to send when -image is a single file")
	fps := flag.Int("fps", 15, "send rate")
	flag.Parse()

	frames, err := loadFrames(*image, *count)
	if err != nil {
		log.Fatalf("loading frames: %v", err)
	}

	u := url.URL{
		Scheme:   "ws",
		Host:     *addr,
		Path:     "/ws/analyze",
		RawQuery: "exercise=" + *exercise,
	}
	log.Printf("connecting to %s", u.String())
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	done := make(chan struct{})
	go readVerdicts(conn, done)

	interval := time.Second / time.Duration(*fps)
	start := time.Now()
	for i, jpeg := range frames {
		msg := frameMessage{
			FrameData:      base64.StdEncoding.EncodeToString(jpeg),
			TimestampMS:    time.Since(start).Milliseconds(),
			SequenceNumber: i,
		}
		if err := conn.WriteJSON(msg); err != nil {
			log.Fatalf("send frame %d: %v", i, err)
		}
		time.Sleep(interval)
	}

	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	select {
	case <-done:
	case <-time.After(3 * time.Second):
	}
}

func readVerdicts(conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	for {
		var msg serverMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		switch msg.Type {
		case "verdict":
			var v verdict
			if err := json.Unmarshal(msg.Payload, &v); err != nil {
				log.Printf("bad verdict payload: %v", err)
				continue
			}
			state := "?"
			if v.IsCorrect != nil {
				if *v.IsCorrect {
					state = "OK"
				} else {
					state = "BAD"
				}
			}
			fmt.Printf("frame %4d  %-3s  %v\n", v.Frame, state, v.Reasons)
		case "error":
			log.Printf("server error: %s", msg.Payload)
		}
	}
}

// loadFrames reads either one JPEG (repeated count times) or every .jpg
// in a directory, sorted by name.
func loadFrames(path string, count int) ([][]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("-image is required")
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		frames := make([][]byte, count)
		for i := range frames {
			frames[i] = data
		}
		return frames, nil
	}

	matches, err := filepath.Glob(filepath.Join(path, "*.jpg"))
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no .jpg files in %s", path)
	}
	sort.Strings(matches)

	var frames [][]byte
	for _, m := range matches {
		data, err := os.ReadFile(m)
		if err != nil {
			return nil, err
		}
		frames = append(frames, data)
	}
	return frames, nil
}
