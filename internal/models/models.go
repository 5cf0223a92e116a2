package models

import "time"

type User struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// AnalysisSession groups the frames of one analyzed video.
type AnalysisSession struct {
	ID             string     `json:"id"`
	UserID         int        `json:"user_id"`
	Exercise       Exercise   `json:"exercise"`
	StartTime      time.Time  `json:"start_time"`
	EndTime        *time.Time `json:"end_time,omitempty"`
	Status         string     `json:"status"`
	FramesTotal    int        `json:"frames_total"`
	FramesCorrect  int        `json:"frames_correct"`
	FramesUnscored int        `json:"frames_unscored"`
	Notes          string     `json:"notes,omitempty"`
}

// FrameEvent is one persisted rule violation.
type FrameEvent struct {
	ID         int64        `json:"id"`
	SessionID  string       `json:"session_id"`
	FrameIndex int          `json:"frame_index"`
	Reasons    []ReasonCode `json:"reasons"`
	ElbowAngle *float64     `json:"elbow_angle,omitempty"`
	BackTilt   *float64     `json:"back_tilt,omitempty"`
	KneeAngle  *float64     `json:"knee_angle,omitempty"`
	Timestamp  time.Time    `json:"timestamp"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreateSessionRequest struct {
	Exercise Exercise `json:"exercise"`
	Notes    string   `json:"notes,omitempty"`
}

// SessionReport aggregates a finished session for the frontend.
type SessionReport struct {
	Session        AnalysisSession    `json:"session"`
	ViolationCount map[ReasonCode]int `json:"violation_count"`
	CorrectRatio   float64            `json:"correct_ratio"`
}
