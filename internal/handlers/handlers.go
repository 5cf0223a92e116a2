package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/Yogeshkharb111/Form-Correctness-Detection-Using-Pose-Estimation/internal/config"
	"github.com/Yogeshkharb111/Form-Correctness-Detection-Using-Pose-Estimation/internal/database"
	"github.com/Yogeshkharb111/Form-Correctness-Detection-Using-Pose-Estimation/internal/models"
	"github.com/Yogeshkharb111/Form-Correctness-Detection-Using-Pose-Estimation/internal/services"
)

type Handler struct {
	db      *database.DB
	bridge  *services.PoseBridge
	metrics *services.Metrics
	rules   config.Rules
	cors    string

	mu           sync.Mutex
	userSessions map[string]int // cookie value -> user id
	startedAt    time.Time
}

func New(db *database.DB, bridge *services.PoseBridge, rules config.Rules, cors string) *Handler {
	return &Handler{
		db:           db,
		bridge:       bridge,
		metrics:      services.GetMetrics(),
		rules:        rules,
		cors:         cors,
		userSessions: make(map[string]int),
		startedAt:    time.Now(),
	}
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

func validateEmail(email string) bool {
	return emailRegex.MatchString(email) && len(email) <= 255
}

func validatePassword(password string) bool {
	if len(password) < 8 || len(password) > 72 {
		return false
	}
	hasLetter := false
	hasNumber := false
	for _, char := range password {
		if (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') {
			hasLetter = true
		}
		if char >= '0' && char <= '9' {
			hasNumber = true
		}
	}
	return hasLetter && hasNumber
}

func validateUsername(username string) bool {
	return len(username) >= 3 && len(username) <= 30 && usernameRegex.MatchString(username)
}

func (h *Handler) enableCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", h.cors)
	w.Header().Set("Access-Control-Allow-Credentials", "true")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Cookie")
	w.Header().Set("Content-Type", "application/json")
}

func (h *Handler) userIDFromCookie(r *http.Request) (int, bool) {
	cookie, err := r.Cookie("session_id")
	if err != nil {
		return 0, false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	userID, exists := h.userSessions[cookie.Value]
	return userID, exists
}

// requireDB rejects persistence endpoints when the server is running
// without a database.
func (h *Handler) requireDB(w http.ResponseWriter) bool {
	if h.db == nil {
		http.Error(w, "Persistence unavailable", http.StatusServiceUnavailable)
		return false
	}
	return true
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	h.enableCORS(w)
	if !h.requireDB(w) {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	if req.Email == "" || req.Password == "" || req.Username == "" {
		http.Error(w, "All fields are required", http.StatusBadRequest)
		return
	}
	if !validateEmail(req.Email) {
		http.Error(w, "Invalid email format", http.StatusBadRequest)
		return
	}
	if !validatePassword(req.Password) {
		http.Error(w, "Password must be 8-72 characters with at least one letter and one number", http.StatusBadRequest)
		return
	}
	if !validateUsername(req.Username) {
		http.Error(w, "Username must be 3-30 characters, alphanumeric and underscore only", http.StatusBadRequest)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logrus.WithError(err).Error("password hashing failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	user, err := h.db.CreateUser(r.Context(), req.Email, req.Username, string(hash))
	if err != nil {
		logrus.WithError(err).Warn("registration failed")
		if strings.Contains(err.Error(), "users_username_key") {
			http.Error(w, "Username already taken", http.StatusConflict)
		} else if strings.Contains(err.Error(), "users_email_key") {
			http.Error(w, "Email already registered", http.StatusConflict)
		} else {
			http.Error(w, "User already exists", http.StatusConflict)
		}
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(user)
	logrus.WithField("email", req.Email).Info("user registered")
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	h.enableCORS(w)
	if !h.requireDB(w) {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	user, err := h.db.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			http.Error(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}
		logrus.WithError(err).Error("login query failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	cookieVal := uuid.New().String()
	h.mu.Lock()
	h.userSessions[cookieVal] = user.ID
	h.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     "session_id",
		Value:    cookieVal,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   24 * 60 * 60,
	})
	json.NewEncoder(w).Encode(user)
	logrus.WithField("email", req.Email).Info("user logged in")
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	h.enableCORS(w)
	if !h.requireDB(w) {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := h.userIDFromCookie(r)
	if !ok {
		http.Error(w, "Not authenticated", http.StatusUnauthorized)
		return
	}

	var req models.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if !config.ValidExercise(req.Exercise) {
		http.Error(w, "Unsupported exercise type", http.StatusBadRequest)
		return
	}

	session := &models.AnalysisSession{
		ID:       uuid.New().String(),
		UserID:   userID,
		Exercise: req.Exercise,
		Status:   "active",
		Notes:    req.Notes,
	}
	if err := h.db.CreateSession(r.Context(), session); err != nil {
		logrus.WithError(err).Error("create session failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(session)
}

// CloseSession marks a session done. The websocket path closes its
// session with final counters on disconnect; this endpoint covers
// clients that never established the stream.
func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	h.enableCORS(w)
	if !h.requireDB(w) {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := h.userIDFromCookie(r)
	if !ok {
		http.Error(w, "Not authenticated", http.StatusUnauthorized)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}

	session, err := h.db.GetSession(r.Context(), id)
	if err != nil || session.UserID != userID {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	if err := h.db.CloseSession(r.Context(), id,
		session.FramesTotal, session.FramesCorrect, session.FramesUnscored); err != nil {
		logrus.WithError(err).Error("close session failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	h.enableCORS(w)
	if !h.requireDB(w) {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := h.userIDFromCookie(r)
	if !ok {
		http.Error(w, "Not authenticated", http.StatusUnauthorized)
		return
	}

	sessions, err := h.db.ListSessions(r.Context(), userID)
	if err != nil {
		logrus.WithError(err).Error("list sessions failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(sessions)
}

func (h *Handler) SessionReport(w http.ResponseWriter, r *http.Request) {
	h.enableCORS(w)
	if !h.requireDB(w) {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := h.userIDFromCookie(r)
	if !ok {
		http.Error(w, "Not authenticated", http.StatusUnauthorized)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}

	session, err := h.db.GetSession(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			http.Error(w, "Session not found", http.StatusNotFound)
			return
		}
		logrus.WithError(err).Error("get session failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if session.UserID != userID {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	counts, err := h.db.ViolationCounts(r.Context(), id)
	if err != nil {
		logrus.WithError(err).Error("violation counts failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	report := models.SessionReport{
		Session:        *session,
		ViolationCount: counts,
	}
	if scored := session.FramesTotal - session.FramesUnscored; scored > 0 {
		report.CorrectRatio = float64(session.FramesCorrect) / float64(scored)
	}
	json.NewEncoder(w).Encode(report)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.enableCORS(w)
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	dbUp := false
	if h.db != nil {
		dbUp = h.db.Ping(r.Context()) == nil
	}

	json.NewEncoder(w).Encode(models.HealthStatus{
		Status:        "healthy",
		Detector:      h.bridge != nil && h.bridge.Healthy(),
		Database:      dbUp,
		ActiveClients: int(h.metrics.GetWebSocketConnections()),
		Version:       "1.0",
	})
}

func (h *Handler) Metrics(w http.ResponseWriter, r *http.Request) {
	h.enableCORS(w)
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	payload := map[string]interface{}{
		"total_frames":   h.metrics.GetTotalFrames(),
		"total_errors":   h.metrics.GetTotalErrors(),
		"avg_latency_ms": h.metrics.GetAvgLatency(),
		"verdicts":       h.metrics.VerdictSnapshot(),
		"websocket":      h.metrics.GetWebSocketMetrics(),
		"uptime_sec":     int(time.Since(h.startedAt).Seconds()),
		"timestamp":      time.Now().Format(time.RFC3339),
	}
	if h.bridge != nil {
		payload["detector"] = h.bridge.Stats()
	}
	json.NewEncoder(w).Encode(payload)
}
