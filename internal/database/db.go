package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"

	"github.com/Yogeshkharb111/Form-Correctness-Detection-Using-Pose-Estimation/internal/models"
)

//go:embed migrations/*.sql
var migrations embed.FS

// DB wraps the pgx pool and the queries the handlers and sinks need.
type DB struct {
	pool *pgxpool.Pool
}

// Connect opens the pool and brings the schema up to date.
func Connect(ctx context.Context, dsn string) (*DB, error) {
	if err := migrate(dsn); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MaxConnLifetime = 5 * time.Minute

	pool, err := pgxpool.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	logrus.Info("database initialized")
	return &DB{pool: pool}, nil
}

// migrate runs goose over a database/sql connection; goose needs the
// stdlib driver, the rest of the code uses the pool directly.
func migrate(dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.Up(db, "migrations")
}

func (d *DB) Close() {
	if d != nil && d.pool != nil {
		d.pool.Close()
		logrus.Info("database closed")
	}
}

func (d *DB) Ping(ctx context.Context) error {
	return d.pool.Ping(ctx)
}

func (d *DB) CreateUser(ctx context.Context, email, username, passwordHash string) (*models.User, error) {
	u := &models.User{Email: email, Username: username}
	err := d.pool.QueryRow(ctx,
		`INSERT INTO users (email, username, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		email, username, passwordHash,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (d *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u := &models.User{}
	err := d.pool.QueryRow(ctx,
		`SELECT id, email, username, password_hash, created_at
		 FROM users WHERE email = $1`,
		email,
	).Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (d *DB) CreateSession(ctx context.Context, s *models.AnalysisSession) error {
	_, err := d.pool.Exec(ctx,
		`INSERT INTO analysis_sessions (id, user_id, exercise, status, notes)
		 VALUES ($1, $2, $3, $4, $5)`,
		s.ID, s.UserID, string(s.Exercise), s.Status, s.Notes)
	return err
}

func (d *DB) CloseSession(ctx context.Context, id string, framesTotal, framesCorrect, framesUnscored int) error {
	_, err := d.pool.Exec(ctx,
		`UPDATE analysis_sessions
		 SET status = 'done', end_time = now(),
		     frames_total = $2, frames_correct = $3, frames_unscored = $4
		 WHERE id = $1`,
		id, framesTotal, framesCorrect, framesUnscored)
	return err
}

func (d *DB) ListSessions(ctx context.Context, userID int) ([]models.AnalysisSession, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT id, user_id, exercise, start_time, end_time, status,
		        frames_total, frames_correct, frames_unscored, notes
		 FROM analysis_sessions
		 WHERE user_id = $1
		 ORDER BY start_time DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []models.AnalysisSession
	for rows.Next() {
		var s models.AnalysisSession
		var exercise string
		if err := rows.Scan(&s.ID, &s.UserID, &exercise, &s.StartTime, &s.EndTime,
			&s.Status, &s.FramesTotal, &s.FramesCorrect, &s.FramesUnscored, &s.Notes); err != nil {
			return nil, err
		}
		s.Exercise = models.Exercise(exercise)
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (d *DB) GetSession(ctx context.Context, id string) (*models.AnalysisSession, error) {
	var s models.AnalysisSession
	var exercise string
	err := d.pool.QueryRow(ctx,
		`SELECT id, user_id, exercise, start_time, end_time, status,
		        frames_total, frames_correct, frames_unscored, notes
		 FROM analysis_sessions WHERE id = $1`,
		id,
	).Scan(&s.ID, &s.UserID, &exercise, &s.StartTime, &s.EndTime,
		&s.Status, &s.FramesTotal, &s.FramesCorrect, &s.FramesUnscored, &s.Notes)
	if err != nil {
		return nil, err
	}
	s.Exercise = models.Exercise(exercise)
	return &s, nil
}

func (d *DB) InsertFrameEvent(ctx context.Context, e *models.FrameEvent) error {
	reasons := make([]string, len(e.Reasons))
	for i, r := range e.Reasons {
		reasons[i] = string(r)
	}
	_, err := d.pool.Exec(ctx,
		`INSERT INTO frame_events (session_id, frame_index, reasons, elbow_angle, back_tilt, knee_angle)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		e.SessionID, e.FrameIndex, strings.Join(reasons, ";"),
		e.ElbowAngle, e.BackTilt, e.KneeAngle)
	return err
}

// ViolationCounts aggregates frame events per reason code for a session.
func (d *DB) ViolationCounts(ctx context.Context, sessionID string) (map[models.ReasonCode]int, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT reasons FROM frame_events WHERE session_id = $1`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.ReasonCode]int)
	for rows.Next() {
		var joined string
		if err := rows.Scan(&joined); err != nil {
			return nil, err
		}
		for _, r := range strings.Split(joined, ";") {
			if r != "" {
				counts[models.ReasonCode(r)]++
			}
		}
	}
	return counts, rows.Err()
}
