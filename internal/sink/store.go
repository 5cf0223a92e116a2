package sink

import (
	"context"
	"time"

	"github.com/Yogeshkharb111/Form-Correctness-Detection-Using-Pose-Estimation/internal/database"
	"github.com/Yogeshkharb111/Form-Correctness-Detection-Using-Pose-Estimation/internal/models"
)

// Store persists rule violations as frame events of a session. Clean
// frames are not stored; the session row carries the aggregate counters.
type Store struct {
	db        *database.DB
	sessionID string
}

func NewStore(db *database.DB, sessionID string) *Store {
	return &Store{db: db, sessionID: sessionID}
}

func (s *Store) Write(rec *models.MetricsRecord, _ *models.SmoothedFrame) error {
	if len(rec.Reasons) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	return s.db.InsertFrameEvent(ctx, &models.FrameEvent{
		SessionID:  s.sessionID,
		FrameIndex: rec.FrameIndex,
		Reasons:    rec.Reasons,
		ElbowAngle: rec.ElbowAngle,
		BackTilt:   rec.BackTilt,
		KneeAngle:  rec.KneeAngle,
	})
}
