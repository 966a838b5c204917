package services

import (
	"time"

	"go.uber.org/zap"

	"github.com/drelsherif/shaky/internal/session"
)

// Scheduler periodically prunes abandoned in-memory sessions so a kiosk
// deployment does not accumulate half-finished assessments.
type Scheduler struct {
	log      *zap.Logger
	sessions *session.Manager
	maxIdle  time.Duration
}

func NewScheduler(log *zap.Logger, sessions *session.Manager, maxIdle time.Duration) *Scheduler {
	return &Scheduler{
		log:      log,
		sessions: sessions,
		maxIdle:  maxIdle,
	}
}

// Start runs the scheduler in a goroutine.
func (s *Scheduler) Start() {
	s.log.Info("Starting session janitor", zap.Duration("max_idle", s.maxIdle))
	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for {
			<-ticker.C
			s.runPrune()
		}
	}()
}

func (s *Scheduler) runPrune() {
	pruned := s.sessions.PruneIdle(s.maxIdle)
	if pruned > 0 {
		s.log.Info("Pruned idle sessions",
			zap.Int("pruned", pruned),
			zap.Int("remaining", s.sessions.Len()),
		)
	}
}
