package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/florapedia/api/internal/model"
	"gorm.io/gorm"
)

// MaintenanceScheduler runs periodic housekeeping: expired and revoked
// refresh tokens are pruned, and the moderation backlog is sampled so the
// status endpoint can report how stale the review queue is.
type MaintenanceScheduler struct {
	db       *gorm.DB
	interval time.Duration
	running  bool
	mu       sync.Mutex
	stopChan chan struct{}

	lastRun       time.Time
	prunedTokens  int64
	pendingCount  int64
	oldestPending time.Duration
}

type SchedulerConfig struct {
	Interval time.Duration
}

func NewMaintenanceScheduler(db *gorm.DB, cfg SchedulerConfig) *MaintenanceScheduler {
	if cfg.Interval == 0 {
		cfg.Interval = time.Hour
	}

	return &MaintenanceScheduler{
		db:       db,
		interval: cfg.Interval,
		stopChan: make(chan struct{}),
	}
}

func (s *MaintenanceScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	log.Printf("[Maintenance] Starting with interval %v", s.interval)

	// One pass at startup so status is populated immediately
	s.runOnce()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[Maintenance] Context cancelled, stopping")
			s.setRunning(false)
			return
		case <-s.stopChan:
			log.Println("[Maintenance] Stop requested")
			s.setRunning(false)
			return
		case <-ticker.C:
			s.runOnce()
		}
	}
}

func (s *MaintenanceScheduler) Stop() {
	close(s.stopChan)
}

func (s *MaintenanceScheduler) runOnce() {
	pruned := s.pruneRefreshTokens()
	pendingCount, oldest := s.sampleBacklog()

	s.mu.Lock()
	s.lastRun = time.Now()
	s.prunedTokens += pruned
	s.pendingCount = pendingCount
	s.oldestPending = oldest
	s.mu.Unlock()

	if pruned > 0 {
		log.Printf("[Maintenance] Pruned %d refresh tokens", pruned)
	}
}

func (s *MaintenanceScheduler) pruneRefreshTokens() int64 {
	result := s.db.Where("revoked = true OR expires_at < ?", time.Now()).Delete(&model.RefreshToken{})
	if result.Error != nil {
		log.Printf("[Maintenance] Failed to prune refresh tokens: %v", result.Error)
		return 0
	}
	return result.RowsAffected
}

func (s *MaintenanceScheduler) sampleBacklog() (int64, time.Duration) {
	var count int64
	s.db.Model(&model.Contribution{}).Where("status = ?", model.StatusPending).Count(&count)

	if count == 0 {
		return 0, 0
	}

	var oldest model.Contribution
	err := s.db.Where("status = ?", model.StatusPending).Order("created_at ASC").First(&oldest).Error
	if err != nil {
		return count, 0
	}
	return count, time.Since(oldest.CreatedAt)
}

func (s *MaintenanceScheduler) GetStatus() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := map[string]interface{}{
		"enabled":           true,
		"running":           s.running,
		"interval":          s.interval.String(),
		"pendingCount":      s.pendingCount,
		"oldestPendingAge":  s.oldestPending.String(),
		"prunedTokensTotal": s.prunedTokens,
	}
	if !s.lastRun.IsZero() {
		status["lastRun"] = s.lastRun
	}
	return status
}

func (s *MaintenanceScheduler) setRunning(v bool) {
	s.mu.Lock()
	s.running = v
	s.mu.Unlock()
}
