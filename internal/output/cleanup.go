package output

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/heliograph/heliograph/consts"
	"github.com/heliograph/heliograph/pkg/logger"
)

const (
	// DefaultRetentionDays is the default number of days to retain artifacts
	DefaultRetentionDays = 90
	// CleanupSchedule is the cron schedule for artifact cleanup (daily at 3 AM)
	CleanupSchedule = "0 3 * * *"
)

// RetentionService removes artifacts older than the retention period
type RetentionService struct {
	writer        *Writer
	cron          *cron.Cron
	retentionDays int
	entryID       cron.EntryID
	mu            sync.RWMutex
}

// NewRetentionService creates a retention service over the writer's directory
func NewRetentionService(writer *Writer, retentionDays int) *RetentionService {
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}

	return &RetentionService{
		writer:        writer,
		cron:          cron.New(),
		retentionDays: retentionDays,
	}
}

// Start schedules the periodic cleanup and runs one pass immediately
func (s *RetentionService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entryID, err := s.cron.AddFunc(CleanupSchedule, s.cleanup)
	if err != nil {
		logger.Error("Failed to schedule artifact cleanup", zap.Error(err))
		return err
	}

	s.entryID = entryID
	s.cron.Start()

	logger.Info("Artifact retention service started",
		zap.String("schedule", CleanupSchedule),
		zap.Int("retention_days", s.retentionDays),
		zap.String("dir", s.writer.Dir()),
	)

	go s.cleanup()

	return nil
}

// Stop stops the retention service gracefully
func (s *RetentionService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		logger.Info("Stopping artifact retention service")
		ctx := s.cron.Stop()
		<-ctx.Done()
		logger.Info("Artifact retention service stopped")
	}
}

// SetRetentionDays updates the retention period (takes effect on next cleanup)
func (s *RetentionService) SetRetentionDays(days int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if days <= 0 {
		days = DefaultRetentionDays
	}
	s.retentionDays = days
	logger.Info("Artifact retention days updated", zap.Int("retention_days", days))
}

// cleanup removes PDF artifacts older than the retention period
func (s *RetentionService) cleanup() {
	s.mu.RLock()
	retentionDays := s.retentionDays
	s.mu.RUnlock()

	logger.Info("Starting artifact cleanup", zap.Int("retention_days", retentionDays))

	startTime := time.Now()
	cutoff := startTime.AddDate(0, 0, -retentionDays)

	entries, err := os.ReadDir(s.writer.Dir())
	if err != nil {
		if os.IsNotExist(err) {
			return
		}
		logger.Error("Failed to read artifact directory", zap.Error(err))
		return
	}

	var deletedCount int64
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), consts.ReportExtension) {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		path := filepath.Join(s.writer.Dir(), entry.Name())
		if err := os.Remove(path); err != nil {
			logger.Error("Failed to delete expired artifact",
				zap.String("path", path),
				zap.Error(err),
			)
			continue
		}
		deletedCount++
	}

	logger.Info("Artifact cleanup completed",
		zap.Int64("deleted_count", deletedCount),
		zap.Int("retention_days", retentionDays),
		zap.Duration("duration", time.Since(startTime)),
	)
}
