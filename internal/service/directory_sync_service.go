package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"psychiatry-booking/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Timeout for one database read plus cache write
const directorySyncTimeout = 5 * time.Second

// DirectorySyncService keeps the cached psychiatrist directory warm.
// It fills the cache before the server accepts traffic and then refreshes
// it on a fixed interval until Stop is called.
type DirectorySyncService struct {
	db               *gorm.DB
	psychiatristRepo repository.PsychiatristRepository
	directoryCache   DirectoryCache
	log              *logrus.Logger
	interval         time.Duration

	// Graceful shutdown
	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

// NewDirectorySyncService starts the refresh loop when interval is positive.
// Call Stop() during graceful shutdown.
func NewDirectorySyncService(
	db *gorm.DB,
	psychiatristRepo repository.PsychiatristRepository,
	directoryCache DirectoryCache,
	log *logrus.Logger,
	interval time.Duration,
) *DirectorySyncService {
	svc := &DirectorySyncService{
		db:               db,
		psychiatristRepo: psychiatristRepo,
		directoryCache:   directoryCache,
		log:              log,
		interval:         interval,
		stopChan:         make(chan struct{}),
	}

	if interval > 0 {
		svc.wg.Add(1)
		go svc.refreshLoop()
	}

	return svc
}

// Stop gracefully shuts down the service.
// Safe to call multiple times.
func (s *DirectorySyncService) Stop() {
	if s.stopped.CompareAndSwap(false, true) {
		close(s.stopChan)
		s.wg.Wait()
		s.log.Info("DirectorySyncService stopped")
	}
}

// SyncOnStartup loads the directory from the database into the cache.
func (s *DirectorySyncService) SyncOnStartup(ctx context.Context) error {
	startTime := time.Now()

	count, err := s.sync(ctx)
	if err != nil {
		s.log.Warnf("Failed to sync psychiatrist directory: %+v", err)
		return err
	}

	s.log.WithFields(logrus.Fields{
		"psychiatrists": count,
		"duration_ms":   time.Since(startTime).Milliseconds(),
	}).Info("Psychiatrist directory cached")
	return nil
}

func (s *DirectorySyncService) sync(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, directorySyncTimeout)
	defer cancel()

	version, err := s.directoryCache.Version(ctx)
	if err != nil {
		return 0, err
	}
	psychiatrists, err := s.psychiatristRepo.FindAll(ctx, s.db)
	if err != nil {
		return 0, err
	}
	stored, err := s.directoryCache.Set(ctx, version, psychiatrists)
	if err != nil {
		return 0, err
	}
	if !stored {
		// A write landed during the read; the next miss reloads.
		return 0, nil
	}
	return len(psychiatrists), nil
}

func (s *DirectorySyncService) refreshLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			s.log.Debug("Directory refresh goroutine stopping")
			return
		case <-ticker.C:
			if _, err := s.sync(context.Background()); err != nil {
				s.log.Warnf("Failed to refresh psychiatrist directory: %+v", err)
			}
		}
	}
}
