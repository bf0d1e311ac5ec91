package services

import (
	"log"
	"sync"
	"time"
)

// SnapshotScheduler invokes TakeSnapshot on a fixed cadence in a background
// goroutine. TakeSnapshot is idempotent per date, so the timer racing a manual
// snapshot request needs no extra locking.
type SnapshotScheduler struct {
	interval  time.Duration
	service   *SnapshotService
	isRunning bool
	stopChan  chan struct{}
	mutex     sync.Mutex
}

// NewSnapshotScheduler creates a scheduler that fires every interval
// (normally 24 hours).
func NewSnapshotScheduler(service *SnapshotService, interval time.Duration) *SnapshotScheduler {
	return &SnapshotScheduler{
		interval: interval,
		service:  service,
		stopChan: make(chan struct{}),
	}
}

// Start launches the background timer. Starting an already-running scheduler
// is a no-op.
func (s *SnapshotScheduler) Start() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.isRunning {
		return
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})

	go func() {
		// Wait out the alignment delay first, so a daily cadence fires at
		// midnight instead of a full interval after process start.
		timer := time.NewTimer(firstFireDelay(time.Now(), s.interval))
		defer timer.Stop()

		select {
		case <-timer.C:
			s.run()
		case <-s.stopChan:
			return
		}

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.run()
			case <-s.stopChan:
				return
			}
		}
	}()

	log.Printf("snapshot scheduler started with interval %v", s.interval)
}

func (s *SnapshotScheduler) run() {
	if _, err := s.service.TakeSnapshot(); err != nil {
		log.Printf("scheduled snapshot failed: %v", err)
	}
}

// firstFireDelay returns how long to wait before the first run. Daily and
// longer cadences align to the next local midnight, so the snapshot lands on
// the calendar-day boundary no matter when the process started; shorter
// intervals simply wait one interval.
func firstFireDelay(now time.Time, interval time.Duration) time.Duration {
	if interval < 24*time.Hour {
		return interval
	}
	midnight := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
	return midnight.Sub(now)
}

// Stop halts the background timer. Stopping a stopped scheduler is a no-op.
func (s *SnapshotScheduler) Stop() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.isRunning {
		return
	}
	s.isRunning = false
	close(s.stopChan)
	log.Printf("snapshot scheduler stopped")
}
