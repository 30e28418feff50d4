package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/niveshipo/backend/services"
	"github.com/sirupsen/logrus"
)

// MarketSyncJob runs the AI market sync on a fixed interval. The ticker is
// explicitly owned: Start launches it, Stop tears it down, and the job's
// lifetime is tied to the server's rather than an ambient global timer.
type MarketSyncJob struct {
	ListingService *services.ListingService
	Interval       time.Duration

	mutex   sync.Mutex
	stopCh  chan struct{}
	running bool
}

func NewMarketSyncJob(listingService *services.ListingService, interval time.Duration) *MarketSyncJob {
	return &MarketSyncJob{
		ListingService: listingService,
		Interval:       interval,
	}
}

// Start runs one cycle immediately, then repeats on the configured interval
// until Stop is called. Calling Start on a running job is a no-op.
func (j *MarketSyncJob) Start() {
	j.mutex.Lock()
	if j.running {
		j.mutex.Unlock()
		return
	}
	j.running = true
	j.stopCh = make(chan struct{})
	stopCh := j.stopCh
	j.mutex.Unlock()

	logrus.Infof("Starting Market Sync Job (runs every %v)...", j.Interval)

	go func() {
		j.Run()

		ticker := time.NewTicker(j.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				j.Run()
			case <-stopCh:
				logrus.Info("Market Sync Job stopped")
				return
			}
		}
	}()
}

// Stop cancels the periodic ticker. Safe to call more than once.
func (j *MarketSyncJob) Stop() {
	j.mutex.Lock()
	defer j.mutex.Unlock()

	if !j.running {
		return
	}
	j.running = false
	close(j.stopCh)
}

// Run executes one sync cycle with a bounded timeout
func (j *MarketSyncJob) Run() {
	startTime := time.Now()
	logrus.Info("Running Market Sync Job...")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	j.ListingService.Sync(ctx)

	logrus.Infof("Market Sync Job completed (took %v)", time.Since(startTime))
}
