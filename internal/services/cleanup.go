package services

import (
	"context"
	"sync"
	"time"

	"github.com/amaumene/filmdocs/internal/cache"
	"github.com/amaumene/filmdocs/internal/database"
	"github.com/amaumene/filmdocs/pkg/logger"
)

const (
	// Default cleanup settings
	defaultCleanupInterval = 1 * time.Hour
	defaultRetentionPeriod = 24 * time.Hour
)

// CleanupService periodically drops stale data source bodies from the
// database and expired entries from the in-memory caches.
type CleanupService struct {
	db              database.Database
	caches          []*cache.LRUCache
	logger          logger.Logger
	interval        time.Duration
	retentionPeriod time.Duration
	mu              sync.Mutex
	running         bool
	stopChan        chan struct{}
}

// NewCleanupService creates a new cleanup service. db may be nil.
func NewCleanupService(db database.Database, log logger.Logger, caches ...*cache.LRUCache) *CleanupService {
	return &CleanupService{
		db:              db,
		caches:          caches,
		logger:          log,
		interval:        defaultCleanupInterval,
		retentionPeriod: defaultRetentionPeriod,
		stopChan:        make(chan struct{}),
	}
}

// SetRetentionPeriod sets how long stored bodies are kept
func (c *CleanupService) SetRetentionPeriod(duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if duration > 0 {
		c.retentionPeriod = duration
	}
}

// SetInterval sets how often cleanup runs
func (c *CleanupService) SetInterval(duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if duration > 0 {
		c.interval = duration
	}
}

// Start begins the cleanup service
func (c *CleanupService) Start(ctx context.Context) {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	interval := c.interval
	c.mu.Unlock()

	c.logger.Infof("[Cleanup] starting with interval: %v, retention: %v", interval, c.retentionPeriod)

	c.performCleanup()
	go c.cleanupLoop(ctx, interval)
}

// Stop stops the cleanup service
func (c *CleanupService) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return
	}

	c.running = false
	close(c.stopChan)
	c.logger.Infof("[Cleanup] stopped")
}

func (c *CleanupService) cleanupLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.Stop()
			return
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.performCleanup()
		}
	}
}

// performCleanup runs one pass and returns the number of removed
// database bodies and cache entries.
func (c *CleanupService) performCleanup() (int, int) {
	expired := 0
	for _, lru := range c.caches {
		if lru != nil {
			expired += lru.CleanExpired()
		}
	}

	removed := 0
	if c.db != nil {
		c.mu.Lock()
		retention := c.retentionPeriod
		c.mu.Unlock()

		n, err := c.db.DeleteOlderThan(retention)
		if err != nil {
			c.logger.Errorf("[Cleanup] failed to delete old bodies: %v", err)
		}
		removed = n
	}

	c.logger.Debugf("[Cleanup] pass completed: %d bodies removed, %d cache entries expired", removed, expired)
	return removed, expired
}

// CleanupNow performs immediate cleanup
func (c *CleanupService) CleanupNow() (int, int) {
	return c.performCleanup()
}
