package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"premium-api/internal/database"
	"premium-api/pkg/logging"
)

// EventDedupe is the fast-path duplicate check for webhook deliveries.
// It is an optimization only: the (provider, external_id) unique index on
// the ledger remains the authority, so a cache miss on a real duplicate
// is harmless. Entries are only marked after a delivery fully processes,
// so a 500-and-retry never gets misclassified as a replay.
//
// Backed by Redis when configured, otherwise by an in-process map with a
// periodic cleanup, which is enough for a single instance.
type EventDedupe struct {
	seen            map[string]time.Time
	mutex           sync.RWMutex
	cleanupInterval time.Duration
	entryTTL        time.Duration
	stopCleanup     chan bool
}

// NewEventDedupe creates the dedupe cache and starts its cleanup routine
func NewEventDedupe() *EventDedupe {
	d := &EventDedupe{
		seen:            make(map[string]time.Time),
		cleanupInterval: time.Hour,
		entryTTL:        24 * time.Hour,
		stopCleanup:     make(chan bool),
	}
	go d.startCleanupRoutine()
	return d
}

func dedupeKey(provider, externalID string) string {
	return fmt.Sprintf("webhook_event:%s:%s", provider, externalID)
}

// IsDuplicate reports whether this (provider, external id) pair already
// completed processing. Read-only; it never records the event.
func (d *EventDedupe) IsDuplicate(provider, externalID string) bool {
	if externalID == "" {
		return false
	}

	if client := database.GetRedis(); client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		n, err := client.Exists(ctx, dedupeKey(provider, externalID)).Result()
		if err == nil {
			return n > 0
		}
		logging.Errorf("Dedupe cache read failed, falling back to ledger check: %v", err)
		return false
	}

	d.mutex.RLock()
	defer d.mutex.RUnlock()
	_, exists := d.seen[dedupeKey(provider, externalID)]
	return exists
}

// MarkProcessed records a fully processed delivery
func (d *EventDedupe) MarkProcessed(provider, externalID string) {
	if externalID == "" {
		return
	}

	if client := database.GetRedis(); client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Set(ctx, dedupeKey(provider, externalID), "1", d.entryTTL).Err(); err != nil {
			logging.Errorf("Dedupe cache write failed: %v", err)
		}
		return
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.seen[dedupeKey(provider, externalID)] = time.Now()
}

// AllowOnce grants the key once per window. Used to rate-limit operator
// alerts so a retry storm does not flood the inbox.
func (d *EventDedupe) AllowOnce(key string, window time.Duration) bool {
	if client := database.GetRedis(); client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		ok, err := client.SetNX(ctx, "rate_limit:"+key, "1", window).Result()
		if err != nil {
			logging.Errorf("Alert rate limit check failed: %v", err)
			return true
		}
		return ok
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()
	if at, exists := d.seen["rate_limit:"+key]; exists && time.Since(at) < window {
		return false
	}
	d.seen["rate_limit:"+key] = time.Now()
	return true
}

// startCleanupRoutine expires in-memory entries on a timer
func (d *EventDedupe) startCleanupRoutine() {
	ticker := time.NewTicker(d.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.cleanup()
		case <-d.stopCleanup:
			return
		}
	}
}

func (d *EventDedupe) cleanup() {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	now := time.Now()
	initialCount := len(d.seen)
	for key, at := range d.seen {
		if now.Sub(at) > d.entryTTL {
			delete(d.seen, key)
		}
	}

	if removed := initialCount - len(d.seen); removed > 0 {
		logging.Infof("Dedupe cleanup: removed %d expired entries, remaining: %d", removed, len(d.seen))
	}
}

// Clear empties the in-memory cache (used in tests)
func (d *EventDedupe) Clear() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.seen = make(map[string]time.Time)
}

// Stop stops the cleanup routine
func (d *EventDedupe) Stop() {
	close(d.stopCleanup)
}
