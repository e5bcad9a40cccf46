package services

import (
	"time"

	"premium-api/pkg/logging"
)

// Sweeper periodically replays the ledger into every projection. It is
// the self-heal path for the two-write hazard: if a projection write
// ever fails independently of its ledger write, the next sweep repairs
// the drift without operator involvement.
type Sweeper struct {
	projections *ProjectionService
	interval    time.Duration
	stop        chan bool
}

// NewSweeper creates an integrity sweeper with the given interval
func NewSweeper(projections *ProjectionService, interval time.Duration) *Sweeper {
	return &Sweeper{
		projections: projections,
		interval:    interval,
		stop:        make(chan bool),
	}
}

// Start runs the sweep loop until Stop is called
func (s *Sweeper) Start() {
	logging.Infof("Projection sweeper started - interval: %s", s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stop:
			return
		}
	}
}

func (s *Sweeper) sweep() {
	start := time.Now()
	checked, repaired, err := s.projections.RecomputeAll()
	if err != nil {
		logging.Errorf("Projection sweep failed: %v", err)
		return
	}
	logging.Infof("Projection sweep complete - checked: %d, repaired: %d, time: %v",
		checked, repaired, time.Since(start))
}

// Stop stops the sweep loop
func (s *Sweeper) Stop() {
	close(s.stop)
}
