package app

import (
	"context"
	"time"

	"lol.mleku.dev/chk"
	"lol.mleku.dev/log"
)

// expirySweepInterval is the expiration sweep cadence of spec.md §5.
const expirySweepInterval = 3600 * time.Second

// RunExpirySweep runs CleanupExpired on a fixed interval as a single
// non-overlapping task, until ctx is cancelled.
func (s *Server) RunExpirySweep(ctx context.Context) {
	ticker := time.NewTicker(expirySweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := s.Store.CleanupExpired(ctx); chk.E(err) {
				log.E.F("expiry sweep: %v", err)
			}
		case <-ctx.Done():
			return
		}
	}
}
