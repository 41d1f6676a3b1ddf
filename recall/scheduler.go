package recall

import (
	"context"
	"time"
)

// Run scans once immediately, then every Config.Interval, until ctx is
// cancelled. A failed cycle is logged and retried at the next tick. onReport,
// if non-nil, receives every completed report.
func (svc *Service) Run(ctx context.Context, onReport func(*Report)) error {
	ticker := time.NewTicker(svc.config.Interval)
	defer ticker.Stop()

	svc.runCycle(ctx, onReport)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			svc.runCycle(ctx, onReport)
		}
	}
}

func (svc *Service) runCycle(ctx context.Context, onReport func(*Report)) {
	rep, err := svc.Scan(ctx)
	if err != nil {
		if ctx.Err() == nil {
			svc.logger.Error("scheduler: scan cycle failed", "error", err)
		}
		return
	}
	if onReport != nil {
		onReport(rep)
	}
}
