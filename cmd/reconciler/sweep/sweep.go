// Package sweep reconciles persisted service records with the status
// observed on their live resources.
package sweep

import (
	"context"
	"log"
	"time"

	"github.com/servefab/servefab/cmd/reconciler/recurring"
	"github.com/servefab/servefab/pkg/domain"
	svcdb "github.com/servefab/servefab/pkg/domain/service/db"
	"github.com/servefab/servefab/pkg/domain/service/registry"
)

// Task returns a recurring pass over every service record: revive,
// probe within probeTimeout, and correct the stored status when the
// probe disagrees.
//
// Records whose source has no registered reviver are logged and
// skipped. A sweeping daemon must not crash on one corrupt row; the
// interactive paths keep their fatal behavior.
//
// The task value counts corrected records over the daemon's lifetime.
func Task(
	store svcdb.Interface,
	reg *registry.Registry,
	probeTimeout time.Duration,
	logger *log.Logger,
) recurring.Task[int] {
	return func(ctx context.Context, corrected int) (int, bool, error) {
		recs, err := store.Find(ctx, domain.ServiceFindQuery{})
		if err != nil {
			return corrected, false, err
		}

		updated := false
		for _, rec := range recs {
			if !reg.Knows(rec.Source) {
				logger.Printf(
					"skip service %s: no reviver for source %q", rec.ID, rec.Source,
				)
				continue
			}
			svc, err := reg.Revive(rec)
			if err != nil {
				logger.Printf("skip service %s: %v", rec.ID, err)
				continue
			}

			probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
			svc.UpdateStatus(probeCtx)
			cancel()

			snapshot := svc.Snapshot()
			if snapshot.Status.Equal(rec.Status) {
				continue
			}
			if _, err := store.Update(ctx, snapshot); err != nil {
				return corrected, updated, err
			}
			logger.Printf(
				"corrected status of service %s: %s -> %s",
				rec.ID, rec.Status.State, snapshot.Status.State,
			)
			corrected += 1
			updated = true
		}
		return corrected, updated, nil
	}
}
