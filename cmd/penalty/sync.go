package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/penalty"
	"github.com/fwojciec/penalty/reconcile"
)

// Run executes the sync command.
func (c *SyncCmd) Run(deps *Dependencies) error {
	cfg := deps.config()
	now := deps.now()

	from, to := c.years(now, cfg.Sync.FirstYear)
	if from > to {
		err := penalty.Errorf(penalty.EINVALID, "start year %d is after end year %d", from, to)
		fmt.Fprintf(deps.Stderr, "error: %s\n", penalty.ErrorMessage(err))
		return err
	}

	if !c.Force && deps.Freshness != nil {
		maxAge := c.MaxAge
		if maxAge == 0 {
			maxAge = cfg.MaxAge()
		}

		marker, err := deps.Freshness.LastSync(deps.Ctx)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", penalty.ErrorMessage(err))
			return err
		}
		if covers(marker, from, to) && !marker.Stale(now, maxAge) {
			fmt.Fprintf(deps.Stdout, "Up to date (last sync %s). Use --force to sync anyway.\n",
				marker.LastUpdate.Local().Format(time.DateTime))
			return nil
		}
	}

	fmt.Fprintf(deps.Stdout, "Synchronizing %s\n", yearSpan(from, to))

	progress := func(event reconcile.ProgressEvent) {
		switch event.Type {
		case reconcile.ProgressYearCurrent:
			fmt.Fprintf(deps.Stdout, "  %d: up to date\n", event.Year)
		case reconcile.ProgressYearUpdated:
			fmt.Fprintf(deps.Stdout, "  %d: updated (%s)\n", event.Year, event.Verdict.Reason)
		case reconcile.ProgressYearFailed:
			fmt.Fprintf(deps.Stderr, "  skip %d: %v\n", event.Year, event.Error)
		case reconcile.ProgressYearStarted, reconcile.ProgressFinished:
			// Summary printed after reconciliation completes
		}
	}

	result, err := deps.Reconciler.Reconcile(deps.Ctx, from, to, progress)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", penalty.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Updated %d of %d years, added %d actions\n",
		result.Updated(), len(result.Years), result.Inserted())

	if failed := result.Failed(); failed > 0 {
		err := penalty.Errorf(penalty.EFETCH, "%d of %d years could not be fetched", failed, len(result.Years))
		fmt.Fprintf(deps.Stderr, "error: %s\n", penalty.ErrorMessage(err))
		return err
	}

	if deps.Freshness != nil {
		marker := penalty.SyncMarker{
			LastUpdate: now,
			RunID:      result.RunID,
			FromYear:   from,
			ToYear:     to,
		}
		if err := deps.Freshness.MarkSynced(deps.Ctx, marker); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", penalty.ErrorMessage(err))
			return err
		}
	}

	return nil
}

// years returns the inclusive year range selected by the flags.
func (c *SyncCmd) years(now time.Time, firstYear int) (int, int) {
	current := now.Year()
	if c.All {
		return firstYear, current
	}
	from, to := c.From, c.To
	if from == 0 && to == 0 {
		return current, current
	}
	if from == 0 {
		from = to
	}
	if to == 0 {
		to = current
	}
	return from, to
}

// covers reports whether marker was written by a sync of at least from..to.
// Markers without a range only cover the current year.
func covers(marker *penalty.SyncMarker, from, to int) bool {
	if marker == nil {
		return false
	}
	if marker.FromYear == 0 && marker.ToYear == 0 {
		year := marker.LastUpdate.Year()
		return from == year && to == year
	}
	return marker.FromYear <= from && to <= marker.ToYear
}

func yearSpan(from, to int) string {
	if from == to {
		return fmt.Sprintf("%d", from)
	}
	return fmt.Sprintf("%d-%d", from, to)
}
