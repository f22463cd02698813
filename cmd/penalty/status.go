package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/penalty"
)

// Run executes the status command.
func (c *StatusCmd) Run(deps *Dependencies) error {
	stats, err := deps.Maintenance.Stats(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", penalty.ErrorMessage(err))
		return err
	}

	marker, err := deps.Freshness.LastSync(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", penalty.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Actions:       %d\n", stats.Records)
	fmt.Fprintf(deps.Stdout, "Documents:     %d (%d without text)\n", stats.Documents, stats.DocumentsWithoutText)

	latest := "none"
	if stats.LatestRecordDate != nil {
		latest = stats.LatestRecordDate.Format(time.DateOnly)
	}
	fmt.Fprintf(deps.Stdout, "Latest action: %s\n", latest)

	if marker == nil || marker.LastUpdate.IsZero() {
		fmt.Fprintln(deps.Stdout, "Last sync:     never. Use 'penalty sync' to fetch actions.")
		return nil
	}
	fmt.Fprintf(deps.Stdout, "Last sync:     %s", marker.LastUpdate.Local().Format(time.DateTime))
	if marker.FromYear != 0 {
		fmt.Fprintf(deps.Stdout, " (%s)", yearSpan(marker.FromYear, marker.ToYear))
	}
	fmt.Fprintln(deps.Stdout)
	return nil
}
