package main

import (
	"fmt"

	"github.com/fwojciec/penalty"
)

// Run executes the erase command.
func (c *EraseCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintf(deps.Stderr, "error: use --force to confirm deletion\n")
		return penalty.Errorf(penalty.EINVALID, "use --force to confirm deletion")
	}

	result, err := deps.Maintenance.EraseAll(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", penalty.ErrorMessage(err))
		return err
	}

	// The next sync must run regardless of its age.
	if deps.Freshness != nil {
		if err := deps.Freshness.MarkSynced(deps.Ctx, penalty.SyncMarker{}); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", penalty.ErrorMessage(err))
			return err
		}
	}

	fmt.Fprintf(deps.Stdout, "Erased %d actions and %d documents\n", result.Records, result.Documents)
	return nil
}
