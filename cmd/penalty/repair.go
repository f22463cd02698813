package main

import (
	"fmt"

	"github.com/fwojciec/penalty"
)

// Run executes the repair command.
func (c *RepairCmd) Run(deps *Dependencies) error {
	renames, err := deps.Maintenance.RepairIdentifiers(deps.Ctx, c.DryRun)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", penalty.ErrorMessage(err))
		return err
	}

	if len(renames) == 0 {
		fmt.Fprintln(deps.Stdout, "All identifiers match the year of their action.")
		return nil
	}

	for _, r := range renames {
		fmt.Fprintf(deps.Stdout, "  %s -> %s\n", r.OldID, r.NewID)
	}

	if c.DryRun {
		fmt.Fprintf(deps.Stdout, "Would rename %d identifiers. Run without --dry-run to apply.\n", len(renames))
		return nil
	}
	fmt.Fprintf(deps.Stdout, "Renamed %d identifiers\n", len(renames))
	return nil
}
