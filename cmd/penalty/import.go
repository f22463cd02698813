package main

import (
	"fmt"

	"github.com/fwojciec/penalty"
)

// Run executes the import command.
func (c *ImportCmd) Run(deps *Dependencies) error {
	result, err := deps.DB.ImportLegacy(deps.Ctx, c.Path)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", penalty.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Imported %d actions and %d documents (%d links)\n",
		result.Records, result.Documents, result.Links)
	if result.SkippedRecords > 0 {
		fmt.Fprintf(deps.Stderr, "  skipped %d actions with unreadable dates\n", result.SkippedRecords)
	}
	if result.DanglingLinks > 0 {
		fmt.Fprintf(deps.Stderr, "  dropped %d links to missing actions\n", result.DanglingLinks)
	}
	return nil
}
