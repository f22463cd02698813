package main

import (
	"fmt"

	"github.com/fwojciec/penalty"
)

// Run executes the ask command.
func (c *AskCmd) Run(deps *Dependencies) error {
	q, err := c.query(c.Query)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", penalty.ErrorMessage(err))
		return err
	}

	answer, err := deps.Asker.Ask(deps.Ctx, q, c.Question)
	if err != nil {
		if penalty.ErrorCode(err) == penalty.ENOTFOUND {
			fmt.Fprintf(deps.Stderr, "error: %s. Use 'penalty sync' to fetch actions or widen the query.\n", penalty.ErrorMessage(err))
			return err
		}
		fmt.Fprintf(deps.Stderr, "error: %s\n", penalty.ErrorMessage(err))
		return err
	}

	fmt.Fprintln(deps.Stdout, answer)
	return nil
}
