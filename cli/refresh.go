package main

import (
	"context"
	"fmt"

	"github.com/amonks/backlog/subcmd"
)

func refresh(ctx context.Context, e *env, args []string) error {
	subcmd := subcmd.New("refresh", "sync every store, then match missing games on igdb and metacritic\ncatalog counts are appended to $REPORT_FILE while it runs")
	if err := subcmd.Parse(args); err != nil {
		return fmt.Errorf("flag parsing err: %w", err)
	}
	if err := e.lib.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh error: %w", err)
	}
	fmt.Println("done")
	return nil
}
