package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/amonks/backlog/data"
	"github.com/amonks/backlog/library"
	"github.com/amonks/backlog/setflag"
	"github.com/amonks/backlog/subcmd"
)

func syncStores(ctx context.Context, e *env, args []string) error {
	subcmd := subcmd.New("sync", "import owned games from store exports and local folders\nexports are read from $EXPORTS_DIR/<store>.json")
	stores := setflag.New(data.StoreNames()...)
	subcmd.Var(stores, "store", "stores to sync, comma-separated (default: every configured store)")
	if err := subcmd.Parse(args); err != nil {
		return fmt.Errorf("flag parsing err: %w", err)
	}

	var which []data.Store
	for _, s := range stores.List() {
		which = append(which, data.Store(s))
	}
	reports, err := e.lib.Sync(ctx, which...)
	if err != nil {
		return fmt.Errorf("sync error: %w", err)
	}
	printSyncReports(reports)
	return nil
}

func printSyncReports(reports []library.SyncReport) {
	if len(reports) == 0 {
		fmt.Println("no stores configured")
		return
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "store\timported\tskipped\tfailed\terror")
	for _, r := range reports {
		msg := ""
		if r.Err != nil {
			msg = r.Err.Error()
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\n", r.Store, r.Imported, r.Skipped, r.Failed, msg)
	}
	tw.Flush()
}
