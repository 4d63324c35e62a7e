// backlog keeps a sqlite catalog of every game you own across stores,
// matched against IGDB and Metacritic.
//
// see db/schema.sql for the catalog's tables.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/amonks/backlog/config"
	"github.com/amonks/backlog/db"
	"github.com/amonks/backlog/library"
	"github.com/amonks/backlog/sigctx"
)

func main() {
	if err := run(); errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "canceled")
		os.Exit(130)
	} else if err != nil && !errors.Is(err, flag.ErrHelp) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var usage = strings.TrimSpace(`
usage: backlog $cmd
valid $cmd are 'sync', 'match', 'refresh', 'set-match', 'list', 'show',
'flag', 'cover', 'collections', 'settings', 'stats', 'serve'
for help: backlog $cmd -help
`)

// env is what every subcommand runs against.
type env struct {
	cfg      *config.Config
	db       *db.DB
	lib      *library.Library
	settings *config.Settings
}

func run() error {
	ctx := sigctx.New()

	cfg := config.New()
	logs := cfg.SetupLogging()
	defer logs.Close()

	if len(os.Args) < 2 {
		return errors.New(usage)
	}
	cmd, args := os.Args[1], os.Args[2:]

	db, err := db.Open(cfg.GetDatabasePath())
	if err != nil {
		return err
	}
	defer db.Close()

	e := &env{
		cfg:      cfg,
		db:       db,
		lib:      library.FromConfig(db, cfg),
		settings: cfg.Settings(db),
	}

	switch cmd {
	case "sync":
		return syncStores(ctx, e, args)
	case "match":
		return match(ctx, e, args)
	case "refresh":
		return refresh(ctx, e, args)
	case "set-match":
		return setMatch(ctx, e, args)
	case "list":
		return list(ctx, e, args)
	case "show":
		return show(ctx, e, args)
	case "flag":
		return setFlag(ctx, e, args)
	case "cover":
		return cover(ctx, e, args)
	case "collections":
		return collections(ctx, e, args)
	case "settings":
		return settings(ctx, e, args)
	case "stats":
		return stats(ctx, e, args)
	case "serve":
		return serve(ctx, e, args)
	default:
		return fmt.Errorf("unknown cmd: '%s'\n%s", cmd, usage)
	}
}
