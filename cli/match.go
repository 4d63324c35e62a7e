package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/amonks/backlog/data"
	"github.com/amonks/backlog/library"
	"github.com/amonks/backlog/subcmd"
)

func match(ctx context.Context, e *env, args []string) error {
	subcmd := subcmd.New("match", "look games up on igdb or metacritic and merge what's found\nigdb requires igdb_client_id and igdb_client_secret (see 'backlog settings')")
	var (
		provider = subcmd.String("provider", "igdb", "igdb or metacritic")
		mode     = subcmd.String("mode", "missing", "missing: only games never searched; all: every game, overwriting earlier matches")
		limit    = subcmd.Int("limit", 0, "stop after this many games (0: no limit)")
	)
	if err := subcmd.Parse(args); err != nil {
		return fmt.Errorf("flag parsing err: %w", err)
	}

	p, err := data.ParseProvider(*provider)
	if err != nil {
		return err
	}
	m, err := library.ParseMode(*mode)
	if err != nil {
		return err
	}

	report, err := e.lib.Match(ctx, p, m, *limit)
	if report != nil {
		fmt.Printf("%s %s: %d searched, %d matched, %d unmatched, %d failed, %d rows updated\n",
			report.Provider, report.Mode, report.Total, report.Matched, report.Unmatched, report.Failed, report.Updated)
	}
	if err != nil {
		return fmt.Errorf("match error: %w", err)
	}
	return nil
}

func setMatch(ctx context.Context, e *env, args []string) error {
	subcmd := subcmd.New("set-match", "match a game by hand, or clear its match with -clear")
	subcmd.RequireArg("game-id", "int", "the game to match (required)", false)
	var (
		provider = subcmd.String("provider", "igdb", "igdb or metacritic")
		key      = subcmd.String("key", "", "igdb id or metacritic slug")
		unset    = subcmd.Bool("clear", false, "clear the provider's match instead")
	)
	if err := subcmd.Parse(args); err != nil {
		return fmt.Errorf("flag parsing err: %w", err)
	}

	id, err := strconv.ParseInt(subcmd.Arg(0), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid game id '%s'", subcmd.Arg(0))
	}
	if !*unset && strings.TrimSpace(*key) == "" {
		return fmt.Errorf("-key is required unless -clear is given")
	}
	if *unset {
		*key = ""
	}

	game, err := e.lib.SetManualMatch(ctx, id, data.Provider(*provider), *key)
	if err != nil {
		return err
	}
	printGame(game)
	return nil
}
