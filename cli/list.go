package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/amonks/backlog/data"
	"github.com/amonks/backlog/group"
	"github.com/amonks/backlog/library"
	"github.com/amonks/backlog/setflag"
	"github.com/amonks/backlog/subcmd"
)

func list(ctx context.Context, e *env, args []string) error {
	subcmd := subcmd.New("list", "list the library, one line per game across stores")
	subcmd.SetArg("query", "string", "substring of the game's name")
	stores := setflag.New(data.StoreNames()...)
	subcmd.Var(stores, "store", "only these stores, comma-separated")
	var (
		genres     = subcmd.String("genre", "", "only games with any of these genres, comma-separated")
		hidden     = subcmd.String("hidden", "exclude", "exclude, include, or only")
		duplicates = subcmd.Bool("duplicates", false, "include games named like $EXCLUDE_NAME_SUFFIXES")
		sort       = subcmd.String("sort", "", "one of "+strings.Join(group.SortKeys(), ", "))
		desc       = subcmd.Bool("desc", false, "sort descending")
		all        = subcmd.Bool("all", false, "list every copy, not one line per game")
	)
	if err := subcmd.Parse(args); err != nil {
		return fmt.Errorf("flag parsing err: %w", err)
	}

	opts := library.ListOptions{
		Search:            strings.Join(subcmd.Args(), " "),
		IncludeDuplicates: *duplicates,
		Sort:              *sort,
		Desc:              *desc,
	}
	for _, s := range stores.List() {
		opts.Stores = append(opts.Stores, data.Store(s))
	}
	for _, g := range strings.Split(*genres, ",") {
		if g = strings.TrimSpace(g); g != "" {
			opts.Genres = append(opts.Genres, g)
		}
	}
	switch *hidden {
	case "exclude":
	case "include":
		opts.IncludeHidden = true
	case "only":
		opts.OnlyHidden = true
	default:
		return fmt.Errorf("-hidden must be exclude, include, or only")
	}

	listing, err := e.lib.List(opts)
	if err != nil {
		return err
	}
	if listing.Total == 0 {
		fmt.Println("no games")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "id\tname\tstores\trating\tplaytime\tigdb")
	for _, g := range listing.Groups {
		games := []*data.Game{g.Primary}
		if *all {
			games = g.Games
		}
		for _, game := range games {
			where := string(game.Store)
			if !*all {
				where = joinStores(g.Stores)
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
				game.ID, game.Name, where,
				optFloat(game.AverageRating, "%.1f"),
				optFloat(game.PlaytimeHours, "%.1fh"),
				igdbStatus(game))
		}
	}
	tw.Flush()

	fmt.Printf("\n%d games, %d unique, %d hidden\n", listing.Total, listing.Unique, listing.Hidden)
	return nil
}

func joinStores(stores []data.Store) string {
	names := make([]string, len(stores))
	for i, s := range stores {
		names[i] = string(s)
	}
	return strings.Join(names, ",")
}

func optFloat(f *float64, format string) string {
	if f == nil {
		return "-"
	}
	return fmt.Sprintf(format, *f)
}

func optString(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func igdbStatus(game *data.Game) string {
	switch {
	case game.IGDBID == nil:
		return "pending"
	case *game.IGDBID == 0:
		return "unmatched"
	}
	return strconv.FormatInt(*game.IGDBID, 10)
}
