package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/amonks/backlog/data"
	"github.com/amonks/backlog/subcmd"
)

func show(ctx context.Context, e *env, args []string) error {
	subcmd := subcmd.New("show", "show one game and every other copy of it")
	subcmd.RequireArg("game-id", "int", "the game to show (required)", false)
	if err := subcmd.Parse(args); err != nil {
		return fmt.Errorf("flag parsing err: %w", err)
	}
	id, err := strconv.ParseInt(subcmd.Arg(0), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid game id '%s'", subcmd.Arg(0))
	}

	detail, err := e.lib.Detail(id)
	if err != nil {
		return err
	}
	printGame(detail.Game)

	fmt.Println("\ncopies:")
	for _, c := range detail.Copies {
		primary := ""
		if c.ID == detail.Primary.ID {
			primary = " (primary)"
		}
		fmt.Printf("  %d\t%s/%s%s\t%s\n", c.ID, c.Store, c.StoreID, primary, c.StoreURL)
	}
	if len(detail.Collections) > 0 {
		fmt.Println("\ncollections:")
		for _, c := range detail.Collections {
			fmt.Printf("  %d\t%s\n", c.ID, c.Name)
		}
	}
	return nil
}

func printGame(game *data.Game) {
	fmt.Printf("%s\n", game.Name)
	fmt.Printf("  id:          %d\n", game.ID)
	fmt.Printf("  store:       %s/%s\n", game.Store, game.StoreID)
	fmt.Printf("  genres:      %s\n", strings.Join(game.Genres, ", "))
	fmt.Printf("  released:    %s\n", optString(game.ReleaseDate))
	fmt.Printf("  playtime:    %s\n", optFloat(game.PlaytimeHours, "%.1f hours"))
	fmt.Printf("  cover:       %s\n", game.Cover())
	fmt.Printf("  igdb:        %s\n", igdbStatus(game))
	fmt.Printf("  total:       %s\n", optFloat(game.TotalRating, "%.1f"))
	fmt.Printf("  metacritic:  %s (user %s)\n", optFloat(game.MetacriticScore, "%.0f"), optFloat(game.MetacriticUserScore, "%.1f"))
	fmt.Printf("  average:     %s\n", optFloat(game.AverageRating, "%.1f"))
	fmt.Printf("  hidden:      %t\n", game.Hidden)
	fmt.Printf("  nsfw:        %t\n", game.NSFW)
}
