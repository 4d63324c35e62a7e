package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/amonks/backlog/data"
	"github.com/amonks/backlog/subcmd"
)

func setFlag(ctx context.Context, e *env, args []string) error {
	subcmd := subcmd.New("flag", "set hidden or nsfw on games\nwith one game and no -value, the flag is toggled")
	subcmd.RequireArg("game-id", "int", "games to change (required)", true)
	var (
		name  = subcmd.String("flag", "hidden", "hidden or nsfw")
		value = subcmd.String("value", "", "true or false")
	)
	if err := subcmd.Parse(args); err != nil {
		return fmt.Errorf("flag parsing err: %w", err)
	}
	flag, err := data.ParseFlag(*name)
	if err != nil {
		return err
	}
	ids, err := subcmd.IDs()
	if err != nil {
		return err
	}

	if *value == "" {
		if len(ids) != 1 {
			return fmt.Errorf("-value is required with more than one game")
		}
		v, err := e.lib.ToggleFlag(ids[0], flag)
		if err != nil {
			return err
		}
		fmt.Printf("%d: %s=%t\n", ids[0], flag, v)
		return nil
	}

	v, err := strconv.ParseBool(*value)
	if err != nil {
		return fmt.Errorf("invalid -value '%s'", *value)
	}
	n, err := e.lib.SetFlagBulk(ids, flag, v)
	if err != nil {
		return err
	}
	fmt.Printf("%s=%t on %d games\n", flag, v, n)
	return nil
}

func cover(ctx context.Context, e *env, args []string) error {
	subcmd := subcmd.New("cover", "override the cover shown for a game\nan empty -url clears the override")
	subcmd.RequireArg("game-id", "int", "the game to change (required)", false)
	url := subcmd.String("url", "", "image url")
	if err := subcmd.Parse(args); err != nil {
		return fmt.Errorf("flag parsing err: %w", err)
	}
	ids, err := subcmd.IDs()
	if err != nil {
		return err
	}
	return e.lib.SetCoverOverride(ids[0], *url)
}
