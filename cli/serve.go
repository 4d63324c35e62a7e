package main

import (
	"context"
	"fmt"

	"github.com/amonks/backlog/server"
	"github.com/amonks/backlog/subcmd"
)

func serve(ctx context.Context, e *env, args []string) error {
	subcmd := subcmd.New("serve", "run the json api")
	var (
		addr = subcmd.String("addr", e.cfg.GetAddr(), "listen address")
	)
	if err := subcmd.Parse(args); err != nil {
		return fmt.Errorf("flag parsing err: %w", err)
	}

	return server.Run(ctx, server.New(e.lib, e.settings), *addr)
}
