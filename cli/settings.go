package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/amonks/backlog/subcmd"
)

func settings(ctx context.Context, e *env, args []string) error {
	subcmd := subcmd.New("settings", "show provider credentials, or save one with -set\nenvironment variables of the upper-cased key override saved values")
	set := subcmd.String("set", "", "key=value to save; an empty value deletes the key")
	if err := subcmd.Parse(args); err != nil {
		return fmt.Errorf("flag parsing err: %w", err)
	}

	if *set != "" {
		key, value, ok := strings.Cut(*set, "=")
		if !ok {
			return fmt.Errorf("-set takes key=value")
		}
		if err := e.lib.SetSetting(key, value); err != nil {
			return err
		}
	}

	values, err := e.lib.Settings(e.settings)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "key\tvalue\tfrom")
	for _, v := range values {
		from := string(v.Source)
		if from == "" {
			from = "unset"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", v.Key, v.Value, from)
	}
	tw.Flush()
	return nil
}
