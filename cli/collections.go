package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/amonks/backlog/subcmd"
)

var collectionsUsage = strings.TrimSpace(`
usage: backlog collections $action
valid $action are 'list', 'show', 'create', 'update', 'delete', 'add', 'remove'
`)

func collections(ctx context.Context, e *env, args []string) error {
	if len(args) == 0 {
		args = []string{"list"}
	}
	action, args := args[0], args[1:]

	switch action {
	case "list":
		return listCollections(e, args)
	case "show":
		return showCollection(e, args)
	case "create":
		return createCollection(e, args)
	case "update":
		return updateCollection(e, args)
	case "delete":
		return deleteCollection(e, args)
	case "add", "remove":
		return changeMembership(e, action, args)
	default:
		return fmt.Errorf("unknown action: '%s'\n%s", action, collectionsUsage)
	}
}

func listCollections(e *env, args []string) error {
	subcmd := subcmd.New("collections list", "list collections with their game counts")
	if err := subcmd.Parse(args); err != nil {
		return fmt.Errorf("flag parsing err: %w", err)
	}
	cs, err := e.lib.ListCollections()
	if err != nil {
		return err
	}
	if len(cs) == 0 {
		fmt.Println("no collections")
		return nil
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "id\tname\tgames\tdescription")
	for _, c := range cs {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", c.ID, c.Name, c.GameCount, optString(c.Description))
	}
	tw.Flush()
	return nil
}

func showCollection(e *env, args []string) error {
	subcmd := subcmd.New("collections show", "list the games in a collection")
	subcmd.RequireArg("collection-id", "int", "the collection (required)", false)
	if err := subcmd.Parse(args); err != nil {
		return fmt.Errorf("flag parsing err: %w", err)
	}
	ids, err := subcmd.IDs()
	if err != nil {
		return err
	}
	detail, err := e.lib.Collection(ids[0])
	if err != nil {
		return err
	}

	fmt.Printf("%s (%d games)\n", detail.Collection.Name, detail.Collection.GameCount)
	if d := detail.Collection.Description; d != nil {
		fmt.Println(*d)
	}
	fmt.Println()
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, g := range detail.Groups {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", g.Primary.ID, g.Primary.Name, joinStores(g.Stores))
	}
	tw.Flush()
	return nil
}

func createCollection(e *env, args []string) error {
	subcmd := subcmd.New("collections create", "create a collection")
	subcmd.RequireArg("name", "string", "the collection's name (required)", true)
	description := subcmd.String("description", "", "optional description")
	if err := subcmd.Parse(args); err != nil {
		return fmt.Errorf("flag parsing err: %w", err)
	}
	c, err := e.lib.CreateCollection(strings.Join(subcmd.Args(), " "), *description)
	if err != nil {
		return err
	}
	fmt.Printf("created collection %d: %s\n", c.ID, c.Name)
	return nil
}

func updateCollection(e *env, args []string) error {
	subcmd := subcmd.New("collections update", "rename or redescribe a collection")
	subcmd.RequireArg("collection-id", "int", "the collection (required)", false)
	var name, description *string
	subcmd.Func("name", "new name", func(s string) error { name = &s; return nil })
	subcmd.Func("description", "new description; empty clears it", func(s string) error { description = &s; return nil })
	if err := subcmd.Parse(args); err != nil {
		return fmt.Errorf("flag parsing err: %w", err)
	}
	ids, err := subcmd.IDs()
	if err != nil {
		return err
	}
	c, err := e.lib.UpdateCollection(ids[0], name, description)
	if err != nil {
		return err
	}
	fmt.Printf("updated collection %d: %s\n", c.ID, c.Name)
	return nil
}

func deleteCollection(e *env, args []string) error {
	subcmd := subcmd.New("collections delete", "delete collections; their games are kept")
	subcmd.RequireArg("collection-id", "int", "collections to delete (required)", true)
	if err := subcmd.Parse(args); err != nil {
		return fmt.Errorf("flag parsing err: %w", err)
	}
	ids, err := subcmd.IDs()
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := e.lib.DeleteCollection(id); err != nil {
			return err
		}
	}
	return nil
}

func changeMembership(e *env, action string, args []string) error {
	subcmd := subcmd.New("collections "+action, action+" games in a collection")
	subcmd.RequireArg("game-id", "int", "games to "+action+" (required)", true)
	collection := subcmd.Int64("collection", 0, "the collection (required)")
	if err := subcmd.Parse(args); err != nil {
		return fmt.Errorf("flag parsing err: %w", err)
	}
	if *collection <= 0 {
		return fmt.Errorf("-collection is required")
	}
	ids, err := subcmd.IDs()
	if err != nil {
		return err
	}

	change := e.lib.AddToCollection
	if action == "remove" {
		change = e.lib.RemoveFromCollection
	}
	for _, id := range ids {
		if err := change(*collection, id); err != nil {
			return err
		}
	}
	return nil
}
