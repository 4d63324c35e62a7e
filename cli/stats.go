package main

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/amonks/backlog/data"
	"github.com/amonks/backlog/subcmd"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func stats(ctx context.Context, e *env, args []string) error {
	subcmd := subcmd.New("stats", "summarize the visible library")
	genres := subcmd.Int("genres", 10, "how many of the most common genres to show")
	if err := subcmd.Parse(args); err != nil {
		return fmt.Errorf("flag parsing err: %w", err)
	}

	s, err := e.lib.Stats()
	if err != nil {
		return err
	}

	byStore := map[string]int64{}
	for _, store := range data.Stores {
		if n := s.ByStore[store]; n > 0 {
			byStore[string(store)] = n
		}
	}
	printSection("games", s.Total, byStore)
	humanPrinter.Printf("  %.1f\thours played\n\n", s.TotalPlaytimeHours)

	printSection("igdb", s.Total, map[string]int64{
		"matched":   s.IGDBMatched,
		"unmatched": s.IGDBUnmatched,
		"pending":   s.IGDBPending,
	})
	if s.AverageTotalRating != nil {
		humanPrinter.Printf("  %.1f\taverage total rating\n\n", *s.AverageTotalRating)
	}

	printSection("metacritic", s.Total, map[string]int64{
		"matched": s.MetacriticMatched,
	})
	if s.AverageMetacriticScore != nil {
		humanPrinter.Printf("  %.1f\taverage critic score\n\n", *s.AverageMetacriticScore)
	}

	humanPrinter.Printf("%s\n", strings.ToUpper("genres"))
	for i, g := range s.Genres {
		if i == *genres {
			break
		}
		humanPrinter.Printf("  %d\t%s\n", g.Count, g.Name)
	}
	humanPrinter.Printf("\n")

	return nil
}

var humanPrinter = message.NewPrinter(language.English)

// printSection prints each count as a share of known, ordered by name.
func printSection(name string, known int64, done map[string]int64) {
	humanPrinter.Printf("%s\n", strings.ToUpper(name))
	humanPrinter.Printf("  %d\tknown\n", known)
	for _, k := range sortedKeys(done) {
		v := done[k]
		if known == 0 {
			humanPrinter.Printf("  %d\t%s\n", v, k)
			continue
		}
		humanPrinter.Printf("  %d\t%s (%.2f%%)\n", v, k, 100.0*float64(v)/float64(known))
	}
	humanPrinter.Printf("\n")
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
