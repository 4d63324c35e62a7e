package workers_test

import (
	"bufio"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amonks/backlog/data"
	"github.com/amonks/backlog/db"
	"github.com/amonks/backlog/workers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolBoundsConcurrencyAndWritesSerially(t *testing.T) {
	items := make([]int, 50)
	for i := range items {
		items[i] = i
	}

	var inFlight, maxInFlight atomic.Int32
	var writing atomic.Bool
	sum := 0

	err := workers.Pool(context.Background(), 5, items,
		func(ctx context.Context, n int) (int, error) {
			cur := inFlight.Add(1)
			defer inFlight.Add(-1)
			for {
				prev := maxInFlight.Load()
				if cur <= prev || maxInFlight.CompareAndSwap(prev, cur) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			if n%10 == 0 {
				return 0, errors.New("flaky")
			}
			return n * 2, nil
		},
		func(n, doubled int, err error) error {
			require.False(t, writing.Swap(true), "concurrent write")
			defer writing.Store(false)
			if err == nil {
				sum += doubled
			}
			return nil
		},
	)
	require.NoError(t, err)

	assert.LessOrEqual(t, maxInFlight.Load(), int32(5))
	// 2 * (0+...+49) less the five multiples of ten
	assert.Equal(t, 2*(1225-100), sum)
}

func TestPoolStopsOnWriteError(t *testing.T) {
	items := make([]int, 1000)
	var written atomic.Int32
	stop := errors.New("stop")

	err := workers.Pool(context.Background(), 3, items,
		func(ctx context.Context, n int) (int, error) { return n, ctx.Err() },
		func(int, int, error) error {
			if written.Add(1) == 10 {
				return stop
			}
			return nil
		},
	)
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, int32(10), written.Load())
}

func TestPoolCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	items := make([]int, 1000)
	var written int

	err := workers.Pool(ctx, 2, items,
		func(ctx context.Context, n int) (int, error) { return n, nil },
		func(int, int, error) error {
			written++
			if written == 5 {
				cancel()
			}
			return nil
		},
	)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, written, 1000)
}

func TestPoolEmpty(t *testing.T) {
	err := workers.Pool(context.Background(), 5, []string(nil),
		func(context.Context, string) (string, error) { return "", nil },
		func(string, string, error) error { t.Fatal("unexpected write"); return nil },
	)
	assert.NoError(t, err)
}

func TestEngineRunsDependentsAfterDependencies(t *testing.T) {
	var mu sync.Mutex
	var order []string
	record := func(name string) func(context.Context) error {
		return func(context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
			return nil
		}
	}

	eng := workers.NewEngine()
	eng.Add("igdb", record("igdb"), "sync")
	eng.Add("metacritic", record("metacritic"), "sync")
	eng.Add("sync", record("sync"))
	require.NoError(t, eng.Start(context.Background()))

	require.Len(t, order, 3)
	assert.Equal(t, "sync", order[0])
	assert.ElementsMatch(t, []string{"igdb", "metacritic"}, order[1:])
}

func TestEngineFailureSkipsDependents(t *testing.T) {
	boom := errors.New("boom")
	var ranDependent, canceled atomic.Bool

	eng := workers.NewEngine()
	eng.Add("sync", func(context.Context) error { return boom })
	eng.Add("igdb", func(context.Context) error { ranDependent.Store(true); return nil }, "sync")
	eng.Add("slow", func(ctx context.Context) error {
		<-ctx.Done()
		canceled.Store(true)
		return nil
	})

	err := eng.Start(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.False(t, ranDependent.Load())
	assert.True(t, canceled.Load())
}

func TestEngineRejectsUnknownDependencyAndCycles(t *testing.T) {
	eng := workers.NewEngine()
	eng.Add("igdb", func(context.Context) error { return nil }, "nope")
	assert.Error(t, eng.Start(context.Background()))

	eng = workers.NewEngine()
	eng.Add("a", func(context.Context) error { return nil }, "b")
	eng.Add("b", func(context.Context) error { return nil }, "a")
	assert.Error(t, eng.Start(context.Background()))
}

func TestReporter(t *testing.T) {
	dir := t.TempDir()
	database, err := db.Open(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	defer database.Close()

	zero := int64(0)
	for i, g := range []data.Game{
		{Store: data.Steam, StoreID: "1", Name: "One"},
		{Store: data.Steam, StoreID: "2", Name: "Two", IGDBID: &zero},
	} {
		g := g
		_, err := database.UpsertGame(&g)
		require.NoError(t, err, "game %d", i)
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan struct{})
	filename := filepath.Join(dir, "report.tsv")
	done := make(chan error)
	go func() { done <- workers.RunReporter(ctx, c, database, filename, time.Hour) }()

	<-c
	cancel()
	require.NoError(t, <-done)

	f, err := os.Open(filename)
	require.NoError(t, err)
	defer f.Close()
	sc := bufio.NewScanner(f)
	require.True(t, sc.Scan())
	fields := strings.Split(sc.Text(), "\t")
	require.Len(t, fields, 7)
	// total, matched, unmatched, pending
	assert.Equal(t, []string{"2", "0", "1", "1"}, fields[1:5])
}
