package workers

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/amonks/backlog/db"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// ReportHeader names the columns of each report line.
const ReportHeader = "time\ttotal\tigdb_matched\tigdb_unmatched\tigdb_pending\tmetacritic_matched\thidden\n"

// RunReporter appends a line of catalog counts to filename right away and
// then every interval, until ctx is done. The file rotates at 10MB. Each
// line written is signalled on c, if c isn't nil.
func RunReporter(ctx context.Context, c chan<- struct{}, db *db.DB, filename string, every time.Duration) error {
	logfile := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    10,
		MaxBackups: 3,
	}
	defer logfile.Close()

	return report(ctx, c, db, logfile, every)
}

func report(ctx context.Context, c chan<- struct{}, db *db.DB, w io.Writer, every time.Duration) error {
	tick := time.NewTicker(every)
	defer tick.Stop()

	for {
		if err := writeReport(db, w); err != nil {
			return fmt.Errorf("reporting error: %w", err)
		}
		if c != nil {
			select {
			case c <- struct{}{}:
			case <-ctx.Done():
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-tick.C:
		}
	}
}

func writeReport(db *db.DB, w io.Writer) error {
	stats, err := gatherInfo(db)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w,
		"%s\t"+
			"%d\t"+
			"%d\t%d\t%d\t"+
			"%d\t"+
			"%d\n",

		time.Now().Format(time.DateTime),
		stats.Total,
		stats.IGDBMatched, stats.IGDBUnmatched, stats.IGDBPending,
		stats.MetacriticMatched,
		stats.Hidden,
	)
	return err
}

func gatherInfo(database *db.DB) (*db.Stats, error) {
	return database.GetStats(db.Filter{IncludeHidden: true})
}
