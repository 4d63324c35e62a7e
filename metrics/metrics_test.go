package metrics_test

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amonks/backlog/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler(t *testing.T) {
	metrics.SyncedGames.WithLabelValues("steam", "imported").Add(3)
	metrics.MatchedGames.WithLabelValues("igdb", "unmatched").Inc()
	metrics.ObservePass("sync", time.Now().Add(-time.Second))

	srv := httptest.NewServer(metrics.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `backlog_synced_games_total{result="imported",store="steam"} 3`)
	assert.Contains(t, string(body), `backlog_matched_games_total{provider="igdb",result="unmatched"} 1`)
	assert.Contains(t, string(body), `backlog_pass_duration_seconds_count{pass="sync"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
