package subcmd_test

import (
	"strings"
	"testing"

	"github.com/amonks/backlog/subcmd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsagePrintsDocVerbatim(t *testing.T) {
	sc := subcmd.New("stats", "Show how much of the library is 100% matched.")
	sc.RequireArg("id", "int", "a game id", true)
	var out strings.Builder
	sc.SetOutput(&out)

	sc.Usage()
	assert.Contains(t, out.String(), "Show how much of the library is 100% matched.")
	assert.NotContains(t, out.String(), "%!")
	assert.Contains(t, out.String(), "backlog stats [flags] <id>...")
}

func TestRequiredArg(t *testing.T) {
	sc := subcmd.New("show", "Show a game.")
	sc.RequireArg("id", "int", "a game id", true)
	var out strings.Builder
	sc.SetOutput(&out)

	assert.EqualError(t, sc.Parse(nil), "missing <id>")

	require.NoError(t, sc.Parse([]string{"3", "7"}))
	ids, err := sc.IDs()
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 7}, ids)
}

func TestIDsRejectsNonPositive(t *testing.T) {
	sc := subcmd.New("show", "Show a game.")
	require.NoError(t, sc.Parse([]string{"0"}))
	_, err := sc.IDs()
	assert.EqualError(t, err, "invalid id '0'")
}
