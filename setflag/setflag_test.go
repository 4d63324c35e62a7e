package setflag_test

import (
	"flag"
	"io"
	"testing"

	"github.com/amonks/backlog/setflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetFlag(t *testing.T) {
	stores := setflag.New("steam", "epic", "gog")
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Var(stores, "store", "")

	require.NoError(t, fs.Parse([]string{"-store", "gog, steam", "-store", "gog"}))
	assert.Equal(t, []string{"steam", "gog"}, stores.List())
	assert.Equal(t, "steam,gog", stores.String())

	assert.Error(t, fs.Parse([]string{"-store", "origin"}))
}

func TestEmpty(t *testing.T) {
	assert.Nil(t, setflag.New("a").List())
}
