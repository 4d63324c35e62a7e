package request_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/amonks/backlog/request"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/page":
			assert.Equal(t, "backlog-test", r.Header.Get("User-Agent"))
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			io.WriteString(w, `<html><h1>Hades</h1></html>`)
		case "/json":
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{}`)
		case "/slow-down":
			w.Header().Set("Retry-After", "7")
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	header := http.Header{"User-Agent": {"backlog-test"}}

	doc, err := request.FetchHTML(ctx, srv.Client(), srv.URL+"/page", header)
	require.NoError(t, err)
	assert.Equal(t, "Hades", doc.Find("h1").Text())

	_, err = request.FetchHTML(ctx, srv.Client(), srv.URL+"/json", header)
	assert.Error(t, err)

	_, err = request.FetchHTML(ctx, srv.Client(), srv.URL+"/missing", header)
	assert.True(t, request.HasStatus(err, http.StatusNotFound))

	_, err = request.FetchHTML(ctx, srv.Client(), srv.URL+"/slow-down", header)
	var se *request.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "7", se.RetryAfter)
	assert.Contains(t, se.URL, "/slow-down")
}
