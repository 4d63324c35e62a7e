package request

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/PuerkitoBio/goquery"
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
	RetryAfter string
	Body       string
}

func (err *StatusError) Error() string {
	if err.Body == "" {
		return fmt.Sprintf("http status code %d from '%s'", err.StatusCode, err.URL)
	}
	return fmt.Sprintf("http status code %d from '%s':\n%s", err.StatusCode, err.URL, err.Body)
}

// HasStatus reports whether err is a StatusError with the given code.
func HasStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

// maxErrorBody bounds how much of an error response is kept in a
// StatusError.
const maxErrorBody = 2048

// Fetch does an HTTP GET on the given URL with the given headers and
// returns the body of a successful response. If wantType is set, the
// response's media type must match it.
func Fetch(ctx context.Context, client *http.Client, url string, header http.Header, wantType string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error building request for '%s': %w", url, err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching '%s': %w", url, err)
	}

	if err := Error(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}

	if wantType != "" {
		if mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type")); mediaType != wantType {
			resp.Body.Close()
			return nil, fmt.Errorf("expected %s at '%s', but got '%s'", wantType, url, mediaType)
		}
	}

	return resp.Body, nil
}

// FetchHTML does an HTTP GET on the given URL with the given headers, then
// parses the response as HTML.
func FetchHTML(ctx context.Context, client *http.Client, url string, header http.Header) (*goquery.Document, error) {
	body, err := Fetch(ctx, client, url, header, "text/html")
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("error parsing html from '%s': %w", url, err)
	}

	return doc, nil
}

// Error checks the given http response for an error code, and, if one is
// present, reads the start of the body and returns a *StatusError.
func Error(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	bs, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	se := &StatusError{
		StatusCode: resp.StatusCode,
		RetryAfter: resp.Header.Get("Retry-After"),
		Body:       string(bs),
	}
	if resp.Request != nil && resp.Request.URL != nil {
		se.URL = resp.Request.URL.String()
	}
	return se
}
