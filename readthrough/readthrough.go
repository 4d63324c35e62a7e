// Package readthrough caches fetched pages on disk, keyed by the sha256 of
// their url.
package readthrough

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// New returns a cache storing files named prefix+hash under dir. An empty
// dir returns a cache that never hits and never stores.
func New(dir, prefix string) *ReadThrough {
	return &ReadThrough{dir: dir, prefix: prefix}
}

type ReadThrough struct {
	dir, prefix string
}

var ErrMiss = errors.New("cache miss")

// Enabled reports whether the cache stores anything.
func (rt *ReadThrough) Enabled() bool {
	return rt != nil && rt.dir != ""
}

func (rt *ReadThrough) Get(key string) (io.ReadCloser, string, error) {
	if !rt.Enabled() {
		return nil, "", ErrMiss
	}
	hash, filename := rt.hashAndFilename(key)

	cache, err := os.Open(filename)
	if errors.Is(err, os.ErrNotExist) {
		return nil, hash, fmt.Errorf("cache miss for '%s': %w", hash, ErrMiss)
	} else if err != nil {
		return nil, hash, fmt.Errorf("error opening cache file '%s' for read: %w", hash, err)
	}

	return cache, hash, nil
}

// Set stores everything read from r under key, and returns a reader over
// the same bytes. r is closed.
func (rt *ReadThrough) Set(key string, r io.ReadCloser) (io.ReadCloser, string, error) {
	defer r.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, "", fmt.Errorf("error reading body for cache: %w", err)
	}
	if !rt.Enabled() {
		return io.NopCloser(&buf), "", nil
	}

	hash, filename := rt.hashAndFilename(key)
	if err := os.MkdirAll(rt.dir, 0o755); err != nil {
		return nil, hash, fmt.Errorf("error creating cache dir '%s': %w", rt.dir, err)
	}

	// Write then rename, so a reader never sees half a page.
	tmp, err := os.CreateTemp(rt.dir, rt.prefix+"tmp-")
	if err != nil {
		return nil, hash, fmt.Errorf("error opening cache file '%s' for write: %w", hash, err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, hash, fmt.Errorf("error writing cache file '%s': %w", hash, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return nil, hash, fmt.Errorf("error writing cache file '%s': %w", hash, err)
	}
	if err := os.Rename(tmp.Name(), filename); err != nil {
		os.Remove(tmp.Name())
		return nil, hash, fmt.Errorf("error moving cache file '%s' into place: %w", hash, err)
	}

	return io.NopCloser(&buf), hash, nil
}

// Fetch returns the cached body for key, or calls fill and caches what it
// returns.
func (rt *ReadThrough) Fetch(key string, fill func() (io.ReadCloser, error)) (io.ReadCloser, error) {
	if r, _, err := rt.Get(key); err == nil {
		return r, nil
	} else if !errors.Is(err, ErrMiss) {
		return nil, err
	}

	body, err := fill()
	if err != nil {
		return nil, err
	}
	r, _, err := rt.Set(key, body)
	return r, err
}

func (rt *ReadThrough) hashAndFilename(key string) (string, string) {
	sum := sha256.Sum256([]byte(key))
	hash := hex.EncodeToString(sum[:])
	return hash, filepath.Join(rt.dir, rt.prefix+hash)
}
