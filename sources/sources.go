// Package sources reads the games each store reports.
//
// Store clients are separate tools; what they leave behind is an export file
// per store, which an Export reads. Local folders are scanned directly.
package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/amonks/backlog/data"
)

// A Source yields one raw payload per owned game, in the store's own shape.
// Payloads are decoded by normalize.Decode.
type Source interface {
	Store() data.Store
	Payloads(ctx context.Context) ([]json.RawMessage, error)
}

// Export reads one store's games from a JSON file holding either an array of
// games or an object whose "games" field is that array.
type Export struct {
	store data.Store
	path  string
}

func NewExport(store data.Store, path string) *Export {
	return &Export{store: store, path: path}
}

// ExportPath is where the export for store lives within dir, like
// "exports/steam.json".
func ExportPath(dir string, store data.Store) string {
	return filepath.Join(dir, string(store)+".json")
}

func (e *Export) Store() data.Store { return e.store }

func (e *Export) Path() string { return e.path }

func (e *Export) Payloads(ctx context.Context) ([]json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("canceled: %w", err)
	}

	bs, err := os.ReadFile(e.path)
	if err != nil {
		return nil, fmt.Errorf("error reading %s export '%s': %w", e.store, e.path, err)
	}

	var games []json.RawMessage
	if err := json.Unmarshal(bs, &games); err == nil {
		return games, nil
	}

	var wrapped struct {
		Games []json.RawMessage `json:"games"`
	}
	if err := json.Unmarshal(bs, &wrapped); err != nil {
		return nil, fmt.Errorf("error parsing %s export '%s': %w", e.store, e.path, err)
	}
	return wrapped.Games, nil
}
