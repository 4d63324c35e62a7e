package sources

import (
	"context"
	"crypto/md5"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/amonks/backlog/data"
	"github.com/amonks/backlog/normalize"
	"github.com/xeipuuv/gojsonschema"
)

// OverrideFile is the optional file, within a game's folder, that overrides
// what the scanner infers from the folder name.
const OverrideFile = "game.json"

//go:embed game.schema.json
var overrideSchemaJSON string

var overrideSchema = mustSchema(overrideSchemaJSON)

func mustSchema(s string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(s))
	if err != nil {
		panic(fmt.Errorf("invalid schema for %s: %w", OverrideFile, err))
	}
	return schema
}

// Local treats every immediate, non-hidden subfolder of its directories as
// one game named after the folder.
type Local struct {
	dirs []string
}

func NewLocal(dirs ...string) *Local {
	return &Local{dirs: dirs}
}

func (l *Local) Store() data.Store { return data.Local }

// Payloads scans every directory. Directories that don't exist are skipped.
// An override file that can't be read or doesn't validate is logged and
// ignored; the folder is still imported under its own name.
func (l *Local) Payloads(ctx context.Context) ([]json.RawMessage, error) {
	var out []json.RawMessage
	for _, dir := range l.dirs {
		games, err := l.scan(ctx, dir)
		if err != nil {
			return nil, err
		}
		for _, game := range games {
			bs, err := json.Marshal(game)
			if err != nil {
				return nil, fmt.Errorf("error encoding local game '%s': %w", game.FolderPath, err)
			}
			out = append(out, bs)
		}
	}
	return out, nil
}

func (l *Local) scan(ctx context.Context, dir string) ([]normalize.LocalGame, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("local games directory does not exist", "dir", dir)
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("error scanning '%s': %w", dir, err)
	}

	var games []normalize.LocalGame
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("canceled: %w", err)
		}
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		folder := filepath.Join(dir, entry.Name())
		game := normalize.LocalGame{
			Name:       entry.Name(),
			StoreID:    LocalID(dir, entry.Name()),
			FolderPath: folder,
		}

		o, err := readOverride(filepath.Join(folder, OverrideFile))
		if err != nil {
			slog.Warn("ignoring game override", "folder", folder, "error", err)
		} else if o != nil {
			o.apply(&game)
		}

		games = append(games, game)
	}
	return games, nil
}

// LocalID derives a stable store id from the base directory's name and the
// game's folder name, so moving the whole library keeps every id.
func LocalID(dir, folder string) string {
	sum := md5.Sum([]byte(filepath.Base(filepath.Clean(dir)) + "/" + folder))
	return hex.EncodeToString(sum[:])[:12]
}

type override struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	CoverImage  string   `json:"cover_image"`
	Developers  []string `json:"developers"`
	Genres      []string `json:"genres"`
	ReleaseDate string   `json:"release_date"`
	IGDBID      int64    `json:"igdb_id"`
}

// readOverride returns nil, nil if there is no override file.
func readOverride(path string) (*override, error) {
	bs, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	result, err := overrideSchema.Validate(gojsonschema.NewBytesLoader(bs))
	if err != nil {
		return nil, fmt.Errorf("error validating %s: %w", path, err)
	}
	if !result.Valid() {
		var errs []string
		for _, desc := range result.Errors() {
			errs = append(errs, desc.String())
		}
		return nil, fmt.Errorf("invalid %s: %s", path, strings.Join(errs, "; "))
	}

	var o override
	if err := json.Unmarshal(bs, &o); err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", path, err)
	}
	return &o, nil
}

func (o *override) apply(game *normalize.LocalGame) {
	if o.Name != "" {
		game.Name = o.Name
	}
	if o.Description != "" {
		game.Description = o.Description
	}
	if o.CoverImage != "" {
		game.CoverImage = o.CoverImage
	}
	if len(o.Developers) > 0 {
		game.Developers = o.Developers
	}
	if len(o.Genres) > 0 {
		game.Genres = o.Genres
	}
	if o.ReleaseDate != "" {
		game.ReleaseDate = o.ReleaseDate
	}
	if o.IGDBID > 0 {
		id := o.IGDBID
		game.IGDBID = &id
	}
}
