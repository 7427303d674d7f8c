// Package sidecar persists precomputed catalog embeddings in a SQLite file
// next to the catalog CSV. The sidecar is purely an accelerator: a missing or
// rejected sidecar degrades the engine to on-the-fly encoding, never to an
// error.
package sidecar

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/storybutton/sound-engine/internal/embedding"
	"github.com/storybutton/sound-engine/internal/observability"
)

const schema = `
CREATE TABLE IF NOT EXISTS embeddings (
	filename  TEXT PRIMARY KEY,
	embedding TEXT NOT NULL,
	model     TEXT NOT NULL,
	dim       INTEGER NOT NULL
);`

// Row is one sidecar record: an asset filename and its vector.
type Row struct {
	Filename string
	Vector   embedding.Vector
}

// Load reads the sidecar into a filename -> vector map. A missing file yields
// an empty map. A sidecar written by a different model or dimension is
// rejected wholesale so two vector spaces are never mixed in one process.
func Load(path, wantModel string, wantDim int, log *observability.Logger) map[string]embedding.Vector {
	slog := log.WithComponent("sidecar")
	index := make(map[string]embedding.Vector)

	if _, err := os.Stat(path); err != nil {
		slog.Debug().Str("path", path).Msg("no sidecar present")
		return index
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		slog.Warn().Str("path", path).Err(err).Msg("sidecar unreadable, ignoring")
		return index
	}
	defer db.Close()

	rows, err := db.Query(`SELECT filename, embedding, model, dim FROM embeddings`)
	if err != nil {
		slog.Warn().Str("path", path).Err(err).Msg("sidecar query failed, ignoring")
		return index
	}
	defer rows.Close()

	skipped := 0
	for rows.Next() {
		var (
			filename, embJSON, model string
			dim                      int
		)
		if err := rows.Scan(&filename, &embJSON, &model, &dim); err != nil {
			skipped++
			continue
		}
		if model != wantModel || dim != wantDim {
			slog.Warn().
				Str("path", path).
				Str("sidecar_model", model).
				Int("sidecar_dim", dim).
				Str("want_model", wantModel).
				Int("want_dim", wantDim).
				Msg("sidecar model mismatch, rejecting sidecar")
			return make(map[string]embedding.Vector)
		}
		var vec embedding.Vector
		if err := json.Unmarshal([]byte(embJSON), &vec); err != nil || len(vec) != dim {
			skipped++
			continue
		}
		index[filename] = vec
	}
	if err := rows.Err(); err != nil {
		slog.Warn().Str("path", path).Err(err).Msg("sidecar scan interrupted")
	}

	slog.Info().
		Str("path", path).
		Int("vectors", len(index)).
		Int("skipped", skipped).
		Msg("sidecar loaded")
	return index
}

// Write replaces the sidecar contents with the given rows in one transaction,
// creating parent directories as needed. Duplicate filenames resolve to the
// last row written.
func Write(path, model string, dim int, rows []Row, log *observability.Logger) error {
	slog := log.WithComponent("sidecar")

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create sidecar directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("open sidecar: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("create sidecar schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin sidecar transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM embeddings`); err != nil {
		return fmt.Errorf("clear sidecar: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO embeddings (filename, embedding, model, dim) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare sidecar insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		embJSON, err := json.Marshal(row.Vector)
		if err != nil {
			return fmt.Errorf("encode vector for %s: %w", row.Filename, err)
		}
		if _, err := stmt.Exec(row.Filename, string(embJSON), model, dim); err != nil {
			return fmt.Errorf("insert vector for %s: %w", row.Filename, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit sidecar: %w", err)
	}

	slog.Info().Str("path", path).Int("vectors", len(rows)).Msg("sidecar written")
	return nil
}
