// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

package database

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/shopscope/internal/logging"
)

// Load (re)builds the events table from the configured source file. The
// table is replaced atomically; scans running concurrently keep reading the
// previous version.
func (db *DB) Load(ctx context.Context) error {
	db.reloadMu.Lock()
	defer db.reloadMu.Unlock()

	start := time.Now()
	path := db.src.Path
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return fmt.Errorf("failed to stat source %s: %w", path, err)
	}

	query, err := buildLoadQuery(path, db.src.Format, db.src.TimestampUnit)
	if err != nil {
		return err
	}
	if _, err := db.conn.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to load events from %s: %w", path, err)
	}

	if !db.cfg.SkipIndexes {
		if _, err := db.conn.ExecContext(ctx, "CREATE INDEX IF NOT EXISTS idx_events_visitor ON events (visitor_id)"); err != nil {
			return fmt.Errorf("failed to create visitor index: %w", err)
		}
	}

	var rows int64
	if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM events").Scan(&rows); err != nil {
		return fmt.Errorf("failed to count events: %w", err)
	}

	db.rows.Store(rows)
	db.loadedAt.Store(time.Now().UnixNano())
	logging.Info().
		Str("source", path).
		Int64("rows", rows).
		Dur("duration", time.Since(start)).
		Msg("Event table loaded")
	return nil
}

// Reload is Load with a log line naming the trigger.
func (db *DB) Reload(ctx context.Context, reason string) error {
	logging.Ctx(ctx).Info().Str("reason", reason).Msg("Reloading event table")
	return db.Load(ctx)
}

// Fingerprint hashes the source path, size and modification time. A missing
// file is an error so a refresh never swaps in an empty dataset.
func (db *DB) Fingerprint(_ context.Context) (string, error) {
	fi, err := os.Stat(db.src.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrSourceNotFound, db.src.Path)
		}
		return "", fmt.Errorf("failed to stat source: %w", err)
	}
	h := sha256.New()
	h.Write([]byte(db.src.Path))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatInt(fi.Size(), 10)))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatInt(fi.ModTime().UnixNano(), 10)))
	return hex.EncodeToString(h.Sum(nil)), nil
}

func buildLoadQuery(path, format, tsUnit string) (string, error) {
	reader, err := readerFor(path, format)
	if err != nil {
		return "", err
	}

	var tsExpr string
	switch tsUnit {
	case "ms":
		tsExpr = "epoch_ms(CAST(\"timestamp\" AS BIGINT))"
	case "", "native":
		tsExpr = "CAST(\"timestamp\" AS TIMESTAMP)"
	default:
		return "", fmt.Errorf("unsupported timestamp unit %q", tsUnit)
	}

	quoted := strings.ReplaceAll(path, "'", "''")
	return fmt.Sprintf(`CREATE OR REPLACE TABLE events AS
SELECT
    CAST(visitorid AS BIGINT) AS visitor_id,
    %s AS ts,
    CAST(event AS VARCHAR) AS event,
    CAST(itemid AS BIGINT) AS item_id,
    CAST(COALESCE(categoryid, -1) AS BIGINT) AS category_id
FROM %s('%s')`, tsExpr, reader, quoted), nil
}

func readerFor(path, format string) (string, error) {
	switch format {
	case "csv":
		return "read_csv_auto", nil
	case "parquet":
		return "read_parquet", nil
	case "", "auto":
		if strings.EqualFold(filepath.Ext(path), ".parquet") {
			return "read_parquet", nil
		}
		return "read_csv_auto", nil
	default:
		return "", fmt.Errorf("unsupported source format %q", format)
	}
}
