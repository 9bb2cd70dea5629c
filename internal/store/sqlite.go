package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// SQLite is a single-file catalog, used by the CLI's ingest command.
type SQLite struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLite opens (or creates) the database at path.
func NewSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLite) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS las_files (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		version TEXT NOT NULL,
		wrap INTEGER NOT NULL DEFAULT 0,
		delimiter TEXT NOT NULL DEFAULT 'SPACE',
		well TEXT NOT NULL DEFAULT '',
		company TEXT NOT NULL DEFAULT '',
		uwi TEXT NOT NULL DEFAULT '',
		api TEXT NOT NULL DEFAULT '',
		curves TEXT NOT NULL DEFAULT '[]',
		row_count INTEGER NOT NULL DEFAULT 0,
		check_ok INTEGER NOT NULL DEFAULT 0,
		issues INTEGER NOT NULL DEFAULT 0,
		size INTEGER NOT NULL DEFAULT 0,
		raw TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS las_rows (
		file_id TEXT NOT NULL,
		row_index INTEGER NOT NULL,
		line INTEGER NOT NULL,
		depth REAL,
		vals TEXT NOT NULL,
		PRIMARY KEY (file_id, row_index),
		FOREIGN KEY (file_id) REFERENCES las_files(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_las_files_created ON las_files(created_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLite) SaveFile(ctx context.Context, rec *FileRecord, rows []DataRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	curves, err := json.Marshal(rec.Curves)
	if err != nil {
		return fmt.Errorf("failed to encode curves: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO las_files (id, name, version, wrap, delimiter, well, company, uwi, api,
			curves, row_count, check_ok, issues, size, raw, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID.String(), rec.Name, rec.Version, rec.Wrap, rec.Delimiter, rec.Well, rec.Company,
		rec.UWI, rec.API, string(curves), rec.RowCount, rec.CheckOK, rec.Issues, rec.Size,
		rec.Raw, rec.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to insert file: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO las_rows (file_id, row_index, line, depth, vals) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare row insert: %w", err)
	}
	defer stmt.Close()

	id := rec.ID.String()
	for _, r := range rows {
		vals, err := json.Marshal(r.Values)
		if err != nil {
			return fmt.Errorf("failed to encode row %d: %w", r.Index, err)
		}
		var depth sql.NullFloat64
		if r.Depth != nil {
			depth = sql.NullFloat64{Float64: *r.Depth, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, id, r.Index, r.Line, depth, string(vals)); err != nil {
			return fmt.Errorf("failed to insert row %d: %w", r.Index, err)
		}
	}

	return tx.Commit()
}

const sqliteFileColumns = `id, name, version, wrap, delimiter, well, company, uwi, api,
	curves, row_count, check_ok, issues, size, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteFile(row rowScanner, withRaw bool) (*FileRecord, error) {
	var (
		rec     FileRecord
		id      string
		curves  string
		created int64
	)
	dest := []any{&id, &rec.Name, &rec.Version, &rec.Wrap, &rec.Delimiter, &rec.Well,
		&rec.Company, &rec.UWI, &rec.API, &curves, &rec.RowCount, &rec.CheckOK,
		&rec.Issues, &rec.Size, &created}
	if withRaw {
		dest = append(dest, &rec.Raw)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid stored id %q: %w", id, err)
	}
	rec.ID = parsed
	rec.CreatedAt = time.Unix(0, created).UTC()
	if err := json.Unmarshal([]byte(curves), &rec.Curves); err != nil {
		return nil, fmt.Errorf("failed to decode curves: %w", err)
	}
	return &rec, nil
}

func (s *SQLite) GetFile(ctx context.Context, id uuid.UUID) (*FileRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+sqliteFileColumns+`, raw FROM las_files WHERE id = ?`, id.String())
	rec, err := scanSQLiteFile(row, true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	return rec, nil
}

func (s *SQLite) ListFiles(ctx context.Context, p ListParams) ([]FileRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + sqliteFileColumns + ` FROM las_files`
	var args []any
	if search := strings.TrimSpace(p.Search); search != "" {
		like := "%" + search + "%"
		query += ` WHERE name LIKE ? OR well LIKE ? OR uwi LIKE ?`
		args = append(args, like, like, like)
	}
	query += ` ORDER BY created_at DESC, name LIMIT ? OFFSET ?`
	args = append(args, p.limit(), max(p.Offset, 0))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer rows.Close()

	var out []FileRecord
	for rows.Next() {
		rec, err := scanSQLiteFile(rows, false)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (s *SQLite) Rows(ctx context.Context, id uuid.UUID) ([]DataRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM las_files WHERE id = ?`, id.String()).Scan(&n); err != nil {
		return nil, fmt.Errorf("failed to look up file: %w", err)
	}
	if n == 0 {
		return nil, ErrNotFound
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT row_index, line, depth, vals FROM las_rows WHERE file_id = ? ORDER BY row_index`, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query rows: %w", err)
	}
	defer rows.Close()

	var out []DataRow
	for rows.Next() {
		var (
			r     DataRow
			depth sql.NullFloat64
			vals  string
		)
		if err := rows.Scan(&r.Index, &r.Line, &depth, &vals); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if depth.Valid {
			d := depth.Float64
			r.Depth = &d
		}
		if err := json.Unmarshal([]byte(vals), &r.Values); err != nil {
			return nil, fmt.Errorf("failed to decode row %d: %w", r.Index, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLite) DeleteFile(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM las_files WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLite) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *SQLite) Close() error { return s.db.Close() }
