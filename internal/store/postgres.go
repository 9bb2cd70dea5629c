package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresConfig configures the connection pool.
type PostgresConfig struct {
	URL             string
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration

	// CopyBatchSize is the number of data rows sent per COPY (default 5000).
	CopyBatchSize int
}

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

// Postgres stores files in PostgreSQL. Data rows go to las_rows through COPY.
type Postgres struct {
	pool      *pgxpool.Pool
	batchSize int
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS las_files (
	id          UUID PRIMARY KEY,
	name        TEXT NOT NULL,
	version     TEXT NOT NULL,
	wrap        BOOLEAN NOT NULL DEFAULT FALSE,
	delimiter   TEXT NOT NULL DEFAULT 'SPACE',
	well        TEXT NOT NULL DEFAULT '',
	company     TEXT NOT NULL DEFAULT '',
	uwi         TEXT NOT NULL DEFAULT '',
	api         TEXT NOT NULL DEFAULT '',
	curves      JSONB NOT NULL DEFAULT '[]',
	row_count   INTEGER NOT NULL DEFAULT 0,
	check_ok    BOOLEAN NOT NULL DEFAULT FALSE,
	issues      INTEGER NOT NULL DEFAULT 0,
	size        BIGINT NOT NULL DEFAULT 0,
	raw         TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_las_files_created ON las_files (created_at DESC);

CREATE TABLE IF NOT EXISTS las_rows (
	file_id    UUID NOT NULL REFERENCES las_files (id) ON DELETE CASCADE,
	row_index  INTEGER NOT NULL,
	line       INTEGER NOT NULL,
	depth      DOUBLE PRECISION,
	vals       TEXT[] NOT NULL,
	PRIMARY KEY (file_id, row_index)
);
`

// NewPostgres connects, verifies the connection and creates the schema.
func NewPostgres(ctx context.Context, cfg PostgresConfig) (*Postgres, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns >= 0 {
		poolConfig.MinConns = int32(cfg.MinConns)
	}
	if cfg.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	p := &Postgres{pool: pool, batchSize: cfg.CopyBatchSize}
	if p.batchSize <= 0 {
		p.batchSize = 5000
	}
	if err := p.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

// Migrate creates the tables when they do not exist.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func toPgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

func (p *Postgres) SaveFile(ctx context.Context, rec *FileRecord, rows []DataRow) error {
	curves, err := json.Marshal(rec.Curves)
	if err != nil {
		return fmt.Errorf("encode curves: %w", err)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO las_files (id, name, version, wrap, delimiter, well, company, uwi, api,
			curves, row_count, check_ok, issues, size, raw, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::jsonb, $11, $12, $13, $14, $15, $16)`,
		toPgUUID(rec.ID), rec.Name, rec.Version, rec.Wrap, rec.Delimiter, rec.Well, rec.Company,
		rec.UWI, rec.API, string(curves), rec.RowCount, rec.CheckOK, rec.Issues, rec.Size,
		rec.Raw, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert file: %w", err)
	}

	fileID := toPgUUID(rec.ID)
	for start := 0; start < len(rows); start += p.batchSize {
		batch := rows[start:min(start+p.batchSize, len(rows))]
		_, err := tx.CopyFrom(ctx,
			pgx.Identifier{"las_rows"},
			[]string{"file_id", "row_index", "line", "depth", "vals"},
			pgx.CopyFromSlice(len(batch), func(i int) ([]any, error) {
				r := batch[i]
				return []any{fileID, r.Index, r.Line, r.Depth, r.Values}, nil
			}),
		)
		if err != nil {
			return fmt.Errorf("copy data rows: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

const fileColumns = `id, name, version, wrap, delimiter, well, company, uwi, api,
	curves, row_count, check_ok, issues, size, created_at`

func scanFile(row pgx.Row, withRaw bool) (*FileRecord, error) {
	var (
		rec    FileRecord
		id     pgtype.UUID
		curves []byte
	)
	dest := []any{&id, &rec.Name, &rec.Version, &rec.Wrap, &rec.Delimiter, &rec.Well,
		&rec.Company, &rec.UWI, &rec.API, &curves, &rec.RowCount, &rec.CheckOK,
		&rec.Issues, &rec.Size, &rec.CreatedAt}
	if withRaw {
		dest = append(dest, &rec.Raw)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	rec.ID = id.Bytes
	if err := json.Unmarshal(curves, &rec.Curves); err != nil {
		return nil, fmt.Errorf("decode curves: %w", err)
	}
	return &rec, nil
}

func (p *Postgres) GetFile(ctx context.Context, id uuid.UUID) (*FileRecord, error) {
	row := p.pool.QueryRow(ctx, `SELECT `+fileColumns+`, raw FROM las_files WHERE id = $1`, toPgUUID(id))
	rec, err := scanFile(row, true)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}
	return rec, nil
}

func (p *Postgres) ListFiles(ctx context.Context, lp ListParams) ([]FileRecord, error) {
	query := `SELECT ` + fileColumns + ` FROM las_files`
	args := []any{}
	if s := strings.TrimSpace(lp.Search); s != "" {
		args = append(args, "%"+s+"%")
		query += ` WHERE name ILIKE $1 OR well ILIKE $1 OR uwi ILIKE $1`
	}
	args = append(args, lp.limit(), max(lp.Offset, 0))
	query += fmt.Sprintf(` ORDER BY created_at DESC, name LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	var out []FileRecord
	for rows.Next() {
		rec, err := scanFile(rows, false)
		if err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (p *Postgres) Rows(ctx context.Context, id uuid.UUID) ([]DataRow, error) {
	if err := p.exists(ctx, p.pool, id); err != nil {
		return nil, err
	}
	rows, err := p.pool.Query(ctx,
		`SELECT row_index, line, depth, vals FROM las_rows WHERE file_id = $1 ORDER BY row_index`,
		toPgUUID(id))
	if err != nil {
		return nil, fmt.Errorf("query rows: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (DataRow, error) {
		var r DataRow
		err := row.Scan(&r.Index, &r.Line, &r.Depth, &r.Values)
		return r, err
	})
}

func (p *Postgres) exists(ctx context.Context, db DBTX, id uuid.UUID) error {
	var found bool
	err := db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM las_files WHERE id = $1)`, toPgUUID(id)).Scan(&found)
	if err != nil {
		return fmt.Errorf("lookup file: %w", err)
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) DeleteFile(ctx context.Context, id uuid.UUID) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM las_files WHERE id = $1`, toPgUUID(id))
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) Ping(ctx context.Context) error { return p.pool.Ping(ctx) }

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
