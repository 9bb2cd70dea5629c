// Package store persists ingested LAS files.
//
// Every backend keeps the decoded source text of a file, so a stored file
// can always be parsed again, plus a searchable summary and the data rows.
// Three backends exist: Memory (tests and throwaway servers), Postgres
// (pgx, data rows loaded with COPY) and SQLite (a local catalog used by the
// CLI).
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no file has the requested ID.
var ErrNotFound = errors.New("file not found")

// Curve describes one data column.
type Curve struct {
	Mnemonic    string `json:"mnemonic"`
	Unit        string `json:"unit,omitempty"`
	Description string `json:"description,omitempty"`
}

// FileRecord is a stored LAS file.
type FileRecord struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Version   string    `json:"version"`
	Wrap      bool      `json:"wrap"`
	Delimiter string    `json:"delimiter"`

	Well    string `json:"well,omitempty"`
	Company string `json:"company,omitempty"`
	UWI     string `json:"uwi,omitempty"`
	API     string `json:"api,omitempty"`

	Curves   []Curve `json:"curves"`
	RowCount int     `json:"row_count"`

	// CheckOK is the outcome of the full (non-critical) check at ingest.
	CheckOK bool `json:"check_ok"`
	Issues  int  `json:"issues"`

	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`

	// Raw is the decoded source text. List results leave it empty.
	Raw string `json:"-"`
}

// DataRow is one data row as stored. Depth is the first value when it is
// numeric.
type DataRow struct {
	Index  int
	Line   int
	Depth  *float64
	Values []string
}

// ListParams pages through stored files, newest first.
type ListParams struct {
	Limit  int
	Offset int
	Search string // case-insensitive match on name, well or UWI
}

// DefaultListLimit applies when ListParams.Limit is zero.
const DefaultListLimit = 50

func (p ListParams) limit() int {
	if p.Limit <= 0 {
		return DefaultListLimit
	}
	return p.Limit
}

// Store is implemented by every backend.
type Store interface {
	// SaveFile stores rec and its data rows in one transaction.
	SaveFile(ctx context.Context, rec *FileRecord, rows []DataRow) error
	// GetFile returns the record including Raw.
	GetFile(ctx context.Context, id uuid.UUID) (*FileRecord, error)
	ListFiles(ctx context.Context, p ListParams) ([]FileRecord, error)
	// Rows returns the data rows of a file in order.
	Rows(ctx context.Context, id uuid.UUID) ([]DataRow, error)
	DeleteFile(ctx context.Context, id uuid.UUID) error
	Ping(ctx context.Context) error
	Close() error
}
