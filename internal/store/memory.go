package store

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory keeps files in process memory.
type Memory struct {
	mu    sync.RWMutex
	files map[uuid.UUID]*FileRecord
	rows  map[uuid.UUID][]DataRow
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		files: make(map[uuid.UUID]*FileRecord),
		rows:  make(map[uuid.UUID][]DataRow),
	}
}

func (m *Memory) SaveFile(ctx context.Context, rec *FileRecord, rows []DataRow) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	cp := *rec
	cp.Curves = slices.Clone(rec.Curves)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[rec.ID] = &cp
	m.rows[rec.ID] = slices.Clone(rows)
	return nil
}

func (m *Memory) GetFile(ctx context.Context, id uuid.UUID) (*FileRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.files[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *Memory) ListFiles(ctx context.Context, p ListParams) ([]FileRecord, error) {
	m.mu.RLock()
	var out []FileRecord
	search := strings.ToLower(p.Search)
	for _, rec := range m.files {
		if search != "" && !matches(rec, search) {
			continue
		}
		cp := *rec
		cp.Raw = ""
		out = append(out, cp)
	}
	m.mu.RUnlock()

	slices.SortFunc(out, func(a, b FileRecord) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	if p.Offset >= len(out) {
		return nil, nil
	}
	out = out[p.Offset:]
	return out[:min(len(out), p.limit())], nil
}

func matches(rec *FileRecord, search string) bool {
	for _, s := range []string{rec.Name, rec.Well, rec.UWI} {
		if strings.Contains(strings.ToLower(s), search) {
			return true
		}
	}
	return false
}

func (m *Memory) Rows(ctx context.Context, id uuid.UUID) ([]DataRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.files[id]; !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(m.rows[id]), nil
}

func (m *Memory) DeleteFile(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[id]; !ok {
		return ErrNotFound
	}
	delete(m.files, id)
	delete(m.rows, id)
	return nil
}

func (m *Memory) Ping(ctx context.Context) error { return ctx.Err() }

func (m *Memory) Close() error { return nil }
