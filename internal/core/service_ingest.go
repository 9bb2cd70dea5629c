package core

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/lasfile/internal/las"
	"github.com/JonMunkholm/lasfile/internal/lasio"
	"github.com/JonMunkholm/lasfile/internal/logging"
	"github.com/JonMunkholm/lasfile/internal/store"
)

// ctxReader stops reading once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// sizeHint returns the length of r when it is known without reading it,
// or 0.
func sizeHint(r io.Reader) int64 {
	switch v := r.(type) {
	case interface{ Size() int64 }:
		return v.Size()
	case *os.File:
		if st, err := v.Stat(); err == nil && st.Mode().IsRegular() {
			return st.Size()
		}
	}
	return 0
}

// load decodes and parses r. Open and read failures are returned as errors;
// everything later is left on the File.
func (s *Service) load(ctx context.Context, name string, r io.Reader) (*las.File, int64, error) {
	if r == nil {
		return nil, 0, ErrNoFile
	}
	counter := lasio.NewCountingReader(ctxReader{ctx: ctx, r: r}, sizeHint(r))
	f := lasio.Read(name, counter, s.opts.loadOptions())
	if err := f.ReadError(); err != nil {
		logging.FromContext(ctx).Debug("load stopped",
			"name", name, "bytes_read", counter.BytesRead, "progress", counter.Progress())
		return nil, counter.BytesRead, err
	}
	if strings.TrimSpace(f.Raw()) == "" {
		return nil, counter.BytesRead, ErrEmptyFile
	}
	return f, counter.BytesRead, nil
}

// Ingest parses r, checks it and stores it with its data rows.
//
// The full check is always recorded on the stored record. When
// RejectInvalid is set, a file failing the critical check is not stored and
// the returned error wraps ErrRejected; the result still carries the report.
func (s *Service) Ingest(ctx context.Context, name string, r io.Reader) (*IngestResult, error) {
	release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	log := logging.WithFields(ctx, append([]any{"name", name}, clientAttrs(ctx)...)...)
	start := time.Now()

	f, size, err := s.load(ctx, name, r)
	if err != nil {
		log.Warn("ingest failed", "error", err)
		return nil, err
	}

	if critical := las.Check(f, true); s.opts.RejectInvalid && !critical.OK() {
		log.Warn("ingest rejected", "missing", critical.Missing, "findings", len(critical.Findings))
		return &IngestResult{
			Check:  NewCheckReport(critical, true),
			Errors: StageErrors(f),
		}, fmt.Errorf("%w: %w", ErrRejected, critical.Err())
	}

	full := f.Validate(false)
	rec, rows := buildRecord(f, size, full)
	rec.ID = uuid.New()

	if err := s.store.SaveFile(ctx, rec, rows); err != nil {
		log.Error("ingest save failed", "error", err)
		return nil, fmt.Errorf("save file: %w", err)
	}

	log.Info("ingest completed",
		"file_id", rec.ID,
		"version", rec.Version,
		"rows", rec.RowCount,
		"issues", rec.Issues,
		"duration", time.Since(start),
	)

	out := *rec
	out.Raw = ""
	return &IngestResult{
		File:   out,
		Check:  NewCheckReport(full, false),
		Errors: StageErrors(f),
	}, nil
}

// IngestPath opens a file from disk and ingests it.
func (s *Service) IngestPath(ctx context.Context, path string) (*IngestResult, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, las.NewOpenFailure(path, err).OpenError()
	}
	defer fh.Close()
	return s.Ingest(ctx, filepath.Base(path), fh)
}

// Check parses r and checks it without storing anything. all selects the
// full check; otherwise only critical problems are reported.
func (s *Service) Check(ctx context.Context, name string, r io.Reader, all bool) (*CheckResult, error) {
	release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	f, _, err := s.load(ctx, name, r)
	if err != nil {
		return nil, err
	}
	result := las.Check(f, !all)

	logging.FromContext(ctx).Debug("check completed",
		"name", name, "ok", result.OK(), "missing", len(result.Missing), "findings", len(result.Findings))

	return &CheckResult{
		Name:    name,
		Version: f.VersionInfo().Version,
		Check:   NewCheckReport(result, !all),
		Errors:  StageErrors(f),
	}, nil
}

// buildRecord summarises f for storage.
func buildRecord(f *las.File, size int64, full las.Result) (*store.FileRecord, []store.DataRow) {
	info := f.VersionInfo()
	rec := &store.FileRecord{
		Name:      f.Path,
		Version:   info.Version,
		Wrap:      info.Wrap,
		Delimiter: info.Delimiter.String(),
		CheckOK:   full.OK(),
		Issues:    len(full.Missing) + len(full.Findings),
		Size:      size,
		Raw:       f.Raw(),
	}
	if well := f.Well(); well != nil {
		rec.Well = well.Value("WELL")
		rec.Company = well.Value("COMP")
		rec.UWI = well.Value("UWI")
	}
	if api, ok := f.API(); ok {
		rec.API = api.Formatted()
	}
	if curves := f.Curves(); curves != nil {
		for _, c := range curves.Records {
			rec.Curves = append(rec.Curves, store.Curve{
				Mnemonic:    c.Mnemonic,
				Unit:        c.Unit,
				Description: c.Description,
			})
		}
	}

	var rows []store.DataRow
	if data := f.Data(); data != nil {
		rows = make([]store.DataRow, len(data.Rows))
		for i, r := range data.Rows {
			rows[i] = store.DataRow{Index: i, Line: r.Line, Values: r.Values}
			if len(r.Values) > 0 {
				if d, ok := las.ParseNumber(r.Values[0]); ok {
					rows[i].Depth = &d
				}
			}
		}
	}
	rec.RowCount = len(rows)
	return rec, rows
}
