package core

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/JonMunkholm/lasfile/internal/las"
	"github.com/JonMunkholm/lasfile/internal/logging"
	"github.com/JonMunkholm/lasfile/internal/store"
)

// List returns stored files, newest first.
func (s *Service) List(ctx context.Context, p store.ListParams) ([]store.FileRecord, error) {
	recs, err := s.store.ListFiles(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return recs, nil
}

// Load fetches a stored file and parses its text again.
func (s *Service) Load(ctx context.Context, id uuid.UUID) (*store.FileRecord, *las.File, error) {
	rec, err := s.store.GetFile(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("get file %s: %w", id, err)
	}
	var opts []las.Option
	if s.opts.ParallelParse {
		opts = append(opts, las.WithParallel())
	}
	return rec, las.Parse(rec.Name, rec.Raw, opts...), nil
}

// Get returns a stored file with its section list.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*FileView, error) {
	rec, f, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	view := &FileView{FileRecord: *rec, Errors: StageErrors(f)}
	view.Raw = ""
	for _, sec := range f.Sections() {
		view.Sections = append(view.Sections, SummarizeSection(sec))
	}
	return view, nil
}

// Section returns one section of a stored file. name may be a canonical
// name or any title the file's grammar resolves to it.
func (s *Service) Section(ctx context.Context, id uuid.UUID, name string) (*SectionView, error) {
	_, f, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	sec, ok := f.Section(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSectionNotFound, name)
	}
	view := NewSectionView(sec)
	return &view, nil
}

// Export writes a stored file as LAS text.
func (s *Service) Export(ctx context.Context, id uuid.UUID, w io.Writer, opts las.WriteOptions) error {
	_, f, err := s.Load(ctx, id)
	if err != nil {
		return err
	}
	if err := las.Write(w, f, opts); err != nil {
		return fmt.Errorf("export %s: %w", id, err)
	}
	logging.FromContext(ctx).Debug("file exported", "file_id", id, "version", opts.Version)
	return nil
}

// WriteCSV writes the stored data rows with curve mnemonics as the header.
func (s *Service) WriteCSV(ctx context.Context, id uuid.UUID, w io.Writer) error {
	rec, err := s.store.GetFile(ctx, id)
	if err != nil {
		return fmt.Errorf("get file %s: %w", id, err)
	}
	rows, err := s.store.Rows(ctx, id)
	if err != nil {
		return fmt.Errorf("get rows %s: %w", id, err)
	}

	width := len(rec.Curves)
	for _, r := range rows {
		width = max(width, len(r.Values))
	}
	header := csvHeader(rec.Curves, width)

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r.Values); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// csvHeader names columns after the curves when there is one curve per
// column, renaming repeats GR, GR_1. Otherwise columns are C1, C2, ...
func csvHeader(curves []store.Curve, width int) []string {
	header := make([]string, width)
	if len(curves) != width {
		for i := range header {
			header[i] = "C" + strconv.Itoa(i+1)
		}
		return header
	}
	seen := make(map[string]int, width)
	for i, c := range curves {
		key := strings.ToUpper(c.Mnemonic)
		if n := seen[key]; n > 0 {
			header[i] = c.Mnemonic + "_" + strconv.Itoa(n)
		} else {
			header[i] = c.Mnemonic
		}
		seen[key]++
	}
	return header
}

// Delete removes a stored file and its rows.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteFile(ctx, id); err != nil {
		return fmt.Errorf("delete file %s: %w", id, err)
	}
	logging.FromContext(ctx).Info("file deleted", "file_id", id)
	return nil
}
