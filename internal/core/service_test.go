package core

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/lasfile/internal/config"
	"github.com/JonMunkholm/lasfile/internal/las"
	"github.com/JonMunkholm/lasfile/internal/lasio"
	"github.com/JonMunkholm/lasfile/internal/store"
)

func readSample(t *testing.T, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("..", "las", "testdata", name))
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	return string(b)
}

func newTestService(t *testing.T, opts Options) (*Service, *store.Memory) {
	t.Helper()
	st := store.NewMemory()
	return NewService(st, NewIngestLimiter(2, time.Second), opts), st
}

func TestService_IngestAndRead(t *testing.T) {
	svc, _ := newTestService(t, Options{RejectInvalid: true})
	ctx := context.Background()

	res, err := svc.Ingest(ctx, "sample_2.0.las", strings.NewReader(readSample(t, "sample_2.0.las")))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	rec := res.File
	if rec.Version != "2.0" || rec.Well != "AAAAA_2" || rec.Company != "ANY OIL COMPANY INC." {
		t.Errorf("summary = %+v", rec)
	}
	if rec.API != "42-501-20130" {
		t.Errorf("API = %q", rec.API)
	}
	if len(rec.Curves) != 8 || rec.Curves[0].Mnemonic != "DEPT" || rec.RowCount != 3 {
		t.Errorf("curves = %d, rows = %d", len(rec.Curves), rec.RowCount)
	}
	if !rec.CheckOK || !res.Check.OK || rec.Issues != 0 {
		t.Errorf("check = %+v, issues = %d", res.Check, rec.Issues)
	}
	if rec.Raw != "" {
		t.Error("IngestResult exposes the raw text")
	}

	t.Run("get", func(t *testing.T) {
		view, err := svc.Get(ctx, rec.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		var names []string
		for _, s := range view.Sections {
			names = append(names, s.Name)
		}
		want := "version,well,curves,parameters,other,data"
		if strings.Join(names, ",") != want {
			t.Errorf("sections = %v, want %s", names, want)
		}
		if len(view.Errors) != 0 {
			t.Errorf("errors = %+v", view.Errors)
		}
	})

	t.Run("section", func(t *testing.T) {
		sec, err := svc.Section(ctx, rec.ID, "well")
		if err != nil {
			t.Fatalf("Section: %v", err)
		}
		if len(sec.Records) != 13 || sec.Records[0].Mnemonic != "STRT" || !strings.HasPrefix(sec.Raw, "~WELL") {
			t.Errorf("well section = %d records, raw %q", len(sec.Records), sec.Raw)
		}
		if _, err := svc.Section(ctx, rec.ID, "nope"); !errors.Is(err, ErrSectionNotFound) {
			t.Errorf("unknown section error = %v", err)
		}
	})

	t.Run("rows", func(t *testing.T) {
		var buf bytes.Buffer
		if err := svc.WriteCSV(ctx, rec.ID, &buf); err != nil {
			t.Fatalf("WriteCSV: %v", err)
		}
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) != 4 {
			t.Fatalf("csv lines = %d, want 4:\n%s", len(lines), buf.String())
		}
		if lines[0] != "DEPT,DT,RHOB,NPHI,SFLU,SFLA,ILM,ILD" {
			t.Errorf("header = %q", lines[0])
		}
		if !strings.HasPrefix(lines[3], "1669.750,123.450,-999.25,") {
			t.Errorf("last row = %q", lines[3])
		}
	})

	t.Run("export", func(t *testing.T) {
		var buf bytes.Buffer
		if err := svc.Export(ctx, rec.ID, &buf, las.WriteOptions{Version: "1.2"}); err != nil {
			t.Fatalf("Export: %v", err)
		}
		back := las.Parse("export.las", buf.String())
		if back.VersionInfo().Version != "1.2" {
			t.Errorf("exported version = %q", back.VersionInfo().Version)
		}
		if got := back.Well().Value("WELL"); got != "AAAAA_2" {
			t.Errorf("exported WELL = %q", got)
		}
		if n := len(back.Data().Rows); n != 3 {
			t.Errorf("exported rows = %d", n)
		}

		err := svc.Export(ctx, rec.ID, &buf, las.WriteOptions{Version: "3.0"})
		if !errors.Is(err, las.ErrUnsupportedVersion) {
			t.Errorf("3.0 export error = %v", err)
		}
	})

	t.Run("list and delete", func(t *testing.T) {
		recs, err := svc.List(ctx, store.ListParams{Search: "aaaaa"})
		if err != nil || len(recs) != 1 {
			t.Fatalf("List = %v, %v", recs, err)
		}
		if err := svc.Delete(ctx, rec.ID); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, err := svc.Get(ctx, rec.ID); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("Get after delete error = %v", err)
		}
	})
}

func TestService_IngestRejected(t *testing.T) {
	const versionOnly = "~V\n VERS. 2.0 : version\n WRAP. NO : wrap\n"

	t.Run("reject invalid", func(t *testing.T) {
		svc, st := newTestService(t, Options{RejectInvalid: true})
		res, err := svc.Ingest(context.Background(), "bad.las", strings.NewReader(versionOnly))
		if !errors.Is(err, ErrRejected) || !errors.Is(err, las.ErrMissingSection) {
			t.Fatalf("error = %v, want ErrRejected wrapping ErrMissingSection", err)
		}
		if res == nil || res.Check.OK || len(res.Check.Missing) != 3 {
			t.Errorf("report = %+v", res)
		}
		if recs, _ := st.ListFiles(context.Background(), store.ListParams{}); len(recs) != 0 {
			t.Errorf("rejected file was stored: %v", recs)
		}
	})

	t.Run("store anyway", func(t *testing.T) {
		svc, _ := newTestService(t, Options{})
		res, err := svc.Ingest(context.Background(), "bad.las", strings.NewReader(versionOnly))
		if err != nil {
			t.Fatalf("Ingest: %v", err)
		}
		if res.File.CheckOK || res.File.Issues == 0 || res.File.RowCount != 0 {
			t.Errorf("record = %+v", res.File)
		}
		var slots []string
		for _, e := range res.Errors {
			slots = append(slots, e.Slot)
		}
		if strings.Join(slots, ",") != "split,validate" {
			t.Errorf("stage errors = %v, want the split and validate slots", slots)
		}
	})
}

func TestService_IngestFailures(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		input   func() *strings.Reader
		wantErr error
	}{
		{"empty", Options{}, func() *strings.Reader { return strings.NewReader(" \n\n") }, ErrEmptyFile},
		{"too large", Options{MaxFileSize: 10}, func() *strings.Reader { return strings.NewReader(strings.Repeat("x", 100)) }, lasio.ErrTooLarge},
		{"invalid utf-8", Options{Encoding: lasio.EncodingUTF8}, func() *strings.Reader { return strings.NewReader("~V\n VERS. 2.0 : \xff\n") }, lasio.ErrInvalidUTF8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t, tt.opts)
			_, err := svc.Ingest(context.Background(), "f.las", tt.input())
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	svc, _ := newTestService(t, Options{})
	if _, err := svc.Ingest(context.Background(), "f.las", nil); !errors.Is(err, ErrNoFile) {
		t.Errorf("nil reader error = %v, want ErrNoFile", err)
	}
}

func TestService_IngestBusy(t *testing.T) {
	limiter := NewIngestLimiter(1, 50*time.Millisecond)
	svc := NewService(store.NewMemory(), limiter, Options{})
	if !limiter.TryAcquire() {
		t.Fatal("TryAcquire failed")
	}
	defer limiter.Release()

	_, err := svc.Ingest(context.Background(), "f.las", strings.NewReader("~V\n"))
	if !errors.Is(err, ErrTooManyIngests) {
		t.Errorf("error = %v, want ErrTooManyIngests", err)
	}
}

func TestService_Check(t *testing.T) {
	svc, st := newTestService(t, Options{})
	var kept []string
	for _, line := range strings.Split(readSample(t, "sample_2.0.las"), "\n") {
		if !strings.HasPrefix(line, "WELL ") {
			kept = append(kept, line)
		}
	}
	text := strings.Join(kept, "\n")

	critical, err := svc.Check(context.Background(), "w.las", strings.NewReader(text), false)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !critical.Check.OK || !critical.Check.CriticalOnly {
		t.Errorf("critical check = %+v", critical.Check)
	}

	full, err := svc.Check(context.Background(), "w.las", strings.NewReader(text), true)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if full.Check.OK || len(full.Check.Issues) == 0 {
		t.Errorf("full check passed without a WELL mnemonic: %+v", full.Check)
	}
	if recs, _ := st.ListFiles(context.Background(), store.ListParams{}); len(recs) != 0 {
		t.Error("Check stored the file")
	}
}

func TestService_IngestPath(t *testing.T) {
	svc, _ := newTestService(t, Options{RejectInvalid: true})
	res, err := svc.IngestPath(context.Background(), filepath.Join("..", "las", "testdata", "sample_3.0.las"))
	if err != nil {
		t.Fatalf("IngestPath: %v", err)
	}
	if res.File.Name != "sample_3.0.las" || res.File.Version != "3.0" {
		t.Errorf("record = %+v", res.File)
	}

	_, err = svc.IngestPath(context.Background(), filepath.Join(t.TempDir(), "missing.las"))
	if !errors.Is(err, las.ErrOpen) {
		t.Errorf("missing file error = %v, want ErrOpen", err)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	opts, err := OptionsFromConfig(config.IngestConfig{
		MaxFileSize:   1024,
		Encoding:      "cp1252",
		RejectInvalid: true,
		Timeout:       time.Minute,
	})
	if err != nil {
		t.Fatalf("OptionsFromConfig: %v", err)
	}
	if opts.Encoding != lasio.EncodingWindows1252 || opts.MaxFileSize != 1024 || !opts.RejectInvalid {
		t.Errorf("opts = %+v", opts)
	}
	if _, err := OptionsFromConfig(config.IngestConfig{Encoding: "ebcdic"}); !errors.Is(err, lasio.ErrUnknownEncoding) {
		t.Errorf("bad encoding error = %v", err)
	}
}

func TestSizeHint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "w.las")
	if err := os.WriteFile(path, []byte("0123456789"), 0o644); err != nil {
		t.Fatal(err)
	}
	fh, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer fh.Close()

	tests := []struct {
		name string
		r    io.Reader
		want int64
	}{
		{"strings reader", strings.NewReader("abc"), 3},
		{"bytes reader", bytes.NewReader(make([]byte, 7)), 7},
		{"regular file", fh, 10},
		{"unknown length", bytes.NewBufferString("abc"), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sizeHint(tt.r); got != tt.want {
				t.Errorf("sizeHint() = %d, want %d", got, tt.want)
			}
		})
	}
}
