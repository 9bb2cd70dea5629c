package web

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/lasfile/internal/config"
	"github.com/JonMunkholm/lasfile/internal/core"
	"github.com/JonMunkholm/lasfile/internal/store"
)

func sample(t *testing.T, name string) []byte {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("..", "las", "testdata", name))
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	return b
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 8080},
		Ingest: config.IngestConfig{
			MaxFileSize:   1 << 20,
			MaxConcurrent: 2,
			MaxWaitTime:   time.Second,
			Timeout:       time.Minute,
			Encoding:      "auto",
			RejectInvalid: true,
		},
		Security: config.SecurityConfig{EnableCSP: true},
		Logging:  config.LoggingConfig{Level: "error", Format: "text"},
	}
}

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	opts, err := core.OptionsFromConfig(cfg.Ingest)
	if err != nil {
		t.Fatalf("OptionsFromConfig: %v", err)
	}
	limiter := core.NewIngestLimiter(cfg.Ingest.MaxConcurrent, cfg.Ingest.MaxWaitTime)
	s := NewServer(core.NewService(store.NewMemory(), limiter, opts), cfg)
	t.Cleanup(func() { s.Shutdown(t.Context()) })
	return s
}

func do(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func multipartUpload(t *testing.T, target, name string, body []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		t.Fatal(err)
	}
	part.Write(body)
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return v
}

// upload stores sample_2.0.las and returns its record.
func upload(t *testing.T, s *Server) store.FileRecord {
	t.Helper()
	rec := do(s, multipartUpload(t, "/api/files", "sample_2.0.las", sample(t, "sample_2.0.las")))
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload status = %d, body %s", rec.Code, rec.Body.String())
	}
	return decode[core.IngestResult](t, rec).File
}

func TestUploadAndRead(t *testing.T) {
	s := newTestServer(t, testConfig())
	file := upload(t, s)
	if file.Well != "AAAAA_2" || file.RowCount != 3 {
		t.Fatalf("uploaded = %+v", file)
	}
	base := "/api/files/" + file.ID.String()

	t.Run("list", func(t *testing.T) {
		rec := do(s, httptest.NewRequest(http.MethodGet, "/api/files?q=aaaaa", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		got := decode[struct{ Files []store.FileRecord }](t, rec)
		if len(got.Files) != 1 || got.Files[0].ID != file.ID {
			t.Errorf("files = %+v", got.Files)
		}
	})

	t.Run("get", func(t *testing.T) {
		rec := do(s, httptest.NewRequest(http.MethodGet, base, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		view := decode[core.FileView](t, rec)
		if view.Name != "sample_2.0.las" || len(view.Sections) == 0 {
			t.Errorf("view = %+v", view)
		}
	})

	t.Run("section", func(t *testing.T) {
		rec := do(s, httptest.NewRequest(http.MethodGet, base+"/sections/well", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		sec := decode[core.SectionView](t, rec)
		if len(sec.Records) != 13 {
			t.Errorf("records = %d", len(sec.Records))
		}
	})

	t.Run("unknown section", func(t *testing.T) {
		rec := do(s, httptest.NewRequest(http.MethodGet, base+"/sections/nope", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d", rec.Code)
		}
	})

	t.Run("export", func(t *testing.T) {
		rec := do(s, httptest.NewRequest(http.MethodGet, base+"/export?version=1.2&wrap=false", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), "VERS.") || !strings.Contains(rec.Body.String(), "1.2") {
			t.Errorf("export body = %q", rec.Body.String())
		}
		if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, ".las") {
			t.Errorf("Content-Disposition = %q", cd)
		}
	})

	t.Run("export bad wrap", func(t *testing.T) {
		rec := do(s, httptest.NewRequest(http.MethodGet, base+"/export?wrap=maybe", nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d", rec.Code)
		}
	})

	t.Run("csv", func(t *testing.T) {
		rec := do(s, httptest.NewRequest(http.MethodGet, base+"/data.csv", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		first, _, _ := strings.Cut(rec.Body.String(), "\n")
		if first != "DEPT,DT,RHOB,NPHI,SFLU,SFLA,ILM,ILD" {
			t.Errorf("header = %q", first)
		}
	})

	t.Run("pages", func(t *testing.T) {
		rec := do(s, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "sample_2.0.las") {
			t.Errorf("index status = %d", rec.Code)
		}
		rec = do(s, httptest.NewRequest(http.MethodGet, "/files/"+file.ID.String(), nil))
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "AAAAA_2") {
			t.Errorf("detail status = %d", rec.Code)
		}
		if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
			t.Error("security headers missing")
		}
	})

	t.Run("delete", func(t *testing.T) {
		rec := do(s, httptest.NewRequest(http.MethodDelete, base, nil))
		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d", rec.Code)
		}
		rec = do(s, httptest.NewRequest(http.MethodGet, base, nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("after delete status = %d", rec.Code)
		}
	})
}

func TestUpload_RawBody(t *testing.T) {
	s := newTestServer(t, testConfig())
	req := httptest.NewRequest(http.MethodPost, "/api/files?name=dir/sample_1.2.las", bytes.NewReader(sample(t, "sample_1.2.las")))
	req.Header.Set("Content-Type", "text/plain")
	rec := do(s, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	res := decode[core.IngestResult](t, rec)
	if res.File.Name != "sample_1.2.las" || res.File.Version != "1.2" {
		t.Errorf("file = %+v", res.File)
	}
	if loc := rec.Header().Get("Location"); loc != "/api/files/"+res.File.ID.String() {
		t.Errorf("Location = %q", loc)
	}
}

func TestUpload_Errors(t *testing.T) {
	const versionOnly = "~V\n VERS. 2.0 : version\n WRAP. NO : wrap\n"

	tests := []struct {
		name     string
		req      func(t *testing.T) *http.Request
		wantCode int
		wantErr  string
	}{
		{
			name: "missing file field",
			req: func(t *testing.T) *http.Request {
				var buf bytes.Buffer
				mw := multipart.NewWriter(&buf)
				mw.WriteField("other", "x")
				mw.Close()
				req := httptest.NewRequest(http.MethodPost, "/api/files", &buf)
				req.Header.Set("Content-Type", mw.FormDataContentType())
				return req
			},
			wantCode: http.StatusBadRequest,
			wantErr:  "FILE004",
		},
		{
			name: "empty body",
			req: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/api/files", strings.NewReader("  \n"))
			},
			wantCode: http.StatusBadRequest,
			wantErr:  "FILE005",
		},
		{
			name: "too large",
			req: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/api/files", bytes.NewReader(bytes.Repeat([]byte("#"), 2<<20)))
			},
			wantCode: http.StatusRequestEntityTooLarge,
			wantErr:  "FILE001",
		},
		{
			name: "rejected",
			req: func(t *testing.T) *http.Request {
				return multipartUpload(t, "/api/files", "bad.las", []byte(versionOnly))
			},
			wantCode: http.StatusUnprocessableEntity,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, testConfig())
			rec := do(s, tt.req(t))
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			resp := decode[ErrorResponse](t, rec)
			if tt.wantErr != "" && resp.Code != tt.wantErr {
				t.Errorf("code = %q, want %q", resp.Code, tt.wantErr)
			}
			if tt.wantCode == http.StatusUnprocessableEntity {
				if resp.Check == nil || resp.Check.OK || len(resp.Check.Missing) == 0 {
					t.Errorf("check = %+v", resp.Check)
				}
			}
		})
	}
}

func TestCheckEndpoint(t *testing.T) {
	s := newTestServer(t, testConfig())
	rec := do(s, multipartUpload(t, "/api/check?all=true", "sample_3.0.las", sample(t, "sample_3.0.las")))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	res := decode[core.CheckResult](t, rec)
	if res.Version != "3.0" || res.Check.CriticalOnly {
		t.Errorf("result = %+v", res)
	}

	list := decode[struct{ Files []store.FileRecord }](t, do(s, httptest.NewRequest(http.MethodGet, "/api/files", nil)))
	if len(list.Files) != 0 {
		t.Errorf("check stored %d file(s)", len(list.Files))
	}
}

func TestNotFoundAndBadID(t *testing.T) {
	s := newTestServer(t, testConfig())
	tests := []struct {
		path string
		want int
	}{
		{"/api/files/not-a-uuid", http.StatusBadRequest},
		{"/api/files/6f1c2b1e-3f5a-4c1e-9d2a-1b2c3d4e5f60", http.StatusNotFound},
		{"/api/files/6f1c2b1e-3f5a-4c1e-9d2a-1b2c3d4e5f60/export", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := do(s, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
		})
	}

	t.Run("html page", func(t *testing.T) {
		rec := do(s, httptest.NewRequest(http.MethodGet, "/files/6f1c2b1e-3f5a-4c1e-9d2a-1b2c3d4e5f60", nil))
		if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), "FILE006") {
			t.Errorf("status = %d, body %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("htmx fragment", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/files/not-a-uuid", nil)
		req.Header.Set("HX-Request", "true")
		rec := do(s, req)
		body, _ := io.ReadAll(rec.Body)
		if !strings.Contains(string(body), `class="alert alert-error"`) || strings.Contains(string(body), "<html") {
			t.Errorf("fragment = %s", body)
		}
	})
}

func TestAPIKeyRequired(t *testing.T) {
	cfg := testConfig()
	cfg.Security.RequireAPIKey = true
	cfg.Security.APIKeys = []string{"secret"}
	s := newTestServer(t, cfg)

	rec := do(s, multipartUpload(t, "/api/files", "sample_2.0.las", sample(t, "sample_2.0.las")))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("without key status = %d", rec.Code)
	}

	req := multipartUpload(t, "/api/files", "sample_2.0.las", sample(t, "sample_2.0.las"))
	req.Header.Set("X-API-Key", "secret")
	if rec := do(s, req); rec.Code != http.StatusCreated {
		t.Errorf("with key status = %d", rec.Code)
	}

	// Reads stay open.
	if rec := do(s, httptest.NewRequest(http.MethodGet, "/api/files", nil)); rec.Code != http.StatusOK {
		t.Errorf("list status = %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, testConfig())
	rec := do(s, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decode[map[string]any](t, rec)
	if body["status"] != "ok" || body["ingest"] == nil {
		t.Errorf("body = %v", body)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{core.ErrNoFile, http.StatusBadRequest},
		{core.ErrRejected, http.StatusUnprocessableEntity},
		{store.ErrNotFound, http.StatusNotFound},
		{core.ErrTooManyIngests, http.StatusServiceUnavailable},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
