package web

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/JonMunkholm/lasfile/internal/core"
	"github.com/JonMunkholm/lasfile/internal/las"
	"github.com/JonMunkholm/lasfile/internal/lasio"
	"github.com/JonMunkholm/lasfile/internal/store"
	"github.com/JonMunkholm/lasfile/internal/web/templates"
)

var errBadRequest = errors.New("bad request")

// multipartMemory is how much of a multipart upload is kept in memory
// before spilling to a temp file.
const multipartMemory = 32 << 20

func fileID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid file id", errBadRequest)
	}
	return id, nil
}

func intParam(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || v < 0 {
		return def
	}
	return v
}

func listParams(r *http.Request) store.ListParams {
	return store.ListParams{
		Limit:  intParam(r, "limit", store.DefaultListLimit),
		Offset: intParam(r, "offset", 0),
		Search: r.URL.Query().Get("q"),
	}
}

// uploadBody returns the uploaded file. Multipart requests carry it in the
// "file" field; any other body is taken as the file itself, named by the
// "name" query parameter.
func (s *Server) uploadBody(w http.ResponseWriter, r *http.Request) (string, io.ReadCloser, error) {
	if limit := int64(s.cfg.Ingest.MaxFileSize); limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit+1<<20)
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		name := r.URL.Query().Get("name")
		if name == "" {
			name = "upload.las"
		}
		return filepath.Base(name), r.Body, nil
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return "", nil, lasio.ErrTooLarge
		}
		return "", nil, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil, core.ErrNoFile
		}
		return "", nil, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return filepath.Base(header.Filename), file, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	body := map[string]any{"status": "ok"}
	if err := s.service.Ping(r.Context()); err != nil {
		status = http.StatusServiceUnavailable
		body["status"] = "degraded"
		body["store"] = core.MapError(err)
	}
	if l := s.service.Limiter(); l != nil {
		body["ingest"] = l.Status()
	}
	writeJSON(w, r, status, body)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	name, body, err := s.uploadBody(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	defer body.Close()

	res, err := s.service.Ingest(withRequestMetadata(r), name, body)
	if err != nil {
		var check *core.CheckReport
		if res != nil {
			check = &res.Check
		}
		s.respondErrorWithCheck(w, r, err, check)
		return
	}
	w.Header().Set("Location", "/api/files/"+res.File.ID.String())
	writeJSON(w, r, http.StatusCreated, res)
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	name, body, err := s.uploadBody(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	defer body.Close()

	all, _ := strconv.ParseBool(r.URL.Query().Get("all"))
	res, err := s.service.Check(withRequestMetadata(r), name, body, all)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := s.service.List(r.Context(), listParams(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if files == nil {
		files = []store.FileRecord{}
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"files": files})
}

func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	id, err := fileID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	view, err := s.service.Get(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

func (s *Server) handleGetSection(w http.ResponseWriter, r *http.Request) {
	id, err := fileID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	sec, err := s.service.Section(r.Context(), id, chi.URLParam(r, "name"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, sec)
}

// handleExport serves the file as LAS text. Query parameters: version
// (1.2 or 2.0, default the file's own) and wrap (true or false).
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	id, err := fileID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	opts := las.WriteOptions{Version: r.URL.Query().Get("version")}
	if v := r.URL.Query().Get("wrap"); v != "" {
		wrap, err := strconv.ParseBool(v)
		if err != nil {
			s.respondError(w, r, fmt.Errorf("%w: wrap must be true or false", errBadRequest))
			return
		}
		opts.Wrap = &wrap
	}

	// Buffered so a failed export still gets an error status.
	var buf bytes.Buffer
	if err := s.service.Export(r.Context(), id, &buf, opts); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.las"`, id))
	w.Write(buf.Bytes())
}

func (s *Server) handleDataCSV(w http.ResponseWriter, r *http.Request) {
	id, err := fileID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := s.service.WriteCSV(r.Context(), id, &buf); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.csv"`, id))
	w.Write(buf.Bytes())
}

func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	id, err := fileID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.service.Delete(r.Context(), id); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	p := listParams(r)
	files, err := s.service.List(r.Context(), p)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	templates.FileList(files, strings.TrimSpace(p.Search)).Render(r.Context(), w)
}

func (s *Server) handleFilePage(w http.ResponseWriter, r *http.Request) {
	id, err := fileID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	view, err := s.service.Get(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	templates.FileDetail(view).Render(r.Context(), w)
}
