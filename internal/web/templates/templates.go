// Package templates renders the HTML pages of the web UI as templ
// components.
package templates

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/lasfile/internal/core"
	"github.com/JonMunkholm/lasfile/internal/store"
)

// htmlWriter accumulates the first write error so components can render
// without checking every call.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) printf(format string, args ...any) {
	if h.err == nil {
		_, h.err = fmt.Fprintf(h.w, format, args...)
	}
}

func layout(title string, body func(h *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>`)
		h.text(title)
		h.raw(`</title></head><body><header><a href="/">LAS files</a></header><main>`)
		body(h)
		h.raw(`</main></body></html>`)
		return h.err
	})
}

// FileList renders the stored files.
func FileList(files []store.FileRecord, search string) templ.Component {
	return layout("LAS files", func(h *htmlWriter) {
		h.raw(`<h1>LAS files</h1><form method="get" action="/"><input type="search" name="q" value="`)
		h.text(search)
		h.raw(`"><button type="submit">Search</button></form>`)
		if len(files) == 0 {
			h.raw(`<p class="empty">No files stored yet.</p>`)
			return
		}
		h.raw(`<table><thead><tr><th>Name</th><th>Version</th><th>Well</th><th>UWI</th><th>Curves</th><th>Rows</th><th>Check</th><th>Stored</th></tr></thead><tbody>`)
		for _, f := range files {
			h.printf(`<tr><td><a href="/files/%s">`, f.ID)
			h.text(f.Name)
			h.raw(`</a></td><td>`)
			h.text(f.Version)
			h.raw(`</td><td>`)
			h.text(f.Well)
			h.raw(`</td><td>`)
			h.text(f.UWI)
			h.printf(`</td><td>%d</td><td>%d</td><td>%s</td><td>%s</td></tr>`,
				len(f.Curves), f.RowCount, checkLabel(f.CheckOK, f.Issues), f.CreatedAt.Format("2006-01-02 15:04"))
		}
		h.raw(`</tbody></table>`)
	})
}

func checkLabel(ok bool, issues int) string {
	if ok {
		return "ok"
	}
	return strconv.Itoa(issues) + " issue(s)"
}

// FileDetail renders one stored file with its sections and errors.
func FileDetail(view *core.FileView) templ.Component {
	return layout(view.Name, func(h *htmlWriter) {
		h.raw(`<h1>`)
		h.text(view.Name)
		h.raw(`</h1><dl><dt>Version</dt><dd>`)
		h.text(view.Version)
		h.raw(`</dd><dt>Well</dt><dd>`)
		h.text(view.Well)
		h.raw(`</dd><dt>Company</dt><dd>`)
		h.text(view.Company)
		h.raw(`</dd><dt>API</dt><dd>`)
		h.text(view.API)
		h.printf(`</dd><dt>Rows</dt><dd>%d</dd></dl>`, view.RowCount)

		h.printf(`<p><a href="/api/files/%s/export">Download LAS</a> | <a href="/api/files/%s/data.csv">Download CSV</a></p>`,
			view.ID, view.ID)

		h.raw(`<h2>Sections</h2><table><thead><tr><th>Name</th><th>Title</th><th>Kind</th><th>Line</th><th>Entries</th><th>Problems</th></tr></thead><tbody>`)
		for _, s := range view.Sections {
			h.printf(`<tr><td><a href="/api/files/%s/sections/%s">`, view.ID, templ.EscapeString(s.Name))
			h.text(s.Name)
			h.raw(`</a></td><td>`)
			h.text(s.Title)
			h.raw(`</td><td>`)
			h.text(s.Kind)
			h.printf(`</td><td>%d</td><td>%d</td><td>`, s.Line, s.Records+s.Rows)
			h.text(s.Error)
			h.raw(`</td></tr>`)
		}
		h.raw(`</tbody></table>`)

		if len(view.Errors) > 0 {
			h.raw(`<h2>Errors</h2><ul>`)
			for _, e := range view.Errors {
				h.raw(`<li><code>`)
				h.text(e.Code)
				h.raw(`</code> `)
				h.text(e.Message)
				h.raw(`</li>`)
			}
			h.raw(`</ul>`)
		}
	})
}

// ErrorAlert is the HTMX error fragment.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<div class="alert alert-error" role="alert"><p>`)
		h.text(message)
		h.raw(`</p>`)
		if action != "" {
			h.raw(`<p class="action">`)
			h.text(action)
			h.raw(`</p>`)
		}
		h.raw(`<p class="code">Code: `)
		h.text(code)
		h.raw(`</p></div>`)
		return h.err
	})
}

// ErrorPage is the full-page form of ErrorAlert.
func ErrorPage(message, action, code string) templ.Component {
	return layout("Error", func(h *htmlWriter) {
		if h.err == nil {
			h.err = ErrorAlert(message, action, code).Render(context.Background(), h.w)
		}
	})
}
