package web

// errors.go turns service errors into responses. The technical error is
// logged with the request ID; the client gets the mapped user message as
// JSON, an HTMX fragment or a plain page depending on the request.

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/lasfile/internal/core"
	"github.com/JonMunkholm/lasfile/internal/las"
	"github.com/JonMunkholm/lasfile/internal/lasio"
	"github.com/JonMunkholm/lasfile/internal/logging"
	"github.com/JonMunkholm/lasfile/internal/store"
	"github.com/JonMunkholm/lasfile/internal/web/templates"
)

// ErrorResponse is the JSON body of every API error.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Action  string            `json:"action,omitempty"`
	Code    string            `json:"code"`
	Check   *core.CheckReport `json:"check,omitempty"`
}

// statusFor picks the HTTP status for a service error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, lasio.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrNoFile), errors.Is(err, core.ErrEmptyFile),
		errors.Is(err, lasio.ErrInvalidUTF8), errors.Is(err, lasio.ErrUnknownEncoding),
		errors.Is(err, las.ErrUnsupportedVersion), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrRejected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrNotFound), errors.Is(err, core.ErrSectionNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrTooManyIngests):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes the user message.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	s.respondErrorWithCheck(w, r, err, nil)
}

func (s *Server) respondErrorWithCheck(w http.ResponseWriter, r *http.Request, err error, check *core.CheckReport) {
	status := statusFor(err)
	msg := core.MapError(err)

	log := logging.FromContext(r.Context())
	attrs := []any{"path", r.URL.Path, "method", r.Method, "status", status, "error", err.Error(), "code", msg.Code}
	if status >= 500 {
		log.Error("request error", attrs...)
	} else {
		log.Warn("request error", attrs...)
	}

	switch {
	case wantsJSON(r):
		writeJSON(w, r, status, ErrorResponse{
			Error:   msg.Message,
			Message: msg.Message,
			Action:  msg.Action,
			Code:    msg.Code,
			Check:   check,
		})
	case isHTMX(r):
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		templates.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(r.Context(), w)
	default:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		templates.ErrorPage(msg.Message, msg.Action, msg.Code).Render(r.Context(), w)
	}
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON is true for API routes and clients asking for JSON. HTMX
// requests get fragments even on API routes.
func wantsJSON(r *http.Request) bool {
	if isHTMX(r) {
		return false
	}
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	return strings.HasPrefix(r.URL.Path, "/api/")
}
