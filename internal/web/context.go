package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/lasfile/internal/core"
	mw "github.com/JonMunkholm/lasfile/internal/web/middleware"
)

// withRequestMetadata attaches the client address and User-Agent so ingest
// logs can name the uploader.
func withRequestMetadata(r *http.Request) context.Context {
	ctx := core.ContextWithClientIP(r.Context(), mw.ClientIP(r))
	return core.ContextWithUserAgent(ctx, r.UserAgent())
}
