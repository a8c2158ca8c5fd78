package http

import (
	"context"
	"io/fs"
	"net/http"
	"strings"

	apierrors "myxpicks/internal/errors"
)

// WeeklyRenderer renders the weekly digest page.
type WeeklyRenderer interface {
	WeeklyHTML(ctx context.Context) ([]byte, error)
}

// ServeWeeklyReport renders the weekly digest for GET /weekly.
func ServeWeeklyReport(renderer WeeklyRenderer, errorHandler *apierrors.ErrorHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := renderer.WeeklyHTML(r.Context())
		if err != nil {
			errorHandler.HandleError(w, r, mapServiceError(r, err))
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(page)
	}
}

// ServeFrontend serves the browser application from fsys. Paths without a
// file extension fall back to index.html.
func ServeFrontend(fsys fs.FS) http.Handler {
	fileServer := http.FileServer(http.FS(fsys))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/")
		if name != "" {
			if _, err := fs.Stat(fsys, name); err != nil && !strings.Contains(name, ".") {
				r2 := r.Clone(r.Context())
				r2.URL.Path = "/"
				fileServer.ServeHTTP(w, r2)
				return
			}
		}
		fileServer.ServeHTTP(w, r)
	})
}

// ServeDataFiles exposes the data directory (latest snapshot, history,
// weekly report) under prefix. Directory listings are disabled.
func ServeDataFiles(prefix, dataDir string) http.Handler {
	fileServer := http.StripPrefix(prefix, http.FileServer(http.Dir(dataDir)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", "no-cache")
		fileServer.ServeHTTP(w, r)
	})
}
