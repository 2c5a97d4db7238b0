package web

// handlers.go serves the HTML pages. State-changing forms answer with a
// 303 redirect to the main page.

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/trackexport/internal/logging"
	"github.com/JonMunkholm/trackexport/internal/table"
	"github.com/JonMunkholm/trackexport/internal/web/templates"
)

// handleIndex renders the current table page. ?page=N moves to page N.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	view, err := sessionView(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	templates.TracksPage(s.tracksParams(view)).Render(r.Context(), w)
}

// handleFetch fetches the submitted artist link into the session.
func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.respondError(w, r, fmt.Errorf("%w: %v", errInvalidRequest, err))
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	if _, err := s.service.Fetch(ctx, sessionFrom(r), r.PostFormValue("artistUrl")); err != nil {
		s.respondError(w, r, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleSort toggles the sort on a column.
func (s *Server) handleSort(w http.ResponseWriter, r *http.Request) {
	col, err := parseColumn(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if _, err := sessionFrom(r).SortBy(col); err != nil {
		s.respondError(w, r, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleExport downloads the full current table. Shared by the page and API routes.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	f, err := table.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	art, err := sessionFrom(r).Export(f, r.URL.Query().Get("name"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("table exported",
		"format", string(f),
		"filename", art.Filename,
		"bytes", len(art.Data),
	)
	writeArtifact(w, art)
}

// handleHistory lists recent fetches.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	snaps, err := s.service.History(r.Context(), parseIntParam(r, "limit", 0))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	templates.HistoryPage(historyItems(snaps)).Render(r.Context(), w)
}

// handleLoadSnapshot reloads a recorded fetch into the session.
func (s *Server) handleLoadSnapshot(w http.ResponseWriter, r *http.Request) {
	if _, err := s.service.LoadSnapshot(r.Context(), sessionFrom(r), chi.URLParam(r, "id")); err != nil {
		s.respondError(w, r, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
