package web

// handlers_api.go serves the JSON API under /api.

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/trackexport/internal/core"
)

// fetchRequest is the body of POST /api/fetch. Identifier is accepted as an
// alias of ArtistURL.
type fetchRequest struct {
	ArtistURL  string `json:"artistUrl"`
	Identifier string `json:"identifier"`
}

// fetchResponse reports a completed fetch or snapshot load with the new view.
type fetchResponse struct {
	Result *core.FetchResult `json:"result"`
	View   core.View         `json:"view"`
}

func (s *Server) handleAPIFetch(w http.ResponseWriter, r *http.Request) {
	var req fetchRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	identifier := req.ArtistURL
	if identifier == "" {
		identifier = req.Identifier
	}

	sess := sessionFrom(r)
	res, err := s.service.Fetch(WithRequestMetadata(r.Context(), r), sess, identifier)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondWithView(w, r, http.StatusOK, res)
}

func (s *Server) handleAPITable(w http.ResponseWriter, r *http.Request) {
	view, err := sessionView(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleAPISort(w http.ResponseWriter, r *http.Request) {
	col, err := parseColumn(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	view, err := sessionFrom(r).SortBy(col)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleAPIHistory(w http.ResponseWriter, r *http.Request) {
	snaps, err := s.service.History(r.Context(), parseIntParam(r, "limit", 0))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if snaps == nil {
		snaps = []core.Snapshot{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"snapshots": snaps})
}

func (s *Server) handleAPILoadSnapshot(w http.ResponseWriter, r *http.Request) {
	res, err := s.service.LoadSnapshot(r.Context(), sessionFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondWithView(w, r, http.StatusOK, res)
}

func (s *Server) handleAPIStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Status())
}

// respondWithView writes res together with the session's refreshed view.
func (s *Server) respondWithView(w http.ResponseWriter, r *http.Request, status int, res *core.FetchResult) {
	view, err := sessionFrom(r).View()
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, status, fetchResponse{Result: res, View: view})
}
