package web

// errors.go provides unified error response handling for the web layer.
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err)
//  3. The status code is derived from the error and the error is mapped via
//     core.MapError to a user-facing message
//  4. Technical error + context is logged with request ID for correlation
//  5. User message is rendered as JSON for API clients, HTML otherwise

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JonMunkholm/trackexport/internal/core"
	"github.com/JonMunkholm/trackexport/internal/fetch"
	"github.com/JonMunkholm/trackexport/internal/logging"
	"github.com/JonMunkholm/trackexport/internal/table"
	"github.com/JonMunkholm/trackexport/internal/web/templates"
)

var errRateLimited = core.MapError(errors.New("rate limit exceeded"))

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errInvalidRequest),
		errors.Is(err, fetch.ErrEmptyIdentifier),
		errors.Is(err, table.ErrIndexOutOfRange),
		errors.Is(err, table.ErrUnknownFormat):
		return http.StatusBadRequest
	case errors.Is(err, table.ErrMalformedInput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, table.ErrNoTable),
		errors.Is(err, table.ErrEmptyTable),
		errors.Is(err, core.ErrFetchInProgress):
		return http.StatusConflict
	case errors.Is(err, core.ErrHistoryDisabled),
		errors.Is(err, core.ErrSnapshotNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrTooManyFetches):
		return http.StatusServiceUnavailable
	case errors.Is(err, fetch.ErrUpstream),
		errors.Is(err, fetch.ErrResponseTooLarge):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs the technical error server-side and returns a
// user-friendly response in the format the client expects.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	statusCode := statusFor(err)
	userMsg := core.MapError(err)

	level := slog.LevelWarn
	if statusCode >= http.StatusInternalServerError || !core.IsUserFacing(err) {
		level = slog.LevelError
	}
	logging.FromContext(r.Context()).Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	if statusCode == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "5")
	}

	if wantsJSON(r) {
		respondErrorJSON(w, userMsg, statusCode)
		return
	}
	s.respondErrorHTML(w, r, userMsg, statusCode)
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// respondErrorHTML re-renders the main page with an alert when a session is
// available, or a standalone error page otherwise.
func (s *Server) respondErrorHTML(w http.ResponseWriter, r *http.Request, msg core.UserMessage, statusCode int) {
	alert := templates.Alert{Message: msg.Message, Action: msg.Action, Code: msg.Code}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)

	if sess := sessionFrom(r); sess != nil {
		if view, err := sess.View(); err == nil {
			params := s.tracksParams(view)
			params.Alert = &alert
			if id := r.FormValue("artistUrl"); id != "" {
				params.Identifier = id
			}
			templates.TracksPage(params).Render(r.Context(), w)
			return
		}
	}
	templates.ErrorPage(alert).Render(r.Context(), w)
}

// wantsJSON checks if the client prefers JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	return strings.Contains(r.Header.Get("Content-Type"), "application/json")
}
