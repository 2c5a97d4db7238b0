package core

// error_messages.go: error codes reference.
//
// Technical errors are mapped to user-facing messages with a code users can
// quote when reporting a problem. Sentinels are matched with errors.Is; the
// patterns catch errors that only carry text (network failures, errors from
// other layers).
//
//	PARSE001  Malformed input       table.ErrMalformedInput
//	SORT001   Bad column            table.ErrIndexOutOfRange
//	EXP001    Empty table           table.ErrEmptyTable
//	EXP002    Unknown format        table.ErrUnknownFormat
//	TBL001    No table              table.ErrNoTable
//	FETCH001  Empty identifier      fetch.ErrEmptyIdentifier
//	FETCH002  Response too large    fetch.ErrResponseTooLarge
//	FETCH003  Upstream error        fetch.ErrUpstream
//	FETCH004  Busy                  ErrTooManyFetches
//	FETCH005  Fetch in progress     ErrFetchInProgress
//	FETCH006  Unreachable           "connection refused", "no such host"
//	HIST001   History disabled      ErrHistoryDisabled
//	HIST002   Snapshot not found    ErrSnapshotNotFound
//	REQ001    Cancelled             context.Canceled
//	REQ002    Timed out             context.DeadlineExceeded, "timeout"
//	REQ003    Bad request           "invalid request"
//	RATE001   Rate limited          "rate limit"
//	ERR000    Anything else; check the logs for the original error.

import (
	"context"
	"errors"
	"strings"

	"github.com/JonMunkholm/trackexport/internal/fetch"
	"github.com/JonMunkholm/trackexport/internal/table"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened (user-friendly)
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

// errorMapping ties a user message to the sentinels and text patterns that
// produce it. Patterns are lower case.
type errorMapping struct {
	targets  []error
	patterns []string
	msg      UserMessage
}

// errorMappings is checked in order: all sentinels first, then all patterns.
var errorMappings = []errorMapping{
	// Table engine
	{
		targets:  []error{table.ErrMalformedInput},
		patterns: []string{"malformed input"},
		msg:      UserMessage{"The fetched data is not a valid table", "Check the link and try again", "PARSE001"},
	},
	{
		targets:  []error{table.ErrIndexOutOfRange},
		patterns: []string{"column index out of range"},
		msg:      UserMessage{"That column does not exist", "Reload the page and pick a column from the header", "SORT001"},
	},
	{
		targets:  []error{table.ErrEmptyTable},
		patterns: []string{"empty table"},
		msg:      UserMessage{"There is no header row to export", "Fetch a table before exporting", "EXP001"},
	},
	{
		targets:  []error{table.ErrUnknownFormat},
		patterns: []string{"unknown export format"},
		msg:      UserMessage{"Export format is not supported", "Choose txt, csv, xlsx or parquet", "EXP002"},
	},
	{
		targets:  []error{table.ErrNoTable},
		patterns: []string{"no table loaded"},
		msg:      UserMessage{"Nothing has been fetched yet", "Enter an artist link and fetch first", "TBL001"},
	},

	// Fetch
	{
		targets:  []error{fetch.ErrEmptyIdentifier},
		patterns: []string{"empty identifier"},
		msg:      UserMessage{"No artist link was entered", "Paste an artist link and try again", "FETCH001"},
	},
	{
		targets:  []error{fetch.ErrResponseTooLarge},
		patterns: []string{"response too large"},
		msg:      UserMessage{"The track service sent too much data", "Try a different artist", "FETCH002"},
	},
	{
		targets:  []error{fetch.ErrUpstream},
		patterns: []string{"upstream error"},
		msg:      UserMessage{"The track service returned an error", "Check the link or try again later", "FETCH003"},
	},
	{
		targets:  []error{ErrTooManyFetches},
		patterns: []string{"too many concurrent fetches"},
		msg:      UserMessage{"The server is busy with other fetches", "Please wait a moment and try again", "FETCH004"},
	},
	{
		targets:  []error{ErrFetchInProgress},
		patterns: []string{"fetch already in progress"},
		msg:      UserMessage{"A fetch is already running", "Wait for it to finish", "FETCH005"},
	},
	{
		patterns: []string{"connection refused", "no such host"},
		msg:      UserMessage{"The track service could not be reached", "Please try again in a few moments", "FETCH006"},
	},

	// History
	{
		targets:  []error{ErrHistoryDisabled},
		patterns: []string{"history disabled"},
		msg:      UserMessage{"Fetch history is not available", "Ask the administrator to configure a database", "HIST001"},
	},
	{
		targets:  []error{ErrSnapshotNotFound},
		patterns: []string{"snapshot not found"},
		msg:      UserMessage{"That history entry no longer exists", "Pick another entry or fetch again", "HIST002"},
	},

	// Request lifecycle
	{
		targets:  []error{context.Canceled},
		patterns: []string{"context canceled"},
		msg:      UserMessage{"Request was cancelled", "Please try again", "REQ001"},
	},
	{
		targets:  []error{context.DeadlineExceeded},
		patterns: []string{"deadline exceeded", "timeout"},
		msg:      UserMessage{"Request timed out", "Please try again later", "REQ002"},
	},
	{
		patterns: []string{"invalid request"},
		msg:      UserMessage{"The request could not be read", "Check the submitted data and try again", "REQ003"},
	},

	// Rate limiting
	{
		patterns: []string{"rate limit"},
		msg:      UserMessage{"Too many requests", "Please wait a moment before trying again", "RATE001"},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message. A nil
// error maps to the zero UserMessage.
//
// Example:
//
//	msg := MapError(table.ErrNoTable)
//	// msg.Code == "TBL001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, m := range errorMappings {
		for _, target := range m.targets {
			if errors.Is(err, target) {
				return m.msg
			}
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, m := range errorMappings {
		for _, p := range m.patterns {
			if strings.Contains(errStr, p) {
				return m.msg
			}
		}
	}

	return defaultMessage
}

// IsUserFacing reports whether err maps to a specific message rather than ERR000.
func IsUserFacing(err error) bool {
	return err != nil && MapError(err).Code != defaultMessage.Code
}
