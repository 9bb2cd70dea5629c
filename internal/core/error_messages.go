package core

// error_messages.go maps technical errors to messages users can act on.
//
// Each message carries a code users can quote to support staff:
//
//	LAS001 - File could not be opened (las.ErrOpen)
//	LAS002 - File could not be read or decoded (las.ErrRead)
//	LAS003 - No "~" section titles found (las.ErrSplit)
//	LAS004 - Version section missing or VERS unrecognized (las.ErrVersion)
//	LAS005 - Some lines of a section did not parse (las.ErrParse)
//	LAS006 - Required sections or mnemonics missing (las.ErrValidate)
//	LAS007 - Export version not supported (las.ErrUnsupportedVersion)
//
//	FILE001 - File too large          FILE004 - No file provided
//	FILE003 - Encoding error          FILE005 - Empty file
//	FILE006 - Stored file not found
//
//	UPL002 - Too many uploads         UPL004 - Request cancelled
//	UPL005 - Request timed out
//
//	DB004-DB007 - Database connectivity, matched by message text
//	RATE001     - Rate limited
//	ERR000      - Anything else; check the logs for the technical error
//
// Sentinel errors are matched with errors.Is first, in table order, so the
// most specific cause wins even when it is wrapped in a stage error. Errors
// from drivers that carry no sentinel fall back to case-insensitive
// substring patterns.

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/lasfile/internal/las"
	"github.com/JonMunkholm/lasfile/internal/lasio"
	"github.com/JonMunkholm/lasfile/internal/store"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"`
	Action  string `json:"action"`
	Code    string `json:"code"`
}

type sentinelMessage struct {
	target error
	msg    UserMessage
}

var sentinelMessages = []sentinelMessage{
	{lasio.ErrTooLarge, UserMessage{
		Message: "File exceeds the maximum upload size",
		Action:  "Split the log into smaller depth ranges",
		Code:    "FILE001",
	}},
	{lasio.ErrInvalidUTF8, UserMessage{
		Message: "File contains bytes that are not valid UTF-8",
		Action:  "Upload with encoding=windows-1252 or latin1, or save the file as UTF-8",
		Code:    "FILE003",
	}},
	{lasio.ErrUnknownEncoding, UserMessage{
		Message: "Unknown text encoding requested",
		Action:  "Use auto, utf-8, utf-8-lossy, windows-1252 or latin1",
		Code:    "FILE003",
	}},
	{ErrNoFile, UserMessage{
		Message: "No file was selected",
		Action:  "Please select a LAS file to upload",
		Code:    "FILE004",
	}},
	{ErrEmptyFile, UserMessage{
		Message: "The uploaded file is empty",
		Action:  "Please upload a LAS file with at least a version section",
		Code:    "FILE005",
	}},
	{store.ErrNotFound, UserMessage{
		Message: "File not found",
		Action:  "It may have been deleted. Refresh the file list",
		Code:    "FILE006",
	}},
	{las.ErrOpen, UserMessage{
		Message: "The file could not be opened",
		Action:  "Check the path and file permissions",
		Code:    "LAS001",
	}},
	{las.ErrRead, UserMessage{
		Message: "The file could not be read",
		Action:  "Check that the file is a complete text file",
		Code:    "LAS002",
	}},
	{las.ErrMissingSection, UserMessage{
		Message: "Required LAS sections are missing",
		Action:  "A LAS file needs ~V, ~W, ~C and ~A sections",
		Code:    "LAS006",
	}},
	{las.ErrSplit, UserMessage{
		Message: "No LAS sections were found",
		Action:  "LAS files start with a ~VERSION INFORMATION section",
		Code:    "LAS003",
	}},
	{las.ErrVersion, UserMessage{
		Message: "The LAS version could not be determined",
		Action:  "Add a ~V section with VERS set to 1.2, 2.0 or 3.0",
		Code:    "LAS004",
	}},
	{las.ErrParse, UserMessage{
		Message: "Some lines could not be parsed",
		Action:  "Review the reported lines; other sections were loaded",
		Code:    "LAS005",
	}},
	{las.ErrValidate, UserMessage{
		Message: "The file failed validation",
		Action:  "Run the check endpoint with all=true to list every problem",
		Code:    "LAS006",
	}},
	{las.ErrUnsupportedVersion, UserMessage{
		Message: "Export to this LAS version is not supported",
		Action:  "Export as version 1.2 or 2.0",
		Code:    "LAS007",
	}},
	{ErrTooManyIngests, UserMessage{
		Message: "System is busy processing other uploads",
		Action:  "Please wait a moment and try again",
		Code:    "UPL002",
	}},
	{context.Canceled, UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "UPL004",
	}},
	{context.DeadlineExceeded, UserMessage{
		Message: "Request timed out",
		Action:  "Try uploading a smaller file or check your connection",
		Code:    "UPL005",
	}},
}

// errorPattern maps a lowercased substring to a message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns are tried in order after the sentinels.
var errorPatterns = []errorPattern{
	{"connection refused", UserMessage{
		Message: "Unable to connect to database",
		Action:  "Please try again in a few moments",
		Code:    "DB004",
	}},
	{"connection reset", UserMessage{
		Message: "Database connection was interrupted",
		Action:  "Please try again",
		Code:    "DB005",
	}},
	{"timeout", UserMessage{
		Message: "Operation timed out",
		Action:  "Try uploading a smaller file or try again later",
		Code:    "DB006",
	}},
	{"deadlock", UserMessage{
		Message: "Database was busy with conflicting operations",
		Action:  "Please try again",
		Code:    "DB007",
	}},
	{"database is locked", UserMessage{
		Message: "Database was busy with conflicting operations",
		Action:  "Please try again",
		Code:    "DB007",
	}},
	{"rate limit", UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
//
//	f := lasio.Open("missing.las", lasio.Options{})
//	msg := MapError(f.Err())
//	// msg.Code == "LAS001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}
	for _, sm := range sentinelMessages {
		if errors.Is(err, sm.target) {
			return sm.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError renders "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to something other than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error (for logs) with its user message.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err. It returns nil for a nil error.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{Technical: err, User: MapError(err)}
}
