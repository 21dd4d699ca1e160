package service

// error_messages.go maps technical errors to user-facing messages with codes
// support staff can look up.
//
// # Fixed-width Errors (FW001-FW099)
//
// Typed errors from the reader, matched with errors.As before any pattern:
//
//	FW001 - Line length: A line does not match the layout's total width
//	        Action: Check the field widths, or enable skipTrailingOverflow
//	FW002 - Conversion: A field cannot be converted to its column type
//	        Action: Fix the value or change the column type in the layout
//	FW003 - Configuration: The layout or read options are invalid
//	        Action: Correct the layout file
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large        Patterns: "file too large", "request body too large"
//	FILE003 - Encoding error        Patterns: "encoding error"
//	FILE004 - No file               Patterns: "no file provided"
//	FILE005 - Empty file            Patterns: "empty file", "unexpected eof"
//	FILE006 - No layout             Patterns: "no layout provided"
//
// # Upload Errors (UPL001-UPL099)
//
//	UPL001 - Invalid request        Patterns: "invalid form"
//	UPL002 - System busy            Patterns: "too many concurrent reads"
//	UPL003 - Rate limited           Patterns: "rate limit exceeded"
//	UPL004 - Request cancelled      Patterns: "context canceled"
//	UPL005 - Request timeout        Patterns: "context deadline exceeded"
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Duplicate key           Patterns: "duplicate key"
//	DB003 - Foreign key             Patterns: "violates foreign key"
//	DB004 - Connection refused      Patterns: "connection refused"
//	DB006 - Timeout                 Patterns: "timeout"
//	DB008 - No database             Patterns: "database not configured"
//	DB009 - Missing table           Patterns: "does not exist"
//
// # Default Error (ERR000)
//
// Fallback when nothing matches; check the logs for the technical error.
//
// Patterns are matched case-insensitively with strings.Contains and the first
// match wins, so specific patterns come before general ones.

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/fixedwidth/internal/fixed"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened (user-friendly)
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// =========================================================================
	// File Errors
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum size limit",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File exceeds the maximum size limit",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "encoding error",
		msg: UserMessage{
			Message: "File contains invalid characters",
			Action:  "Set the layout charset to the file's encoding",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a fixed-width file to upload",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Please upload a file with data lines",
			Code:    "FILE005",
		},
	},
	{
		pattern: "unexpected eof",
		msg: UserMessage{
			Message: "The uploaded file has no header line",
			Action:  "Upload a file with data, or set header: false in the layout",
			Code:    "FILE005",
		},
	},
	{
		pattern: "no layout provided",
		msg: UserMessage{
			Message: "No layout was provided",
			Action:  "Upload or paste a YAML layout describing the fields",
			Code:    "FILE006",
		},
	},

	// =========================================================================
	// Upload Errors
	// =========================================================================
	{
		pattern: "invalid form",
		msg: UserMessage{
			Message: "The request could not be read",
			Action:  "Send a multipart form with layout and file fields",
			Code:    "UPL001",
		},
	},
	{
		pattern: "too many concurrent reads",
		msg: UserMessage{
			Message: "System is busy processing other files",
			Action:  "Please wait a moment and try again",
			Code:    "UPL002",
		},
	},
	{
		pattern: "rate limit exceeded",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a minute and try again",
			Code:    "UPL003",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "UPL005",
		},
	},

	// =========================================================================
	// Database Errors
	// =========================================================================
	{
		pattern: "database not configured",
		msg: UserMessage{
			Message: "Loading into a database is not available",
			Action:  "Set DATABASE_URL and restart the server",
			Code:    "DB008",
		},
	},
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A record with this key already exists",
			Action:  "Load into an empty table or remove the duplicates",
			Code:    "DB001",
		},
	},
	{
		pattern: "violates foreign key",
		msg: UserMessage{
			Message: "Referenced record does not exist",
			Action:  "Ensure parent records are loaded first",
			Code:    "DB003",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "does not exist",
		msg: UserMessage{
			Message: "The target table does not exist",
			Action:  "Enable table creation or choose an existing table",
			Code:    "DB009",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message. Reader
// errors are recognized by type and carry their details; everything else is
// matched against known patterns.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var lineErr *fixed.LineLengthError
	if errors.As(err, &lineErr) {
		return UserMessage{
			Message: fmt.Sprintf("Line %d is %d characters long, the layout expects %d", lineErr.Line, lineErr.Actual, lineErr.Expected),
			Action:  "Check the field widths, or enable skipTrailingOverflow in the layout",
			Code:    "FW001",
		}
	}
	var convErr *fixed.TypeConversionError
	if errors.As(err, &convErr) {
		return UserMessage{
			Message: fmt.Sprintf("Line %d: %q in column %q is not a valid %s", convErr.Line, convErr.Value, convErr.Column, convErr.Type),
			Action:  "Fix the value or change the column type in the layout",
			Code:    "FW002",
		}
	}
	var cfgErr *fixed.ConfigurationError
	if errors.As(err, &cfgErr) {
		return UserMessage{
			Message: "The layout is invalid: " + cfgErr.Error(),
			Action:  "Correct the layout and try again",
			Code:    "FW003",
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

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
