package web

// errors.go provides unified error response handling for the web layer.
//
// Every error is logged with its technical detail and request id, then
// mapped via service.MapError to a user message and rendered as JSON for API
// routes or as an HTML alert for the upload page.

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JonMunkholm/fixedwidth/internal/fixed"
	"github.com/JonMunkholm/fixedwidth/internal/logging"
	"github.com/JonMunkholm/fixedwidth/internal/service"
	"github.com/JonMunkholm/fixedwidth/internal/web/templates"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor picks the HTTP status for an error returned by the service.
func statusFor(err error) int {
	var (
		lineErr *fixed.LineLengthError
		convErr *fixed.TypeConversionError
		cfgErr  *fixed.ConfigurationError
	)
	switch {
	case errors.Is(err, service.ErrNoFile), errors.Is(err, service.ErrNoLayout), errors.Is(err, errInvalidForm):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, service.ErrTooManyReads), errors.Is(err, service.ErrNoDatabase):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	case errors.As(err, &lineErr), errors.As(err, &convErr), errors.As(err, &cfgErr),
		errors.Is(err, io.ErrUnexpectedEOF):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes the matching user message.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	userMsg := service.MapError(err)

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		level = slog.LevelError
	}
	logging.FromContext(r.Context()).Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	if errors.Is(err, service.ErrTooManyReads) {
		w.Header().Set("Retry-After", "5")
	}

	if wantsJSON(r) {
		writeJSON(w, status, ErrorResponse{
			Error:   userMsg.Message,
			Message: userMsg.Message,
			Action:  userMsg.Action,
			Code:    userMsg.Code,
		})
		return
	}
	s.renderErrorHTML(w, r, userMsg, status)
}

// renderErrorHTML renders the error alert, as a fragment for scripted
// requests and as a page otherwise.
func (s *Server) renderErrorHTML(w http.ResponseWriter, r *http.Request, msg service.UserMessage, status int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	alert := templates.ErrorAlert(msg.Message, msg.Action, msg.Code)
	if !isHTMX(r) {
		alert = templates.Page("Error", alert)
	}
	if err := alert.Render(r.Context(), w); err != nil {
		slog.Error("render error alert", "error", err)
	}
}

// isHTMX checks if the request was sent by the page script.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON checks if the client prefers JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	// API routes default to JSON
	return strings.HasPrefix(r.URL.Path, "/api/")
}
