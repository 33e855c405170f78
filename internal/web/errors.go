package web

// errors.go renders errors for the three kinds of clients the server has.
//
// The technical error is always logged with the request ID. The client
// only sees the coded message from core.MapError, plus the offending row
// for validation failures, rendered as an HTMX fragment, JSON or text.

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/cssbattle/championship/internal/core"
	"github.com/cssbattle/championship/internal/logging"
	"github.com/cssbattle/championship/internal/web/templates"
)

var (
	errNoFile         = errors.New("no file provided")
	errRateLimited    = errors.New("rate limit exceeded")
	errUnknownPref    = errors.New("unknown preference")
	errInvalidRequest = errors.New("invalid request body")
)

// ErrorResponse is the JSON body of every API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
	Detail  string `json:"detail,omitempty"`
}

// respondError logs err and writes its user-facing form with statusCode.
func respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := core.MapError(err)
	detail := core.Detail(err)

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	if statusCode >= http.StatusInternalServerError || !core.IsUserFacing(err) {
		logger.Error("request error", attrs...)
	} else {
		logger.Info("request rejected", attrs...)
	}

	switch {
	case isHTMX(r):
		renderErrorPartial(w, r, userMsg, detail, statusCode)
	case wantsJSON(r):
		writeJSONStatus(w, statusCode, ErrorResponse{
			Error:   userMsg.Message,
			Message: userMsg.Message,
			Action:  userMsg.Action,
			Code:    userMsg.Code,
			Detail:  detail,
		})
	default:
		http.Error(w, core.FormatUserError(err), statusCode)
	}
}

// renderErrorPartial writes an alert fragment. HTMX does not swap non-2xx
// responses by default, so the status travels in a header and the body is
// sent with 200.
func renderErrorPartial(w http.ResponseWriter, r *http.Request, msg core.UserMessage, detail string, statusCode int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Error-Status", http.StatusText(statusCode))
	w.Header().Set("X-Error-Code", msg.Code)
	w.WriteHeader(http.StatusOK)
	if err := templates.ErrorAlert(msg.Message, msg.Action, msg.Code, detail).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render error alert", "error", err)
	}
}

// statusFor picks the HTTP status for an import or preview failure.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrMissingRequiredField),
		errors.Is(err, core.ErrInvalidEmailFormat),
		errors.Is(err, core.ErrUnknownGroup):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrDecode),
		errors.Is(err, core.ErrFileRead),
		errors.Is(err, errNoFile):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrTooManyImports):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// isHTMX reports whether the request was sent by htmx.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON reports whether the client prefers a JSON response. API routes
// default to JSON.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	return strings.HasPrefix(r.URL.Path, "/api/")
}
