package web

// errors.go maps handler failures to user-facing responses.
//
// The technical error is logged with the request ID. The client gets the
// mapped message and support code, as JSON for /api routes and JSON clients,
// plain text otherwise.

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/JonMunkholm/pricemachine/internal/catalog"
	"github.com/JonMunkholm/pricemachine/internal/logging"
)

var (
	errNotFound      = errors.New("not found")
	errQueryTooLong  = fmt.Errorf("query longer than %d characters", maxQueryLength)
	errRenderFailure = errors.New("render failed")
)

// ErrorResponse is the JSON body of API error responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs err and writes the mapped user message.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	msg := userMessage(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
	)

	if wantsJSON(r) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(ErrorResponse{
			Error:   err.Error(),
			Message: msg.Message,
			Action:  msg.Action,
			Code:    msg.Code,
		})
		return
	}

	http.Error(w, msg.Message+" ("+msg.Code+")", status)
}

// userMessage maps web-level errors first, then falls back to the catalog
// mapping.
func userMessage(err error) catalog.UserMessage {
	switch {
	case errors.Is(err, errNotFound):
		return catalog.UserMessage{
			Message: "The requested page does not exist.",
			Action:  "Use /, /api/search, /api/files or /healthz.",
			Code:    "WEB404",
		}
	case errors.Is(err, errQueryTooLong):
		return catalog.UserMessage{
			Message: "The search query is too long.",
			Action:  fmt.Sprintf("Use at most %d characters.", maxQueryLength),
			Code:    "WEB400",
		}
	}
	return catalog.MapError(err)
}

// wantsJSON reports whether the client should get a JSON error body.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	return strings.HasPrefix(r.URL.Path, "/api/")
}
