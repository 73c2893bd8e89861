package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-admingen/pkg/admin"
	"github.com/goliatone/go-admingen/pkg/crud"
	"github.com/goliatone/go-admingen/pkg/form"
	"github.com/goliatone/go-admingen/pkg/render"
	"github.com/goliatone/go-admingen/pkg/theme"
)

// errorBody is the JSON error envelope. Errors carries per-field messages on
// validation failures.
type errorBody struct {
	Error  string              `json:"error"`
	Errors map[string][]string `json:"errors,omitempty"`
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var statusErr *crud.StatusError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, admin.ErrUnknownEntity), errors.Is(err, crud.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, crud.ErrInvalidID),
		errors.Is(err, render.ErrRendererNotFound),
		errors.Is(err, theme.ErrThemeNotFound),
		errors.Is(err, theme.ErrVariantNotFound):
		return http.StatusBadRequest
	case errors.Is(err, ErrActionDisabled):
		return http.StatusForbidden
	case errors.Is(err, form.ErrInvalid):
		return http.StatusUnprocessableEntity
	case errors.Is(err, form.ErrSubmitPending):
		return http.StatusConflict
	case errors.As(err, &statusErr):
		return statusErr.Code
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeError(w http.ResponseWriter, err error, fields map[string][]string) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	var statusErr *crud.StatusError
	if len(fields) == 0 && errors.As(err, &statusErr) {
		fields = statusErr.Fields
	}
	writeJSON(w, status, errorBody{Error: err.Error(), Errors: fields})
}

// failPage answers an HTML request with a plain error page.
func (s *Server) failPage(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("page failed", zap.Error(err))
	}
	http.Error(w, http.StatusText(status), status)
}

// Flash notices survive the post/redirect/get cycle in a short-lived cookie.
const noticeCookie = "ag_notice"

func setNotice(w http.ResponseWriter, path string, notice crud.Notice) {
	if notice.Message == "" {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     noticeCookie,
		Value:    url.QueryEscape(notice.Level + "|" + notice.Message),
		Path:     path,
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// takeNotice reads and clears the flash notice.
func takeNotice(w http.ResponseWriter, r *http.Request, path string) *crud.Notice {
	cookie, err := r.Cookie(noticeCookie)
	if err != nil || cookie.Value == "" {
		return nil
	}
	http.SetCookie(w, &http.Cookie{Name: noticeCookie, Path: path, MaxAge: -1})
	raw, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return nil
	}
	level, message, ok := strings.Cut(raw, "|")
	if !ok || message == "" {
		return nil
	}
	return &crud.Notice{Level: level, Message: message}
}
