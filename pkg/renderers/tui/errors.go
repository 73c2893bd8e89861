package tui

import "errors"

var (
	// ErrAborted signals the user interrupted a prompt (Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrUnsupportedPage is returned for pages other than forms.
	ErrUnsupportedPage = errors.New("tui: only form pages can be prompted")
	// ErrTooManyAttempts is returned when validation keeps failing.
	ErrTooManyAttempts = errors.New("tui: too many invalid attempts")
)
