// Package logging builds the slog logger used by the server and the CLI.
package logging

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/azybler/bike_router/pkg/errs"
)

// Format names accepted by New.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// New returns a logger writing to w at the given level ("debug", "info",
// "warn" or "error") in the given format.
func New(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("%w: log level %q", errs.ErrInvalidArgument, level)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var h slog.Handler
	switch format {
	case FormatText, "":
		h = slog.NewTextHandler(w, opts)
	case FormatJSON:
		h = slog.NewJSONHandler(w, opts)
	default:
		return nil, fmt.Errorf("%w: log format %q", errs.ErrInvalidArgument, format)
	}
	return slog.New(h), nil
}
