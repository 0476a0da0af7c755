// Package slog provides an embeddable options fragment that wires the
// standard structured logger into a config struct.
package slog

import (
	"io"
	"log/slog"
	"os"
)

// Options configures the default slog logger. Embed it in a config
// struct to expose --log-level and --log-format flags; LogLevel parses
// every form slog.Level understands (INFO, warn, DEBUG+2, ...).
type Options struct {
	LogLevel  slog.Level `cli:"env=LOG_LEVEL,help=log level"`
	LogFormat string     `cli:"env=LOG_FORMAT,default=text,choices='text,json',help=log output format"`
}

func (o *Options) ConfigureWithHandlerOptions(w io.Writer, handlerOpts *slog.HandlerOptions) {
	if handlerOpts == nil {
		handlerOpts = &slog.HandlerOptions{}
	}
	handlerOpts.Level = o.LogLevel

	var handler slog.Handler
	if o.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}
	slog.SetDefault(slog.New(handler))
}

func (o *Options) Configure() {
	o.ConfigureWithHandlerOptions(os.Stderr, nil)
}
