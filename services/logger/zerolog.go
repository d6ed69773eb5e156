// Package logsvc implements core.Logger on zerolog.
package logsvc

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/campuskit/gradebook/core"
)

type ZerologLogger struct {
	log zerolog.Logger
}

var _ core.Logger = (*ZerologLogger)(nil)

// NewZerologLogger builds a logger from the logLevel / logFormat config
// keys. Console format writes human output to stderr; anything else is
// line-delimited JSON.
func NewZerologLogger() *ZerologLogger {
	var level zerolog.Level
	switch core.Conf.GetString("logLevel") {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	default:
		level = zerolog.InfoLevel
	}

	var log zerolog.Logger
	if core.Conf.GetString("logFormat") == "console" {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		log = zerolog.New(os.Stderr)
	}
	log = log.Level(level).With().Timestamp().Logger()
	return &ZerologLogger{log: log}
}

// expected args fmt: alternating key, value pairs; a trailing odd value
// is logged under "arg".
func fields(evt *zerolog.Event, args []interface{}) *zerolog.Event {
	for i := 0; i+1 < len(args); i += 2 {
		evt = evt.Interface(fmt.Sprint(args[i]), args[i+1])
	}
	if len(args)%2 != 0 {
		evt = evt.Interface("arg", args[len(args)-1])
	}
	return evt
}

func (l ZerologLogger) Debug(msg string, args ...interface{}) {
	fields(l.log.Debug(), args).Msg(msg)
}

func (l ZerologLogger) Info(msg string, args ...interface{}) {
	fields(l.log.Info(), args).Msg(msg)
}

func (l ZerologLogger) Warn(msg string, args ...interface{}) {
	fields(l.log.Warn(), args).Msg(msg)
}

func (l ZerologLogger) Error(msg string, args ...interface{}) {
	fields(l.log.Error(), args).Msg(msg)
}

func (l ZerologLogger) Fatal(msg string, args ...interface{}) {
	fields(l.log.Fatal(), args).Msg(msg)
}
