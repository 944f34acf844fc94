package utils

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger is a thin structured-logging facade over zerolog. Call sites pass
// alternating key/value pairs after the message.
type Logger struct {
	l zerolog.Logger
}

func NewLogger() *Logger {
	return newLogger(os.Stdout, os.Getenv("LOG_LEVEL"))
}

func NewLoggerWithLevel(level string) *Logger {
	return newLogger(os.Stdout, level)
}

func newLogger(w io.Writer, level string) *Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	output := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	return &Logger{
		l: zerolog.New(output).Level(parseLevel(level)).With().Timestamp().Logger(),
	}
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (lg *Logger) Debug(msg string, kv ...any) { withFields(lg.l.Debug(), kv).Msg(msg) }
func (lg *Logger) Info(msg string, kv ...any)  { withFields(lg.l.Info(), kv).Msg(msg) }
func (lg *Logger) Warn(msg string, kv ...any)  { withFields(lg.l.Warn(), kv).Msg(msg) }
func (lg *Logger) Error(msg string, kv ...any) { withFields(lg.l.Error(), kv).Msg(msg) }

func withFields(ev *zerolog.Event, kv []any) *zerolog.Event {
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		ev = ev.Interface(key, kv[i+1])
	}
	return ev
}
