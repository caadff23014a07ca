package logger

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// Logger is the leveled key/value logger used across the service.
type Logger interface {
	Debug(msg string, keyvals ...interface{})
	Info(msg string, keyvals ...interface{})
	Warn(msg string, keyvals ...interface{})
	Error(msg string, keyvals ...interface{})
}

type level int

const (
	levelDebug level = iota
	levelInfo
	levelWarn
	levelError
)

var levelNames = map[level]string{
	levelDebug: "DEBUG",
	levelInfo:  "INFO",
	levelWarn:  "WARN",
	levelError: "ERROR",
}

type stdLogger struct {
	out   *log.Logger
	err   *log.Logger
	level level
}

// NewLogger creates a logger that writes to stdout/stderr at the given
// minimum level. Unknown level strings fall back to info.
func NewLogger(minLevel string) Logger {
	l := levelInfo

	switch strings.ToLower(minLevel) {
	case "debug":
		l = levelDebug
	case "info":
		l = levelInfo
	case "warn":
		l = levelWarn
	case "error":
		l = levelError
	}

	return &stdLogger{
		out:   log.New(os.Stdout, "", log.Ldate|log.Ltime),
		err:   log.New(os.Stderr, "", log.Ldate|log.Ltime),
		level: l,
	}
}

func (l *stdLogger) Debug(msg string, keyvals ...interface{}) {
	l.write(levelDebug, msg, keyvals...)
}

func (l *stdLogger) Info(msg string, keyvals ...interface{}) {
	l.write(levelInfo, msg, keyvals...)
}

func (l *stdLogger) Warn(msg string, keyvals ...interface{}) {
	l.write(levelWarn, msg, keyvals...)
}

func (l *stdLogger) Error(msg string, keyvals ...interface{}) {
	l.write(levelError, msg, keyvals...)
}

func (l *stdLogger) write(lv level, msg string, keyvals ...interface{}) {
	if lv < l.level {
		return
	}

	dst := l.out
	if lv >= levelError {
		dst = l.err
	}

	dst.Println(levelNames[lv] + ": " + formatMsg(msg, keyvals...))
}

func formatMsg(msg string, keyvals ...interface{}) string {
	if len(keyvals) == 0 {
		return msg
	}

	var b strings.Builder
	b.WriteString(msg)

	for i := 0; i < len(keyvals); i += 2 {
		key := fmt.Sprintf("%v", keyvals[i])
		value := "missing"

		if i+1 < len(keyvals) {
			value = fmt.Sprintf("%v", keyvals[i+1])
		}

		b.WriteString(" " + key + "=" + value)
	}

	return b.String()
}

// Nop returns a logger that discards everything. Useful in tests.
func Nop() Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
