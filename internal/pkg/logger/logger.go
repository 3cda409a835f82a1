// Package logger provides structured JSON logging with redaction of
// recipient contact data, so delivery flow logs never leak addresses.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"
)

// Level represents the severity of a log entry.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	}
	return "INFO"
}

// Logger emits one JSON object per entry with optional PII redaction.
type Logger struct {
	mu     sync.Mutex
	out    io.Writer
	level  Level
	redact bool
}

var defaultLogger = &Logger{out: os.Stderr, level: INFO, redact: true}

// SetLevel sets the minimum level the default logger emits.
func SetLevel(l Level) { defaultLogger.level = l }

// SetRedactPII toggles contact data redaction on the default logger.
func SetRedactPII(r bool) { defaultLogger.redact = r }

// Debug emits a DEBUG entry with alternating key/value fields.
func Debug(msg string, fields ...any) { defaultLogger.emit(DEBUG, msg, fields) }

// Info emits an INFO entry with alternating key/value fields.
func Info(msg string, fields ...any) { defaultLogger.emit(INFO, msg, fields) }

// Warn emits a WARN entry with alternating key/value fields.
func Warn(msg string, fields ...any) { defaultLogger.emit(WARN, msg, fields) }

// Error emits an ERROR entry with alternating key/value fields.
func Error(msg string, fields ...any) { defaultLogger.emit(ERROR, msg, fields) }

func (l *Logger) emit(level Level, msg string, fields []any) {
	if level < l.level {
		return
	}

	entry := map[string]string{
		"time":  time.Now().UTC().Format(time.RFC3339),
		"level": level.String(),
		"msg":   msg,
	}
	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprintf("%v", fields[i])
		val := fmt.Sprintf("%v", fields[i+1])
		if l.redact {
			val = redactValue(key, val)
		}
		entry[key] = val
	}

	line, _ := json.Marshal(entry)
	l.mu.Lock()
	fmt.Fprintln(l.out, string(line))
	l.mu.Unlock()
}

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// redactValue masks contact data. Fields named after recipients or
// emails get masked wholesale; everything else only has embedded
// addresses replaced.
func redactValue(key, val string) string {
	key = strings.ToLower(key)
	if strings.Contains(key, "email") || strings.Contains(key, "recipient") {
		return RedactEmail(val)
	}
	return emailPattern.ReplaceAllStringFunc(val, RedactEmail)
}
