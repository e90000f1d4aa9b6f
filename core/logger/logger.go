package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"time"
)

// LogEntry is one audit record. Exactly one event field is set.
type LogEntry struct {
	TimestampMicros int64  `json:"timestamp_micros"`
	SessionID       string `json:"session_id,omitempty"`

	LoginAttempt *LoginAttempt `json:"login_attempt,omitempty"`
	CommandRun   *CommandRun   `json:"command_run,omitempty"`
	SessionEnd   *SessionEnd   `json:"session_end,omitempty"`
}

// Time returns the entry's timestamp.
func (le *LogEntry) Time() time.Time {
	return time.UnixMicro(le.TimestampMicros)
}

// OperationResult is the outcome of a logged operation.
type OperationResult string

const (
	ResultSuccess OperationResult = "SUCCESS"
	ResultFailure OperationResult = "FAILURE"
)

// LoginAttempt records one authentication attempt against the SSH
// front end, successful or not.
type LoginAttempt struct {
	Result               OperationResult `json:"result"`
	Username             string          `json:"username"`
	Password             string          `json:"password,omitempty"`
	RemoteAddr           string          `json:"remote_addr,omitempty"`
	EnvironmentVariables []string        `json:"environment_variables,omitempty"`
	RawCommand           string          `json:"raw_command,omitempty"`
}

// CommandRun records one line the shell evaluated.
type CommandRun struct {
	// Line is the raw input before expansion.
	Line string `json:"line"`
	// Status is the line's outcome, -1 when the evaluator failed.
	Status int `json:"status"`
	// Error holds the parse error for lines that never ran.
	Error string `json:"error,omitempty"`
}

// SessionEnd records the end of a shell session.
type SessionEnd struct {
	DurationMicros int64 `json:"duration_micros,omitempty"`
	ExitStatus     int   `json:"exit_status"`
}

// LogType identifies one loggable event.
type LogType interface{ isLogType() }

func (*LoginAttempt) isLogType() {}
func (*CommandRun) isLogType()   {}
func (*SessionEnd) isLogType()   {}

// LogRecorder is a callback that stores events in an external datastore.
type LogRecorder func(le *LogEntry) error

// Logger captures shell interaction events.
type Logger struct {
	Record LogRecorder
}

// NewJSONLinesLogRecorder creates a Logger that exports logs in newline
// delimited JSON object format.
func NewJSONLinesLogRecorder(w io.Writer) *Logger {
	return &Logger{
		Record: func(le *LogEntry) error {
			entry, err := json.Marshal(le)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(w, string(entry))
			return err
		},
	}
}

func (l *Logger) recordLogType(sessionID string, event LogType) error {
	le := &LogEntry{
		TimestampMicros: time.Now().UnixMicro(),
		SessionID:       sessionID,
	}

	switch ev := event.(type) {
	case *LoginAttempt:
		le.LoginAttempt = ev
	case *CommandRun:
		le.CommandRun = ev
	case *SessionEnd:
		le.SessionEnd = ev
	default:
		return fmt.Errorf("unknown event type %T", event)
	}

	return l.Record(le)
}

// NewSession creates a logger with attached session ID.
func (l *Logger) NewSession() *SessionLogger {
	return &SessionLogger{Logger: l, sessionID: fmt.Sprintf("%d", rand.Uint64())}
}

// Sessionless creates a logger with no session ID, for events that
// happen outside any session.
func (l *Logger) Sessionless() *SessionLogger {
	return &SessionLogger{Logger: l, sessionID: ""}
}

// SessionLogger logs events with a shared session ID. A nil
// SessionLogger discards everything, so callers never need to guard
// their audit hooks.
type SessionLogger struct {
	*Logger
	sessionID string
}

// SessionID returns the identifier shared by this session's events.
func (l *SessionLogger) SessionID() string {
	if l == nil {
		return ""
	}
	return l.sessionID
}

func (l *SessionLogger) Record(event LogType) error {
	if l == nil || l.Logger == nil {
		return nil
	}
	return l.recordLogType(l.sessionID, event)
}

// ReadJSONLinesLog parses a newline delimited JSON log.
func ReadJSONLinesLog(r io.Reader, handler func(le *LogEntry)) error {
	decoder := json.NewDecoder(r)
	for decoder.More() {
		var logEntry LogEntry
		if err := decoder.Decode(&logEntry); err != nil {
			return err
		}
		handler(&logEntry)
	}
	return nil
}
