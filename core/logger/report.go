package logger

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Report holds statistics about the logged events.
type Report struct {
	LogEntries     int        `json:"log_entries"`
	InvalidEntries StrCounter `json:"unknown_log_entries,omitempty"`

	LoginAttempt LoginAttemptReport `json:"login_attempt_report"`
	CommandRun   CommandRunReport   `json:"command_run_report"`
	Session      SessionReport      `json:"session_report"`
}

func (r *Report) Update(le *LogEntry) {
	r.LogEntries++

	switch {
	case le.LoginAttempt != nil:
		r.LoginAttempt.update(le.LoginAttempt)
	case le.CommandRun != nil:
		r.CommandRun.update(le.CommandRun)
	case le.SessionEnd != nil:
		r.Session.update(le.SessionEnd)
	default:
		r.InvalidEntries.Increment("empty")
	}
}

type LoginAttemptReport struct {
	// List of passwords and their counts.
	Passwords StrCounter `json:"passwords"`
	// List of usernames and their counts.
	Usernames StrCounter `json:"usernames"`
	// List of login attempt results and their counts.
	Results StrCounter `json:"results"`
}

func (r *LoginAttemptReport) update(la *LoginAttempt) {
	r.Passwords.Increment(la.Password)
	r.Usernames.Increment(la.Username)
	r.Results.Increment(string(la.Result))
}

type CommandRunReport struct {
	// Count of lines by their leading word.
	Verbs StrCounter `json:"verbs"`
	// Count of lines by exit status.
	Statuses StrCounter `json:"statuses"`
	// Count of lines that failed to parse, by error.
	ParseErrors StrCounter `json:"parse_errors,omitempty"`
}

func (r *CommandRunReport) update(rc *CommandRun) {
	if verb := firstWord(rc.Line); verb != "" {
		r.Verbs.Increment(verb)
	}
	r.Statuses.Increment(fmt.Sprintf("%d", rc.Status))
	if rc.Error != "" {
		r.ParseErrors.Increment(rc.Error)
	}
}

type SessionReport struct {
	Count int `json:"count"`
	// Total connected time across all sessions.
	TotalDuration string `json:"total_duration,omitempty"`

	totalDuration time.Duration
}

func (r *SessionReport) update(se *SessionEnd) {
	r.Count++
	r.totalDuration += time.Duration(se.DurationMicros) * time.Microsecond
	r.TotalDuration = r.totalDuration.String()
}

func firstWord(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// InteractionReport groups events by session so one attacker's full
// command history reads in order.
type InteractionReport struct {
	// Map of sessionID -> interactions
	interactions map[string]*InteractiveSession
}

type InteractiveSession struct {
	Login struct {
		Username   string `json:"username"`
		Password   string `json:"password,omitempty"`
		RemoteAddr string `json:"remote_addr,omitempty"`
	} `json:"login"`
	LogEntries int `json:"log_entries"`

	Commands []string `json:"commands"`
}

func (i *InteractiveSession) Update(le *LogEntry) {
	i.LogEntries++

	switch {
	case le.LoginAttempt != nil:
		i.Login.Username = le.LoginAttempt.Username
		i.Login.Password = le.LoginAttempt.Password
		i.Login.RemoteAddr = le.LoginAttempt.RemoteAddr
	case le.CommandRun != nil:
		i.Commands = append(i.Commands, le.CommandRun.Line)
	}
}

func (i *InteractionReport) init() {
	if i.interactions == nil {
		i.interactions = make(map[string]*InteractiveSession)
	}
}

// MarshalJSON implements a custom JSON marshaler.
func (i *InteractionReport) MarshalJSON() ([]byte, error) {
	i.init()

	return json.Marshal(i.interactions)
}

func (i *InteractionReport) Update(le *LogEntry) {
	i.init()

	sessionID := le.SessionID
	if sessionID == "" {
		return
	}
	report, ok := i.interactions[sessionID]
	if !ok {
		report = &InteractiveSession{}
		i.interactions[sessionID] = report
	}

	report.Update(le)
}

// StrCounter counts the number of strings seen.
type StrCounter struct {
	internal map[string]int
}

// Increment adds one to the given key.
func (s *StrCounter) Increment(toAdd string) {
	if s.internal == nil {
		s.internal = make(map[string]int)
	}

	s.internal[toAdd]++
}

// Count returns the number of times the key was seen.
func (s *StrCounter) Count(key string) int {
	return s.internal[key]
}

// Keys returns the seen strings sorted by descending count.
func (s *StrCounter) Keys() []string {
	keys := make([]string, 0, len(s.internal))
	for k := range s.internal {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if s.internal[keys[i]] == s.internal[keys[j]] {
			return keys[i] < keys[j]
		}
		return s.internal[keys[i]] > s.internal[keys[j]]
	})
	return keys
}

// MarshalJSON implements a custom JSON marshaler.
func (s StrCounter) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.internal)
}
