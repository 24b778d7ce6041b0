package errs

import (
	"errors"
	"fmt"
	"sync"
)

// Severity classifies a recorded error. Warnings describe conditions the
// builder tolerates (unreadable subtrees, skipped members); fatal entries
// stop the current operation.
type Severity int

const (
	SeverityWarn Severity = iota
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityWarn:
		return "WARN"
	case SeverityFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// Entry is a single recorded error with its severity, the underlying OS or
// builder error, a short message and the path it applies to.
type Entry struct {
	Severity Severity
	Err      error
	Message  string
	Path     string
}

func (e Entry) Error() string {
	text := e.Message
	if e.Path != "" {
		text = fmt.Sprintf("%s: %s", text, e.Path)
	}
	if e.Err != nil {
		text = fmt.Sprintf("%s: %v", text, e.Err)
	}

	return text
}

// Unwrap exposes the underlying error for errors.Is checks.
func (e Entry) Unwrap() error {
	return e.Err
}

// Accumulator collects errors raised during a build. The traversal engine
// and the visitor both record through Set; after a visitor signals an error,
// the engine consults IsFatal to decide between skipping the entry and
// aborting the walk.
type Accumulator struct {
	mu      sync.RWMutex
	entries []Entry
}

// Set records a single error entry.
func (a *Accumulator) Set(severity Severity, err error, message, path string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.entries = append(a.entries, Entry{
		Severity: severity,
		Err:      err,
		Message:  message,
		Path:     path,
	})
}

// IsFatal reports whether the most recently recorded entry is fatal.
// With no entries recorded it reports true, so a visitor error without a
// recorded downgrade always aborts.
func (a *Accumulator) IsFatal() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if len(a.entries) == 0 {
		return true
	}

	return a.entries[len(a.entries)-1].Severity == SeverityFatal
}

// Last returns the most recently recorded entry.
func (a *Accumulator) Last() (Entry, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if len(a.entries) == 0 {
		return Entry{}, false
	}

	return a.entries[len(a.entries)-1], true
}

// Entries returns a copy of all recorded entries in order.
func (a *Accumulator) Entries() []Entry {
	a.mu.RLock()
	defer a.mu.RUnlock()

	entries := make([]Entry, len(a.entries))
	copy(entries, a.entries)

	return entries
}

// Warnings returns only the entries recorded at SeverityWarn.
func (a *Accumulator) Warnings() []Entry {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var warnings []Entry
	for _, entry := range a.entries {
		if entry.Severity == SeverityWarn {
			warnings = append(warnings, entry)
		}
	}

	return warnings
}

// Err joins all recorded entries into a single error, or nil when none
// were recorded.
func (a *Accumulator) Err() error {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if len(a.entries) == 0 {
		return nil
	}

	joined := make([]error, len(a.entries))
	for i, entry := range a.entries {
		joined[i] = entry
	}

	return errors.Join(joined...)
}

// Clear drops all recorded entries.
func (a *Accumulator) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.entries = nil
}

func newError(err error, format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if err != nil {
		return fmt.Errorf("tarbuild: %s: %w", text, err)
	}

	return errors.New("tarbuild: " + text)
}
