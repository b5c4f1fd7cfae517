// SPDX-License-Identifier: MPL-2.0

package analysis

import "sync"

const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityWarning
	SeverityError
)

type (
	// Severity classifies a status message for display.
	Severity int

	// StatusMessage is one line of progress shown while an analysis runs.
	StatusMessage struct {
		Text     string   `json:"text"`
		Severity Severity `json:"severity"`
	}

	// StatusSink receives the full message list after every append.
	StatusSink func([]StatusMessage)

	// StatusLog is an append-only, concurrency-safe message list.
	StatusLog struct {
		mu   sync.Mutex
		msgs []StatusMessage
		sink StatusSink
	}
)

func (s Severity) String() string {
	switch s {
	case SeveritySuccess:
		return "success"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "info"
	}
}

// NewStatusLog creates a log that forwards snapshots to sink (which may be nil).
func NewStatusLog(sink StatusSink) *StatusLog {
	return &StatusLog{sink: sink}
}

// Append adds a message and pushes a snapshot to the sink.
func (l *StatusLog) Append(text string, sev Severity) {
	if l == nil {
		return
	}
	l.mu.Lock()
	l.msgs = append(l.msgs, StatusMessage{Text: text, Severity: sev})
	snapshot := append([]StatusMessage(nil), l.msgs...)
	sink := l.sink
	l.mu.Unlock()

	if sink != nil {
		sink(snapshot)
	}
}

// Messages returns a copy of the messages appended so far.
func (l *StatusLog) Messages() []StatusMessage {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]StatusMessage(nil), l.msgs...)
}
