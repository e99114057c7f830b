// Package notify defines the notification sink the error handler and network
// monitor push human readable messages to.
package notify

import (
	"log/slog"

	"github.com/vietddude/guardian/internal/metrics"
)

// Notifier presents messages to the user. Implementations are owned by the
// embedding application.
type Notifier interface {
	ShowError(title, body string)
	ShowWarning(title, body string)
	ShowInfo(title, body string)
	ShowSuccess(title, body string)
}

// Level selects which Notifier method a Notification is sent through.
type Level string

const (
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
)

// Notification is a single title/body pair tagged with a level.
type Notification struct {
	Level Level
	Title string
	Body  string
}

// Send delivers note through n. A nil Notifier is a no-op.
func Send(n Notifier, note Notification) {
	if n == nil {
		return
	}
	metrics.Notifications.WithLabelValues(string(note.Level)).Inc()

	switch note.Level {
	case LevelWarning:
		n.ShowWarning(note.Title, note.Body)
	case LevelInfo:
		n.ShowInfo(note.Title, note.Body)
	case LevelSuccess:
		n.ShowSuccess(note.Title, note.Body)
	default:
		n.ShowError(note.Title, note.Body)
	}
}

// Nop discards every notification.
type Nop struct{}

func (Nop) ShowError(string, string)   {}
func (Nop) ShowWarning(string, string) {}
func (Nop) ShowInfo(string, string)    {}
func (Nop) ShowSuccess(string, string) {}

// Log writes notifications to a slog.Logger. It is the sink used by the CLI.
type Log struct {
	Logger *slog.Logger
}

// NewLog creates a Log notifier. A nil logger uses slog.Default().
func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{Logger: logger.With("component", "notify")}
}

func (l *Log) ShowError(title, body string) {
	l.Logger.Error(title, "body", body)
}

func (l *Log) ShowWarning(title, body string) {
	l.Logger.Warn(title, "body", body)
}

func (l *Log) ShowInfo(title, body string) {
	l.Logger.Info(title, "body", body)
}

func (l *Log) ShowSuccess(title, body string) {
	l.Logger.Info(title, "body", body, "success", true)
}
