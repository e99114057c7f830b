package notify

import (
	"sync"
	"testing"

	"github.com/vietddude/guardian/internal/core/domain"
)

type recordingNotifier struct {
	mu    sync.Mutex
	notes []Notification
}

func (r *recordingNotifier) add(level Level, title, body string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, Notification{Level: level, Title: title, Body: body})
}

func (r *recordingNotifier) ShowError(t, b string)   { r.add(LevelError, t, b) }
func (r *recordingNotifier) ShowWarning(t, b string) { r.add(LevelWarning, t, b) }
func (r *recordingNotifier) ShowInfo(t, b string)    { r.add(LevelInfo, t, b) }
func (r *recordingNotifier) ShowSuccess(t, b string) { r.add(LevelSuccess, t, b) }

func TestCompose(t *testing.T) {
	fields := map[string]string{"password": "Password too short", "email": "Invalid email format"}
	tests := []struct {
		name     string
		category domain.ErrorCategory
		d        domain.ErrorDescriptor
		service  string
		want     Notification
	}{
		{
			"auth", domain.CategoryAuthentication, domain.ErrorDescriptor{}, "",
			Notification{LevelError, TitleAuthentication, "msg"},
		},
		{
			"validation", domain.CategoryValidation, domain.ErrorDescriptor{FieldErrors: fields}, "",
			Notification{LevelError, TitleValidation, "email: Invalid email format, password: Password too short"},
		},
		{
			"validation without fields", domain.CategoryValidation, domain.ErrorDescriptor{}, "",
			Notification{LevelError, TitleValidation, "msg"},
		},
		{
			"rate limit", domain.CategoryRateLimit, domain.ErrorDescriptor{}, "",
			Notification{LevelWarning, TitleRateLimit, "msg"},
		},
		{
			"service named", domain.CategoryServiceUnavailable, domain.ErrorDescriptor{}, "Quiz",
			Notification{LevelWarning, "Quiz Service Issue", "msg"},
		},
		{
			"service anonymous", domain.CategoryServiceUnavailable, domain.ErrorDescriptor{}, "",
			Notification{LevelWarning, "Service Issue", "msg"},
		},
		{
			"generic", domain.CategoryServer, domain.ErrorDescriptor{Message: "boom"}, "",
			Notification{LevelError, TitleGeneric, "boom"},
		},
	}

	for _, tt := range tests {
		if got := Compose(tt.category, tt.d, "msg", tt.service); got != tt.want {
			t.Errorf("%s: Compose() = %+v, want %+v", tt.name, got, tt.want)
		}
	}
}

func TestSend_RoutesByLevel(t *testing.T) {
	rec := &recordingNotifier{}
	for _, level := range []Level{LevelError, LevelWarning, LevelInfo, LevelSuccess} {
		Send(rec, Notification{Level: level, Title: string(level)})
	}

	if len(rec.notes) != 4 {
		t.Fatalf("expected 4 notifications, got %d", len(rec.notes))
	}
	for _, n := range rec.notes {
		if string(n.Level) != n.Title {
			t.Errorf("notification %q routed to %q", n.Title, n.Level)
		}
	}
}

func TestSend_NilNotifier(t *testing.T) {
	Send(nil, Notification{Level: LevelError, Title: "x"})
}
