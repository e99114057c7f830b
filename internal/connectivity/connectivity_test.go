package connectivity

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/vietddude/guardian/internal/errhandling/notify"
)

// =============================================================================
// Mocks
// =============================================================================

type recordingNotifier struct {
	mu    sync.Mutex
	notes []notify.Notification
}

func (r *recordingNotifier) add(level notify.Level, title, body string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, notify.Notification{Level: level, Title: title, Body: body})
}

func (r *recordingNotifier) ShowError(t, b string)   { r.add(notify.LevelError, t, b) }
func (r *recordingNotifier) ShowWarning(t, b string) { r.add(notify.LevelWarning, t, b) }
func (r *recordingNotifier) ShowInfo(t, b string)    { r.add(notify.LevelInfo, t, b) }
func (r *recordingNotifier) ShowSuccess(t, b string) { r.add(notify.LevelSuccess, t, b) }

func (r *recordingNotifier) all() []notify.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Notification(nil), r.notes...)
}

type mockDialer struct {
	mu  sync.Mutex
	err error
}

func (d *mockDialer) set(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.err = err
}

func (d *mockDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return nil, d.err
	}
	client, server := net.Pipe()
	server.Close()
	return client, nil
}

// racingSignal flips its state inside Watch, before fn is registered, like
// a platform event that fires while the monitor is starting.
type racingSignal struct {
	mu     sync.Mutex
	online bool
	calls  []string
	emitIn bool // also deliver the flip to fn synchronously
}

func (s *racingSignal) Online() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "online")
	return s.online
}

func (s *racingSignal) Watch(fn func(bool)) func() {
	s.mu.Lock()
	s.calls = append(s.calls, "watch")
	s.online = !s.online
	state := s.online
	s.mu.Unlock()
	if s.emitIn {
		fn(state)
	}
	return func() {}
}

func (s *racingSignal) order() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// =============================================================================
// Monitor
// =============================================================================

func TestMonitor_InitialState(t *testing.T) {
	m := NewMonitor(NewManualSignal(false), nil, nil)
	defer m.Close()
	if m.Online() {
		t.Error("expected offline initial state")
	}
}

func TestMonitor_Transitions(t *testing.T) {
	sig := NewManualSignal(true)
	n := &recordingNotifier{}
	m := NewMonitor(sig, n, nil)
	defer m.Close()

	var got []bool
	m.OnStatusChange(func(online bool) { got = append(got, online) })

	sig.SetOnline(false)
	sig.SetOnline(true)

	if len(got) != 2 || got[0] != false || got[1] != true {
		t.Fatalf("expected [false true], got %v", got)
	}
	notes := n.all()
	if len(notes) != 2 {
		t.Fatalf("expected 2 notifications, got %+v", notes)
	}
	if notes[0].Level != notify.LevelWarning || notes[0].Title != notify.TitleConnectionLost {
		t.Errorf("unexpected offline notification: %+v", notes[0])
	}
	if notes[1].Level != notify.LevelSuccess || notes[1].Title != notify.TitleConnectionRestored {
		t.Errorf("unexpected online notification: %+v", notes[1])
	}
}

func TestMonitor_IgnoresRepeatedEvents(t *testing.T) {
	sig := NewManualSignal(true)
	n := &recordingNotifier{}
	m := NewMonitor(sig, n, nil)
	defer m.Close()

	calls := 0
	m.OnStatusChange(func(bool) { calls++ })

	sig.SetOnline(true)
	sig.SetOnline(false)
	sig.SetOnline(false)

	if calls != 1 {
		t.Errorf("expected 1 callback, got %d", calls)
	}
	if len(n.all()) != 1 {
		t.Errorf("expected 1 notification, got %d", len(n.all()))
	}
}

func TestMonitor_Unsubscribe(t *testing.T) {
	sig := NewManualSignal(true)
	m := NewMonitor(sig, nil, nil)
	defer m.Close()

	calls := 0
	unsubscribe := m.OnStatusChange(func(bool) { calls++ })
	if m.SubscriberCount() != 1 {
		t.Fatalf("expected 1 subscriber, got %d", m.SubscriberCount())
	}

	unsubscribe()
	unsubscribe()
	sig.SetOnline(false)

	if calls != 0 {
		t.Errorf("expected no callbacks after unsubscribe, got %d", calls)
	}
	if m.SubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers, got %d", m.SubscriberCount())
	}
}

func TestMonitor_Close(t *testing.T) {
	sig := NewManualSignal(true)
	m := NewMonitor(sig, nil, nil)
	m.Close()
	m.Close()

	sig.SetOnline(false)
	if !m.Online() {
		t.Error("closed monitor should not track the signal")
	}
}

func TestMonitor_SubscriberPanicContained(t *testing.T) {
	sig := NewManualSignal(true)
	m := NewMonitor(sig, nil, nil)
	defer m.Close()

	reached := false
	m.OnStatusChange(func(bool) { panic("boom") })
	m.OnStatusChange(func(bool) { reached = true })

	sig.SetOnline(false)
	if !reached {
		t.Error("expected the healthy subscriber to run")
	}
}

func TestMonitor_SubscriberMayUnsubscribeDuringDelivery(t *testing.T) {
	sig := NewManualSignal(true)
	m := NewMonitor(sig, nil, nil)
	defer m.Close()

	var unsubscribe func()
	unsubscribe = m.OnStatusChange(func(bool) { unsubscribe() })

	sig.SetOnline(false)
	if m.SubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers, got %d", m.SubscriberCount())
	}
}

func TestMonitor_ConcurrentEvents(t *testing.T) {
	sig := NewManualSignal(true)
	m := NewMonitor(sig, nil, nil)
	defer m.Close()

	var mu sync.Mutex
	var seen []bool
	m.OnStatusChange(func(online bool) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, online)
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sig.SetOnline(i%2 == 0)
		}(i)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	for i := 1; i < len(seen); i++ {
		if seen[i] == seen[i-1] {
			t.Fatalf("consecutive deliveries repeat state at %d: %v", i, seen)
		}
	}
}

// =============================================================================
// ProbeSignal
// =============================================================================

func TestProbeSignal_EmitsOnTransitionsOnly(t *testing.T) {
	dialer := &mockDialer{}
	p := NewProbeSignal(ProbeConfig{Address: "api:443", InitialOnline: true}, dialer, nil)

	var got []bool
	p.Watch(func(online bool) { got = append(got, online) })

	ctx := context.Background()
	p.Check(ctx)
	dialer.set(errors.New("connection refused"))
	p.Check(ctx)
	p.Check(ctx)
	dialer.set(nil)
	p.Check(ctx)

	if len(got) != 2 || got[0] != false || got[1] != true {
		t.Errorf("expected [false true], got %v", got)
	}
	if !p.Online() {
		t.Error("expected online")
	}
}

func TestProbeSignal_RealListener(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()

	p := NewProbeSignal(ProbeConfig{Address: addr, Timeout: time.Second}, nil, nil)
	if !p.Check(context.Background()) {
		t.Error("expected listener to be reachable")
	}

	ln.Close()
	if p.Check(context.Background()) {
		t.Error("expected closed listener to be unreachable")
	}
}

func TestProbeSignal_RunStopsOnCancel(t *testing.T) {
	p := NewProbeSignal(ProbeConfig{Address: "x", Interval: 10 * time.Millisecond}, &mockDialer{}, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := p.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	if !p.Online() {
		t.Error("expected probe to report online")
	}
}

func TestMonitor_WithProbeSignal(t *testing.T) {
	dialer := &mockDialer{}
	p := NewProbeSignal(ProbeConfig{Address: "api:443", InitialOnline: true}, dialer, nil)
	n := &recordingNotifier{}
	m := NewMonitor(p, n, nil)
	defer m.Close()

	dialer.set(errors.New("unreachable"))
	p.Check(context.Background())

	if m.Online() {
		t.Error("expected monitor to follow probe offline")
	}
	if notes := n.all(); len(notes) != 1 || notes[0].Title != notify.TitleConnectionLost {
		t.Errorf("unexpected notifications: %+v", notes)
	}
}

func TestMonitor_WatchesBeforeReadingState(t *testing.T) {
	sig := &racingSignal{online: true}
	n := &recordingNotifier{}
	m := NewMonitor(sig, n, nil)
	defer m.Close()

	if order := sig.order(); len(order) < 2 || order[0] != "watch" || order[1] != "online" {
		t.Errorf("expected watch before online, got %v", order)
	}
	if m.Online() {
		t.Error("expected the flip during startup to be reflected")
	}
	if notes := n.all(); len(notes) != 0 {
		t.Errorf("startup state should not notify: %+v", notes)
	}
}

func TestMonitor_EventDuringWatch(t *testing.T) {
	sig := &racingSignal{online: true, emitIn: true}
	m := NewMonitor(sig, nil, nil)
	defer m.Close()

	if m.Online() {
		t.Error("expected monitor offline after event during Watch")
	}
}

func TestMonitor_UsesInjectedLogger(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	sig := NewManualSignal(true)
	m := NewMonitor(sig, nil, log)
	defer m.Close()

	sig.SetOnline(false)

	out := buf.String()
	if !strings.Contains(out, "Connectivity changed") || !strings.Contains(out, "component=connectivity") {
		t.Errorf("expected transition logged to injected logger, got %q", out)
	}
}
