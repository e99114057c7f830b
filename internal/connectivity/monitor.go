package connectivity

import (
	"log/slog"
	"sync"

	"github.com/vietddude/guardian/internal/errhandling/notify"
	"github.com/vietddude/guardian/internal/metrics"
)

// Monitor deduplicates signal events, fans them out to subscribers and
// notifies the user about transitions.
type Monitor struct {
	mu       sync.RWMutex
	online   bool
	ready    bool
	notifier notify.Notifier
	nextID   int
	subs     map[int]func(bool)

	// deliverMu serializes transitions so subscribers see them in order.
	deliverMu sync.Mutex
	stop      func()
	closeOnce sync.Once
	log       *slog.Logger
}

// NewMonitor subscribes to signal and then reads its initial state, so no
// transition between the two is lost. A nil notifier uses notify.Nop and a
// nil log uses slog.Default.
func NewMonitor(signal Signal, notifier notify.Notifier, log *slog.Logger) *Monitor {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if log == nil {
		log = slog.Default()
	}
	m := &Monitor{
		notifier: notifier,
		subs:     make(map[int]func(bool)),
		log:      log.With("component", "connectivity"),
	}
	m.stop = signal.Watch(m.handle)

	// Events handled before this point are already reflected by Online.
	m.deliverMu.Lock()
	m.mu.Lock()
	m.online = signal.Online()
	m.ready = true
	m.mu.Unlock()
	setGauge(m.online)
	m.deliverMu.Unlock()
	return m
}

// Online reports the last known state.
func (m *Monitor) Online() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.online
}

// SetNotifier replaces the notification sink. nil restores notify.Nop.
func (m *Monitor) SetNotifier(n notify.Notifier) {
	if n == nil {
		n = notify.Nop{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifier = n
}

// OnStatusChange registers cb for transitions. The returned func is
// idempotent.
func (m *Monitor) OnStatusChange(cb func(online bool)) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = cb
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			delete(m.subs, id)
		})
	}
}

// SubscriberCount returns the number of registered callbacks.
func (m *Monitor) SubscriberCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subs)
}

// Close detaches the monitor from its signal.
func (m *Monitor) Close() {
	m.closeOnce.Do(func() {
		if m.stop != nil {
			m.stop()
		}
	})
}

func (m *Monitor) handle(online bool) {
	m.deliverMu.Lock()
	defer m.deliverMu.Unlock()

	m.mu.Lock()
	if !m.ready || m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	subs := make([]func(bool), 0, len(m.subs))
	for _, cb := range m.subs {
		subs = append(subs, cb)
	}
	notifier := m.notifier
	m.mu.Unlock()

	m.log.Info("Connectivity changed", "online", online)
	setGauge(online)
	if online {
		metrics.ConnectivityTransitions.WithLabelValues("online").Inc()
	} else {
		metrics.ConnectivityTransitions.WithLabelValues("offline").Inc()
	}

	for _, cb := range subs {
		m.safeCall(cb, online)
	}

	if online {
		notify.Send(notifier, notify.Notification{
			Level: notify.LevelSuccess,
			Title: notify.TitleConnectionRestored,
			Body:  notify.BodyConnectionRestored,
		})
	} else {
		notify.Send(notifier, notify.Notification{
			Level: notify.LevelWarning,
			Title: notify.TitleConnectionLost,
			Body:  notify.BodyConnectionLost,
		})
	}
}

func (m *Monitor) safeCall(cb func(bool), online bool) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error("Connectivity subscriber panicked", "panic", r)
		}
	}()
	cb(online)
}

func setGauge(online bool) {
	if online {
		metrics.ConnectivityOnline.Set(1)
	} else {
		metrics.ConnectivityOnline.Set(0)
	}
}
