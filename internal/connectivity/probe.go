package connectivity

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"time"
)

// ProbeConfig configures a ProbeSignal.
type ProbeConfig struct {
	Address       string        `yaml:"probe_address"`
	Interval      time.Duration `yaml:"probe_interval"`
	Timeout       time.Duration `yaml:"probe_timeout"`
	InitialOnline bool          `yaml:"initial_online"`
}

// Dialer opens a connection. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// ProbeSignal dials a TCP endpoint on an interval and emits when
// reachability changes.
type ProbeSignal struct {
	cfg    ProbeConfig
	dialer Dialer
	log    *slog.Logger

	mu     sync.RWMutex
	online bool
	w      watchers
}

// NewProbeSignal creates a probe signal. A nil dialer uses net.Dialer.
func NewProbeSignal(cfg ProbeConfig, dialer Dialer, log *slog.Logger) *ProbeSignal {
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	if dialer == nil {
		dialer = &net.Dialer{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &ProbeSignal{
		cfg:    cfg,
		dialer: dialer,
		log:    log.With("component", "probe", "address", cfg.Address),
		online: cfg.InitialOnline,
	}
}

func (p *ProbeSignal) Online() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.online
}

func (p *ProbeSignal) Watch(fn func(bool)) func() {
	return p.w.add(fn)
}

// Run probes until ctx is cancelled.
func (p *ProbeSignal) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	p.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.Check(ctx)
		}
	}
}

// Check probes once and emits if the state changed. It returns the new state.
func (p *ProbeSignal) Check(ctx context.Context) bool {
	dialCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	online := true
	conn, err := p.dialer.DialContext(dialCtx, "tcp", p.cfg.Address)
	if err != nil {
		online = false
		p.log.Debug("Probe failed", "error", err)
	} else {
		conn.Close()
	}

	p.mu.Lock()
	changed := p.online != online
	p.online = online
	p.mu.Unlock()

	if changed {
		p.log.Info("Probe state changed", "online", online)
		p.w.emit(online)
	}
	return online
}
