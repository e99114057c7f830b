package control

import (
	"context"
	"errors"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/vietddude/guardian/internal/core/config"
	"github.com/vietddude/guardian/internal/core/domain"
	"github.com/vietddude/guardian/internal/errhandling"
	"github.com/vietddude/guardian/internal/errhandling/notify"
	"github.com/vietddude/guardian/internal/infra/storage/memory"
)

func testConfig() *config.AppConfig {
	cfg := config.Default()
	cfg.Server.Port = 0
	return cfg
}

func TestNewGuardian_InMemory(t *testing.T) {
	g, err := NewGuardian(context.Background(), testConfig(), notify.Nop{})
	if err != nil {
		t.Fatalf("NewGuardian failed: %v", err)
	}
	defer g.Close()

	if _, ok := g.Journal().(*memory.IncidentRepo); !ok {
		t.Errorf("expected in-memory journal, got %T", g.Journal())
	}
	if g.APIClient() != nil {
		t.Error("expected no API client without base_url")
	}
	if !g.Monitor().Online() {
		t.Error("expected initial_online default to be honoured")
	}
}

func TestGuardian_HandlerJournals(t *testing.T) {
	g, err := NewGuardian(context.Background(), testConfig(), notify.Nop{})
	if err != nil {
		t.Fatalf("NewGuardian failed: %v", err)
	}
	defer g.Close()

	g.Handler().HandleError(context.Background(), errors.New("dial tcp: i/o timeout"),
		domain.CallContext{}, errhandling.Options{})

	incidents, err := g.Journal().Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(incidents) != 1 || incidents[0].Category != domain.CategoryNetwork {
		t.Errorf("unexpected incidents: %+v", incidents)
	}
}

func TestGuardian_APIClientConfigured(t *testing.T) {
	cfg := testConfig()
	cfg.API.BaseURL = "http://127.0.0.1:1"
	g, err := NewGuardian(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("NewGuardian failed: %v", err)
	}
	defer g.Close()

	if g.APIClient() == nil {
		t.Error("expected API client")
	}
}

func TestGuardian_RunStopsOnCancel(t *testing.T) {
	g, err := NewGuardian(context.Background(), testConfig(), notify.Nop{})
	if err != nil {
		t.Fatalf("NewGuardian failed: %v", err)
	}
	defer g.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- g.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestGuardian_GRPCInterceptor(t *testing.T) {
	g, err := NewGuardian(context.Background(), testConfig(), notify.Nop{})
	if err != nil {
		t.Fatalf("NewGuardian failed: %v", err)
	}
	defer g.Close()

	calls := 0
	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		calls++
		return status.Error(codes.Unavailable, "down")
	}
	_ = g.GRPCInterceptor()(context.Background(), "/svc/Method", nil, nil, nil, invoker)

	// One call plus the configured three retries.
	if calls != 4 {
		t.Errorf("expected 4 calls, got %d", calls)
	}
}
