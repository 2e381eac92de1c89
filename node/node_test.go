package node

import (
	"testing"
)

func testNodeConfig() Config {
	return Config{Name: "corvussim", ChainId: "corvus-unittest"}
}

// Tests that an empty service stack can be started, restarted and stopped.
func TestNodeLifeCycle(t *testing.T) {
	cfg := testNodeConfig()
	stack, err := New(&cfg)
	if err != nil {
		t.Fatalf("failed to create node: %v", err)
	}
	// Ensure that a node can be successfully started, but only once
	if err := stack.Start(); err != nil {
		t.Fatalf("failed to start node: %v", err)
	}
	if err := stack.Restart(); err != nil {
		t.Fatalf("failed to restart node: %v", err)
	}
	if err := stack.Stop(); err != nil {
		t.Fatalf("failed to stop node: %v", err)
	}
}

type probeService struct {
	started, stopped bool
}

func (s *probeService) Start(node *Node) error { s.started = true; return nil }
func (s *probeService) Stop() error            { s.stopped = true; return nil }

func TestNodeServiceLookup(t *testing.T) {
	cfg := testNodeConfig()
	stack, err := New(&cfg)
	if err != nil {
		t.Fatalf("failed to create node: %v", err)
	}
	probe := &probeService{}
	_ = stack.Register("probe", func(ctx *ServiceContext) (Service, error) {
		return probe, nil
	})
	if err := stack.Start(); err != nil {
		t.Fatalf("failed to start node: %v", err)
	}
	s, err := stack.Service("probe")
	if err != nil {
		t.Fatalf("service lookup failed: %v", err)
	}
	if s.(*probeService) != probe {
		t.Fatal("service lookup returned a different instance")
	}
	if _, err = stack.Service("nosuch"); err != ErrServiceUnknown {
		t.Fatalf("expected ErrServiceUnknown, got %v", err)
	}
	if err := stack.Stop(); err != nil {
		t.Fatalf("failed to stop node: %v", err)
	}
	if !probe.started || !probe.stopped {
		t.Fatal("service lifecycle hooks not invoked")
	}
}
