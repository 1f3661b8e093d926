package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newTestService(t *testing.T) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	svc, err := New(Options{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })
	return svc, mr
}

func TestHealthCheck(t *testing.T) {
	svc, mr := newTestService(t)

	if err := svc.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
	if keys := mr.Keys(); len(keys) != 0 {
		t.Errorf("health check left keys behind: %v", keys)
	}

	mr.Close()
	if err := svc.HealthCheck(context.Background()); err == nil {
		t.Fatal("expected error once redis is gone")
	}
}

func TestNewFailsWithoutServer(t *testing.T) {
	if _, err := New(Options{Addr: "127.0.0.1:1"}); err == nil {
		t.Fatal("expected ping failure")
	}
}

func TestAsynqRedisOpt(t *testing.T) {
	svc, mr := newTestService(t)
	opt := svc.AsynqRedisOpt()
	if opt.Addr != mr.Addr() {
		t.Errorf("Addr: got %q, want %q", opt.Addr, mr.Addr())
	}
}

func TestPublishSubscribe(t *testing.T) {
	svc, _ := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, closeSub, err := svc.Subscribe(ctx, "job:1")
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer closeSub()

	if err := svc.Publish(ctx, "job:1", "updated"); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case msg := <-ch:
		if msg != "updated" {
			t.Errorf("payload: got %q", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}
}
