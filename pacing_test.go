package pageglot

import (
	"context"
	"testing"
	"time"
)

func TestPacerBurst(t *testing.T) {
	p := NewPacer(PacingConfig{CallsPerMinute: 60, BurstSize: 3})

	for i := 0; i < 3; i++ {
		if !p.TryAcquire() {
			t.Fatalf("acquire %d should succeed within burst", i)
		}
	}
	if p.TryAcquire() {
		t.Error("acquire beyond burst should fail")
	}
}

func TestPacerRefill(t *testing.T) {
	// 6000 calls/min refills fast enough to observe in a short test.
	p := NewPacer(PacingConfig{CallsPerMinute: 6000, BurstSize: 1})

	if !p.TryAcquire() {
		t.Fatal("first acquire should succeed")
	}
	if p.TryAcquire() {
		t.Fatal("bucket should be empty")
	}

	time.Sleep(50 * time.Millisecond)
	if !p.TryAcquire() {
		t.Error("bucket should have refilled")
	}
}

func TestPacerWaitCancellation(t *testing.T) {
	p := NewPacer(PacingConfig{CallsPerMinute: 1, BurstSize: 1})
	p.TryAcquire()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := p.Wait(ctx); err == nil {
		t.Error("Wait should fail when the context expires first")
	}
}

func TestPacerDefaults(t *testing.T) {
	p := NewPacer(PacingConfig{})
	if p.Available() <= 0 {
		t.Error("default pacer should start with available slots")
	}
}
