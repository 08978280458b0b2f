package pageglot

import "testing"

func TestEnginePoolEvictsLeastRecentlyUsed(t *testing.T) {
	p := newEnginePool(2)

	a := &fakeEngine{}
	b := &fakeEngine{}
	c := &fakeEngine{}

	p.put("en->es", a)
	p.put("en->fr", b)

	// Touch a so b becomes the eviction candidate.
	if _, ok := p.get("en->es"); !ok {
		t.Fatal("en->es should be pooled")
	}

	p.put("en->de", c)

	if p.len() != 2 {
		t.Errorf("pool size = %d, want 2", p.len())
	}
	if !b.isClosed() {
		t.Error("evicted engine should be closed")
	}
	if a.isClosed() || c.isClosed() {
		t.Error("live engines must not be closed")
	}
	if _, ok := p.get("en->fr"); ok {
		t.Error("evicted pair should be gone")
	}
}

func TestEnginePoolReplaceClosesOld(t *testing.T) {
	p := newEnginePool(4)

	old := &fakeEngine{}
	fresh := &fakeEngine{}

	p.put("en->es", old)
	p.put("en->es", fresh)

	if !old.isClosed() {
		t.Error("replaced engine should be closed")
	}
	if got, _ := p.get("en->es"); got != fresh {
		t.Error("pool should hold the replacement")
	}
	if p.len() != 1 {
		t.Errorf("pool size = %d, want 1", p.len())
	}
}

func TestEnginePoolPurge(t *testing.T) {
	p := newEnginePool(4)

	a := &fakeEngine{}
	b := &fakeEngine{}
	p.put("en->es", a)
	p.put("en->fr", b)

	p.purge()

	if p.len() != 0 {
		t.Errorf("pool size after purge = %d, want 0", p.len())
	}
	if !a.isClosed() || !b.isClosed() {
		t.Error("purge should close every engine")
	}
}
