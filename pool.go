package pageglot

import (
	"container/list"
	"sync"
)

// DefaultEnginePoolSize bounds the number of live engine instances.
// Engines are keyed by exact language pair; over a long session the
// set of pairs grows, so least-recently-used instances are closed.
const DefaultEnginePoolSize = 8

type poolEntry struct {
	key    string
	engine Engine
}

// enginePool is a bounded LRU of per-pair engine instances.
type enginePool struct {
	mu    sync.Mutex
	max   int
	order *list.List // front = most recently used
	items map[string]*list.Element
}

func newEnginePool(max int) *enginePool {
	if max <= 0 {
		max = DefaultEnginePoolSize
	}
	return &enginePool{
		max:   max,
		order: list.New(),
		items: make(map[string]*list.Element),
	}
}

func (p *enginePool) get(key string) (Engine, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	el, ok := p.items[key]
	if !ok {
		return nil, false
	}
	p.order.MoveToFront(el)
	return el.Value.(*poolEntry).engine, true
}

// put stores an engine, evicting and closing the least recently used
// instance when the pool is full. Replacing an existing key closes the
// old engine.
func (p *enginePool) put(key string, eng Engine) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if el, ok := p.items[key]; ok {
		old := el.Value.(*poolEntry)
		if old.engine != eng {
			_ = old.engine.Close()
			old.engine = eng
		}
		p.order.MoveToFront(el)
		return
	}

	p.items[key] = p.order.PushFront(&poolEntry{key: key, engine: eng})

	for p.order.Len() > p.max {
		oldest := p.order.Back()
		if oldest == nil {
			break
		}
		entry := oldest.Value.(*poolEntry)
		p.order.Remove(oldest)
		delete(p.items, entry.key)
		_ = entry.engine.Close()
	}
}

func (p *enginePool) len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.order.Len()
}

// purge closes every pooled engine.
func (p *enginePool) purge() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for el := p.order.Front(); el != nil; el = el.Next() {
		_ = el.Value.(*poolEntry).engine.Close()
	}
	p.order.Init()
	p.items = make(map[string]*list.Element)
}
