package embedding

import (
	"container/list"
	"strings"
	"sync"
)

// CachedProvider wraps an EmbeddingProvider with a bounded LRU cache keyed
// by normalized text. Repeated lookups for the same normalized text never
// reach the inner provider while the entry is resident; the least recently
// used entry is evicted once capacity is exceeded.
type CachedProvider struct {
	inner    EmbeddingProvider
	capacity int

	mu      sync.Mutex
	order   *list.List // front = most recently used
	entries map[string]*list.Element
}

type cacheEntry struct {
	key      string
	response *EmbeddingResponse
}

const DefaultCacheCapacity = 512

func NewCachedProvider(inner EmbeddingProvider, capacity int) *CachedProvider {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &CachedProvider{
		inner:    inner,
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element),
	}
}

var _ EmbeddingProvider = &CachedProvider{}

func (p *CachedProvider) Generate(text string, taskType string) (*EmbeddingResponse, error) {
	key := NormalizeText(text) + "\x00" + taskType

	p.mu.Lock()
	if elem, ok := p.entries[key]; ok {
		p.order.MoveToFront(elem)
		res := elem.Value.(*cacheEntry).response
		p.mu.Unlock()
		return res, nil
	}
	p.mu.Unlock()

	// Provider call happens outside the lock; a concurrent miss for the
	// same key may call twice, the second result simply overwrites.
	res, err := p.inner.Generate(text, taskType)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if elem, ok := p.entries[key]; ok {
		p.order.MoveToFront(elem)
		elem.Value.(*cacheEntry).response = res
		return res, nil
	}

	p.entries[key] = p.order.PushFront(&cacheEntry{key: key, response: res})
	if p.order.Len() > p.capacity {
		oldest := p.order.Back()
		if oldest != nil {
			p.order.Remove(oldest)
			delete(p.entries, oldest.Value.(*cacheEntry).key)
		}
	}
	return res, nil
}

// Len reports the number of resident entries.
func (p *CachedProvider) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.order.Len()
}

// NormalizeText collapses whitespace and lowercases the input so that
// trivially different spellings of the same query share a cache entry.
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
