package summarizer

import (
	"container/list"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"strconv"
	"sync"
	"time"
)

// lru maps cache keys to summaries. It holds at most limit items and treats
// items stored more than ttl ago as absent. A nil *lru caches nothing.
type lru struct {
	mu    sync.Mutex
	ttl   time.Duration
	limit int
	items map[string]*list.Element
	// recency has the most recently used item at the front.
	recency *list.List
}

type lruItem struct {
	key       string
	sentences []string
	storedAt  time.Time
}

func newLRU(limit int, ttl time.Duration) *lru {
	if limit <= 0 || ttl <= 0 {
		return nil
	}

	return &lru{
		ttl:     ttl,
		limit:   limit,
		items:   make(map[string]*list.Element, limit),
		recency: list.New(),
	}
}

func (c *lru) lookup(key string, now time.Time) ([]string, bool) {
	if c == nil {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return nil, false
	}

	item := el.Value.(*lruItem)
	if c.stale(item, now) {
		c.drop(el)

		return nil, false
	}

	c.recency.MoveToFront(el)

	return slices.Clone(item.sentences), true
}

func (c *lru) store(key string, sentences []string, now time.Time) {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		item := el.Value.(*lruItem)
		item.sentences = slices.Clone(sentences)
		item.storedAt = now
		c.recency.MoveToFront(el)

		return
	}

	c.items[key] = c.recency.PushFront(&lruItem{
		key:       key,
		sentences: slices.Clone(sentences),
		storedAt:  now,
	})

	for c.recency.Len() > c.limit {
		c.drop(c.recency.Back())
	}
}

// purge drops stale items and reports how many were removed.
func (c *lru) purge(now time.Time) int {
	if c == nil {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for el := c.recency.Back(); el != nil; {
		prev := el.Prev()
		if c.stale(el.Value.(*lruItem), now) {
			c.drop(el)
			removed++
		}
		el = prev
	}

	return removed
}

func (c *lru) count() int {
	if c == nil {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.recency.Len()
}

func (c *lru) stale(item *lruItem, now time.Time) bool {
	return now.Sub(item.storedAt) > c.ttl
}

func (c *lru) drop(el *list.Element) {
	delete(c.items, el.Value.(*lruItem).key)
	c.recency.Remove(el)
}

func summaryCacheKey(input Input) string {
	if input.Text == "" {
		return ""
	}

	h := sha256.New()
	h.Write([]byte(input.Language))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(input.SentencesCount)))
	h.Write([]byte{0})
	h.Write([]byte(input.Text))

	return hex.EncodeToString(h.Sum(nil))
}

// CacheObserver is notified about every cache lookup.
type CacheObserver func(hit bool)

// CachingSummarizer memoizes summaries of another Summarizer for a fixed TTL.
// The wrapped summarizer must be deterministic.
type CachingSummarizer struct {
	next     Summarizer
	cache    *lru
	now      func() time.Time
	observer CacheObserver
}

func NewCachingSummarizer(
	next Summarizer,
	maxEntries int,
	ttl time.Duration,
	observer CacheObserver,
) *CachingSummarizer {
	return &CachingSummarizer{
		next:     next,
		cache:    newLRU(maxEntries, ttl),
		now:      time.Now,
		observer: observer,
	}
}

func (s *CachingSummarizer) Summarize(ctx context.Context, input Input) ([]string, error) {
	key := summaryCacheKey(input)
	if key == "" {
		return s.next.Summarize(ctx, input)
	}

	now := s.now()
	if sentences, ok := s.cache.lookup(key, now); ok {
		s.observe(true)

		return sentences, nil
	}
	s.observe(false)

	sentences, err := s.next.Summarize(ctx, input)
	if err != nil {
		return nil, err
	}

	s.cache.store(key, sentences, now)

	return sentences, nil
}

// Sweep evicts expired entries and returns the number removed.
func (s *CachingSummarizer) Sweep(now time.Time) int {
	return s.cache.purge(now)
}

// Len returns the number of cached summaries.
func (s *CachingSummarizer) Len() int {
	return s.cache.count()
}

func (s *CachingSummarizer) observe(hit bool) {
	if s.observer != nil {
		s.observer(hit)
	}
}
