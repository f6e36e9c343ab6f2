package zmanim

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/zapponejosh/luach-api/internal/calendar"
)

var cacheLookups = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "luach_zmanim_cache_lookups_total",
		Help: "Weekly zmanim memo lookups by result",
	},
	[]string{"result"},
)

type cacheKey struct {
	lat, lon float64
	friday   calendar.CivilDate
	opts     Options
}

// memo is a bounded map with replace-on-miss: once full, each insert
// evicts the oldest entry. A size of zero stores nothing.
type memo struct {
	mu      sync.Mutex
	size    int
	entries map[cacheKey]Zmanim
	order   []cacheKey
}

func newMemo(size int) *memo {
	if size < 0 {
		size = 0
	}
	return &memo{
		size:    size,
		entries: make(map[cacheKey]Zmanim, size),
	}
}

func (m *memo) get(k cacheKey) (Zmanim, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	z, ok := m.entries[k]
	if ok {
		cacheLookups.WithLabelValues("hit").Inc()
	} else {
		cacheLookups.WithLabelValues("miss").Inc()
	}
	return z, ok
}

func (m *memo) put(k cacheKey, z Zmanim) {
	if m.size == 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[k]; ok {
		m.entries[k] = z
		return
	}
	if len(m.order) >= m.size {
		oldest := m.order[0]
		m.order = m.order[1:]
		delete(m.entries, oldest)
	}
	m.entries[k] = z
	m.order = append(m.order, k)
}

func (m *memo) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
