package zmanim

import (
	"math"
	"sync"

	"github.com/zapponejosh/luach-api/internal/solar"
)

// maxPooledEngines caps the distinct elevations that get their own memo.
// Further elevations are served by unmemoized engines.
const maxPooledEngines = 64

// Pool hands out engines that share a depression and differ by observer
// elevation, rounded to whole metres. Each pooled engine keeps its own memo.
type Pool struct {
	depression float64
	cacheSize  int

	mu      sync.Mutex
	engines map[int]*Engine
}

// NewPool validates depression and returns an empty pool.
func NewPool(depression float64, cacheSize int) (*Pool, error) {
	if _, err := solar.New(solar.Config{Depression: depression}); err != nil {
		return nil, err
	}
	return &Pool{
		depression: depression,
		cacheSize:  cacheSize,
		engines:    make(map[int]*Engine),
	}, nil
}

// For returns the engine for an observer elevation in metres.
func (p *Pool) For(elevation float64) (*Engine, error) {
	metres := int(math.Round(elevation))

	p.mu.Lock()
	defer p.mu.Unlock()

	if e, ok := p.engines[metres]; ok {
		return e, nil
	}

	calc, err := solar.New(solar.Config{Depression: p.depression, Elevation: float64(metres)})
	if err != nil {
		return nil, err
	}
	if len(p.engines) >= maxPooledEngines {
		return NewEngine(calc, 0), nil
	}
	e := NewEngine(calc, p.cacheSize)
	p.engines[metres] = e
	return e, nil
}

// Len reports how many engines are pooled.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.engines)
}
