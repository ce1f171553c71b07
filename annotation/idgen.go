package annotation

import "sync"

// idGenerator hands out incremental track IDs starting at 1.  IDs are never
// reused, even when the box holding one is later removed.
type idGenerator struct {
	id int
	sync.Mutex
}

func newIDGenerator() *idGenerator {
	return &idGenerator{}
}

// next returns the next incremental ID
func (g *idGenerator) next() int {
	g.Lock()
	defer g.Unlock()
	g.id++
	return g.id
}

// last returns the most recently issued ID, or 0 if none
func (g *idGenerator) last() int {
	g.Lock()
	defer g.Unlock()
	return g.id
}
