package testutil

import (
	"fmt"
	"time"
)

// StubClock returns a fixed time that tests can advance explicitly.
type StubClock struct {
	Current time.Time
}

func NewStubClock() *StubClock {
	return &StubClock{Current: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *StubClock) Now() time.Time {
	return c.Current
}

// Advance moves the clock forward by d.
func (c *StubClock) Advance(d time.Duration) {
	c.Current = c.Current.Add(d)
}

// StubIDGenerator hands out preset IDs in order, then falls back to a
// deterministic sequence.
type StubIDGenerator struct {
	ids  []string
	next int
}

func NewStubIDGenerator(ids ...string) *StubIDGenerator {
	return &StubIDGenerator{ids: ids}
}

func (g *StubIDGenerator) New() string {
	g.next++
	if g.next <= len(g.ids) {
		return g.ids[g.next-1]
	}
	return fmt.Sprintf("id-%04d", g.next)
}
