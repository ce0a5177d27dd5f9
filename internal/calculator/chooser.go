package calculator

import (
	"math/rand/v2"
	"sync"
)

// Chooser picks the participant who receives a leftover cent among equally
// deserving candidates. Candidates are sorted and never empty.
type Chooser interface {
	ChooseOne(candidates []string) string
}

// ChooserFunc adapts a function to the Chooser interface.
type ChooserFunc func(candidates []string) string

func (f ChooserFunc) ChooseOne(candidates []string) string {
	return f(candidates)
}

// RandomChooser picks uniformly at random. It is safe for concurrent use.
type RandomChooser struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomChooser returns a chooser backed by the global random source.
func NewRandomChooser() *RandomChooser {
	return &RandomChooser{}
}

// NewSeededChooser returns a chooser whose picks are reproducible for a seed.
func NewSeededChooser(seed uint64) *RandomChooser {
	return &RandomChooser{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (c *RandomChooser) ChooseOne(candidates []string) string {
	if len(candidates) == 1 {
		return candidates[0]
	}
	if c.rng == nil {
		return candidates[rand.IntN(len(candidates))]
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return candidates[c.rng.IntN(len(candidates))]
}

// First always picks the first candidate.
var First = ChooserFunc(func(candidates []string) string {
	return candidates[0]
})
