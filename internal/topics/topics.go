// Package topics serves random conversation starters.
package topics

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"sync"
)

//go:embed topics.json
var embedded []byte

// Topic is a conversation starter and its position in the list. Index is -1
// and Text is nil when every topic was excluded.
type Topic struct {
	Index int     `json:"index"`
	Text  *string `json:"text"`
}

// Picker draws topics at random, skipping the ones a client already saw.
type Picker struct {
	topics []string

	mu  sync.Mutex
	rng *rand.Rand
}

// NewDefaultPicker uses the embedded topic list.
func NewDefaultPicker() (*Picker, error) {
	var list []string
	if err := json.Unmarshal(embedded, &list); err != nil {
		return nil, fmt.Errorf("failed to parse topics: %w", err)
	}
	return NewPicker(list, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))), nil
}

func NewPicker(list []string, rng *rand.Rand) *Picker {
	return &Picker{topics: list, rng: rng}
}

// Len returns the number of known topics.
func (p *Picker) Len() int { return len(p.topics) }

// Random returns a topic whose index is not in exclude.
func (p *Picker) Random(exclude []int) Topic {
	skip := make(map[int]struct{}, len(exclude))
	for _, i := range exclude {
		if i >= 0 && i < len(p.topics) {
			skip[i] = struct{}{}
		}
	}

	candidates := make([]int, 0, len(p.topics)-len(skip))
	for i := range p.topics {
		if _, ok := skip[i]; !ok {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return Topic{Index: -1}
	}

	p.mu.Lock()
	idx := candidates[p.rng.IntN(len(candidates))]
	p.mu.Unlock()

	text := p.topics[idx]
	return Topic{Index: idx, Text: &text}
}
