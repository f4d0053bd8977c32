// Package passage supplies the text raced on: built-in passages, passage
// files, and passages generated from word lists.
package passage

import (
	"fmt"
	"math/rand"
)

// Provider picks one passage per race.
type Provider struct {
	rnd      *rand.Rand
	passages []string
	words    []string
	count    int
	capsPct  float64
	punctPct float64
}

// Option configures a Provider.
type Option func(*Provider)

// WithWords switches the provider to generated passages of count words.
func WithWords(words []string, count int, capsPct, punctPct float64) Option {
	return func(p *Provider) {
		p.words = words
		p.count = count
		p.capsPct = capsPct
		p.punctPct = punctPct
	}
}

// NewProvider returns a provider over passages. Passages are normalized and
// those shorter than MinLength are dropped.
func NewProvider(rnd *rand.Rand, passages []string, opts ...Option) (*Provider, error) {
	p := &Provider{rnd: rnd}
	for _, opt := range opts {
		opt(p)
	}
	for _, text := range passages {
		if text = Normalize(text); Valid(text) {
			p.passages = append(p.passages, text)
		}
	}
	if p.generated() {
		return p, nil
	}
	if len(p.passages) == 0 {
		return nil, fmt.Errorf("no passages of at least %d characters", MinLength)
	}
	return p, nil
}

// Next returns a random passage.
func (p *Provider) Next() string {
	if p.generated() {
		for {
			text := Generate(p.rnd, p.words, p.count, p.capsPct, p.punctPct)
			if Valid(text) {
				return text
			}
			// Too few short words; grow until the passage is raceable.
			p.count++
		}
	}
	return p.passages[p.rnd.Intn(len(p.passages))]
}

// Passages returns the fixed passages, nil when generating.
func (p *Provider) Passages() []string {
	if p.generated() {
		return nil
	}
	return p.passages
}

func (p *Provider) generated() bool {
	return len(p.words) > 0 && p.count > 0
}
