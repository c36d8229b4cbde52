// internal/engine/cards.go
package engine

import (
	"math/rand"
	"strconv"
	"sync"
)

// CardKind distinguishes the two draw pools.
type CardKind string

const (
	KindStandard  CardKind = "standard"
	KindSacrifice CardKind = "sacrifice"
)

// Card is the value drawn for one turn. Cards are ephemeral: they live on a
// turn, never as persisted entities.
type Card struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	PFH  int      `json:"pfh"`
	Kind CardKind `json:"kind"`
}

// cardSpec is one row of the fixed card table. Count is the draw weight:
// a card appears Count times in the notional deck.
type cardSpec struct {
	id    string
	name  string
	pfh   int
	count int
}

// The sixteen du-medji. The standard pool holds one copy of each; the
// sacrifice pool holds four, which is why sacrifice draws skew higher in
// expectation only through the separate pool, not through different values.
var duMedji = []struct {
	name string
	pfh  int
}{
	{"gbe_medji", 64},
	{"yeku_medji", 60},
	{"woli_medji", 56},
	{"di_medji", 52},
	{"loso_medji", 48},
	{"wele_medji", 44},
	{"abla_medji", 40},
	{"akala_medji", 36},
	{"guda_medji", 32},
	{"sa_medji", 28},
	{"ka_medji", 24},
	{"trukpe_medji", 20},
	{"tula_medji", 16},
	{"lete_medji", 12},
	{"ce_medji", 8},
	{"fu_medji", 4},
}

func standardSpecs() []cardSpec {
	specs := make([]cardSpec, len(duMedji))
	for i, d := range duMedji {
		specs[i] = cardSpec{id: "f" + strconv.Itoa(i+1), name: d.name, pfh: d.pfh, count: 1}
	}
	return specs
}

func sacrificeSpecs() []cardSpec {
	specs := make([]cardSpec, len(duMedji))
	for i, d := range duMedji {
		specs[i] = cardSpec{id: "sf" + strconv.Itoa(i+1), name: d.name, pfh: d.pfh, count: 4}
	}
	return specs
}

// pool is a weighted table with precomputed cumulative weights.
type pool struct {
	specs      []cardSpec
	cumulative []int
	total      int
}

func newPool(specs []cardSpec) *pool {
	p := &pool{specs: specs, cumulative: make([]int, len(specs))}
	for i, s := range specs {
		p.total += s.count
		p.cumulative[i] = p.total
	}
	return p
}

// draw selects uniformly within the cumulative-weight range.
func (p *pool) draw(rng *rand.Rand, kind CardKind) Card {
	n := rng.Intn(p.total)
	for i, c := range p.cumulative {
		if n < c {
			s := p.specs[i]
			return Card{ID: s.id, Name: s.name, PFH: s.pfh, Kind: kind}
		}
	}
	// Unreachable: cumulative[len-1] == total.
	s := p.specs[len(p.specs)-1]
	return Card{ID: s.id, Name: s.name, PFH: s.pfh, Kind: kind}
}

// Deck draws cards from the two fixed weighted pools. The randomness source
// is injected so draws are reproducible under a fixed seed.
type Deck struct {
	mu        sync.Mutex
	rng       *rand.Rand
	standard  *pool
	sacrifice *pool
}

// NewDeck builds a deck over the fixed tables using the given source.
func NewDeck(rng *rand.Rand) *Deck {
	return &Deck{
		rng:       rng,
		standard:  newPool(standardSpecs()),
		sacrifice: newPool(sacrificeSpecs()),
	}
}

// Draw returns one card of the requested kind.
func (d *Deck) Draw(kind CardKind) Card {
	d.mu.Lock()
	defer d.mu.Unlock()
	if kind == KindSacrifice {
		return d.sacrifice.draw(d.rng, KindSacrifice)
	}
	return d.standard.draw(d.rng, KindStandard)
}

// Probabilities reports each card name's draw probability per kind, for the
// introspection endpoint.
func Probabilities() map[CardKind]map[string]float64 {
	out := make(map[CardKind]map[string]float64, 2)
	for kind, specs := range map[CardKind][]cardSpec{
		KindStandard:  standardSpecs(),
		KindSacrifice: sacrificeSpecs(),
	} {
		total := 0
		for _, s := range specs {
			total += s.count
		}
		m := make(map[string]float64, len(specs))
		for _, s := range specs {
			m[s.name] = float64(s.count) / float64(total)
		}
		out[kind] = m
	}
	return out
}
