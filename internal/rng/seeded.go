package rng

import (
	"math/rand/v2"
	"sync"
)

// Seeded is a replicable source for simulations and tests. The salt is
// XORed into each PCG output.
type Seeded struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewSeeded returns a PCG-backed source.
func NewSeeded(seed uint64) *Seeded {
	return &Seeded{r: rand.New(rand.NewPCG(seed, 0))}
}

func (s *Seeded) Next(salt uint32) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Uint32() ^ salt
}

// Replay returns recorded values in order and starts over once exhausted.
// The salt is ignored.
type Replay struct {
	mu     sync.Mutex
	values []uint32
	idx    int
}

// NewReplay returns a Replay over values. An empty list replays zeros.
func NewReplay(values ...uint32) *Replay {
	if len(values) == 0 {
		values = []uint32{0}
	}
	return &Replay{values: append([]uint32(nil), values...)}
}

func (r *Replay) Next(uint32) uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := r.values[r.idx%len(r.values)]
	r.idx++
	return v
}

// Recorder wraps a source and keeps every value it hands out, so a draw can
// be replayed later with NewReplay(rec.Values()...).
type Recorder struct {
	mu     sync.Mutex
	src    interface{ Next(uint32) uint32 }
	values []uint32
}

// NewRecorder wraps src.
func NewRecorder(src interface{ Next(uint32) uint32 }) *Recorder {
	return &Recorder{src: src}
}

func (r *Recorder) Next(salt uint32) uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := r.src.Next(salt)
	r.values = append(r.values, v)
	return v
}

// Values returns a copy of the recorded sequence.
func (r *Recorder) Values() []uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]uint32(nil), r.values...)
}
