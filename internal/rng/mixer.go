package rng

import (
	"encoding/binary"
	"sync"
	"time"

	"golang.org/x/crypto/blake2b"
)

// Environment supplies the entropy a Mixer folds into every value: a
// timestamp in milliseconds and a monotonically increasing height.
type Environment interface {
	Timestamp() uint64
	Height() uint32
}

// Mixer chains salted hashes: each value is derived from the previous one,
// the caller salt and the environment, so a fixed environment replays the
// same sequence.
type Mixer struct {
	mu   sync.Mutex
	env  Environment
	last uint32
}

// NewMixer returns a Mixer starting from seed.
func NewMixer(env Environment, seed uint32) *Mixer {
	if env == nil {
		env = NewClock()
	}
	return &Mixer{env: env, last: seed}
}

// Next hashes the timestamp, the height and last+salt with BLAKE2b-256 and
// keeps the first four bytes as the new value.
func (m *Mixer) Next(salt uint32) uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()

	var in [16]byte
	binary.LittleEndian.PutUint64(in[0:8], m.env.Timestamp())
	binary.LittleEndian.PutUint32(in[8:12], m.env.Height())
	binary.LittleEndian.PutUint32(in[12:16], m.last+salt)
	sum := blake2b.Sum256(in[:])
	m.last = binary.LittleEndian.Uint32(sum[:4])
	return m.last
}

// Last returns the most recent value.
func (m *Mixer) Last() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

// Clock is the wall-clock Environment. Height counts calls.
type Clock struct {
	mu     sync.Mutex
	now    func() time.Time
	height uint32
}

// NewClock returns a Clock over time.Now.
func NewClock() *Clock {
	return &Clock{now: time.Now}
}

func (c *Clock) Timestamp() uint64 {
	return uint64(c.now().UnixMilli())
}

func (c *Clock) Height() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.height++
	return c.height
}

// FixedEnvironment is a frozen Environment for replays.
type FixedEnvironment struct {
	At    uint64
	Block uint32
}

func (e FixedEnvironment) Timestamp() uint64 { return e.At }
func (e FixedEnvironment) Height() uint32    { return e.Block }
