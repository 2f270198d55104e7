// internal/rng/csprng.go
package rng

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"sync"
)

// CSPRNG uses AES-CTR under the hood. It is seeded once from crypto/rand.
type CSPRNG struct {
	mu     sync.Mutex
	stream cipher.Stream
}

// NewCSPRNG initializes an AES-CTR generator seeded from crypto/rand.
func NewCSPRNG() (*CSPRNG, error) {
	return newCSPRNG(rand.Reader)
}

func newCSPRNG(seed io.Reader) (*CSPRNG, error) {
	// 256-bit AES key, then a random 128-bit IV as the initial counter
	key := make([]byte, 32)
	if _, err := io.ReadFull(seed, key); err != nil {
		return nil, fmt.Errorf("rng: failed to read key seed: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("rng: aes.NewCipher failed: %w", err)
	}

	var iv [aes.BlockSize]byte
	if _, err := io.ReadFull(seed, iv[:]); err != nil {
		return nil, fmt.Errorf("rng: failed to read IV seed: %w", err)
	}

	return &CSPRNG{stream: cipher.NewCTR(block, iv[:])}, nil
}

// Read fills buf with AES-CTR keystream bytes.
func (c *CSPRNG) Read(buf []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(buf)
	c.stream.XORKeyStream(buf, buf)
	return len(buf), nil
}

// Uint32 returns a single 32-bit random word.
func (c *CSPRNG) Uint32() uint32 {
	var b [4]byte
	_, _ = c.Read(b[:])
	return binary.BigEndian.Uint32(b[:])
}

// Next returns the next keystream word XORed with salt.
func (c *CSPRNG) Next(salt uint32) uint32 {
	return c.Uint32() ^ salt
}
