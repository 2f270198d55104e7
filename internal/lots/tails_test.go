package lots

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockSize(t *testing.T) {
	cases := []struct {
		length       uint8
		value, total uint64
		want         uint64
	}{
		{2, 5, 1000, 10},
		{2, 0, 1000, 10},
		{1, 3, 1234, 124},
		{1, 5, 1234, 123},
		{3, 234, 1234, 2},
		{4, 0, 1000, 0},
		{4, 999, 1000, 1},
		{4, 1000, 1000, 1},
	}
	for _, c := range cases {
		got := blockSize(c.length, u(c.value), u(c.total))
		assert.Equal(t, u(c.want), got, "length=%d value=%d total=%d", c.length, c.value, c.total)
	}
}

func TestBlockSizeMatchesEnumeration(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 200; i++ {
		total := uint64(r.IntN(5000) + 1)
		length := uint8(r.IntN(4) + 1)
		value := uint64(r.IntN(int(pow10[length].Lo)))

		var want uint64
		for n := uint64(1); n <= total; n++ {
			if n%pow10[length].Lo == value {
				want++
			}
		}
		assert.Equal(t, u(want), blockSize(length, u(value), u(total)))
	}
}

func TestTailMatches(t *testing.T) {
	tail := Tail{Value: u(7), Length: 2}
	assert.True(t, tail.Matches(u(107)))
	assert.True(t, tail.Matches(u(7)))
	assert.False(t, tail.Matches(u(17)))
}

func TestCollides(t *testing.T) {
	s := TailSet{u(5): 2} // "05"

	assert.True(t, s.Collides(u(5), 2))
	assert.True(t, s.Collides(u(105), 3), "105 ends with 05")
	assert.False(t, s.Collides(u(15), 3), "015 does not end with 05")
	assert.False(t, s.Collides(u(15), 2))
	assert.True(t, s.Collides(u(5), 1), "05 ends with 5")
	assert.False(t, s.Collides(u(4), 1))
}

func TestCountMatchedAgainstEnumeration(t *testing.T) {
	s := TailSet{u(3): 1, u(25): 2, u(170): 3}
	for _, rg := range [][2]uint64{{1, 1000}, {1, 1}, {20, 400}, {171, 171}, {999, 2500}, {0, 50}} {
		var want uint64
		for n := max(rg[0], 1); n <= rg[1]; n++ {
			if s.Matches(u(n)) {
				want++
			}
		}
		assert.Equal(t, u(want), s.CountMatched(u(rg[0]), u(rg[1])), "range %v", rg)
	}
	assert.Equal(t, u(0), s.CountMatched(u(10), u(9)))
}

func TestIsWinnerInverts(t *testing.T) {
	s := TailSet{u(3): 1}
	assert.True(t, IsWinner(u(13), s, true))
	assert.False(t, IsWinner(u(13), s, false))
	assert.False(t, IsWinner(u(14), s, true))
	assert.True(t, IsWinner(u(14), s, false))
}

func TestSorted(t *testing.T) {
	s := TailSet{u(70): 2, u(3): 1, u(5): 2, u(123): 3}
	got := s.Sorted()
	require.Len(t, got, 4)
	assert.Equal(t, []Tail{
		{Value: u(3), Length: 1},
		{Value: u(5), Length: 2},
		{Value: u(70), Length: 2},
		{Value: u(123), Length: 3},
	}, got)
}
