package lottery

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"

	"github.com/ArowuTest/lucky-lottery/internal/lots"
	"github.com/ArowuTest/lucky-lottery/internal/rng"
)

func u(v uint64) uint128.Uint128 { return uint128.From64(v) }

func newTestService(t *testing.T, seed uint64) (*Service, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := NewService(
		NewMemoryStore(),
		lots.NewDrawer(rng.NewSeeded(seed)),
		WithLogger(logrus.NewEntry(logger)),
		WithMinQuantity(u(100)),
		WithClock(func() time.Time { return fixed }),
	)
	for _, token := range []string{"ABC", "XYZ"} {
		_, err := svc.AddRewardToken(context.Background(), token)
		require.NoError(t, err)
	}
	return svc, hook
}

func TestAddEntriesAssignsConsecutiveSections(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, 1)

	a, err := svc.AddEntries(ctx, "p1", "alice", u(60), "ABC", decimal.NewFromInt(600))
	require.NoError(t, err)
	b, err := svc.AddEntries(ctx, "p1", "bob", u(40), "ABC", decimal.NewFromInt(400))
	require.NoError(t, err)
	c, err := svc.AddEntries(ctx, "p1", "alice", u(5), "XYZ", decimal.NewFromInt(7))
	require.NoError(t, err)

	assert.Equal(t, "1", a.Start.String())
	assert.Equal(t, "60", a.End.String())
	assert.Equal(t, 1, a.BuyIndex)
	assert.Equal(t, "61", b.Start.String())
	assert.Equal(t, "100", b.End.String())
	assert.Equal(t, 2, c.BuyIndex)
	assert.Equal(t, "105", c.End.String())

	pool, err := svc.Pool(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), pool.CurrentRound)
	assert.Equal(t, "100", pool.MinQuantity.String())
	require.Len(t, pool.Balances, 2)
	assert.Equal(t, "1000", pool.Balances[0].Amount.String())
	assert.Equal(t, "7", pool.Balances[1].Amount.String())

	round, err := svc.Round(ctx, "p1", 1)
	require.NoError(t, err)
	assert.Equal(t, "105", round.TotalQuantity.String())
	assert.False(t, round.Drawn)
}

func TestAddEntriesRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, 1)

	_, err := svc.AddEntries(ctx, "p1", "alice", uint128.Zero, "ABC", decimal.Zero)
	assert.True(t, errors.Is(err, ErrInvalidQuantity))

	_, err = svc.AddEntries(ctx, "p1", "alice", u(1), "ABC", decimal.NewFromInt(-1))
	assert.True(t, errors.Is(err, ErrInvalidQuantity))

	_, err = svc.AddEntries(ctx, "p1", "alice", lots.Pow10(lots.MaxDigits), "ABC", decimal.Zero)
	assert.True(t, errors.Is(err, ErrInvalidQuantity))
}

func TestAddEntriesRequiresRewardToken(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, 1)

	_, err := svc.AddEntries(ctx, "p1", "alice", u(10), "DEF", decimal.NewFromInt(5))
	assert.True(t, errors.Is(err, ErrTokenNotAllowed))
	_, err = svc.Pool(ctx, "p1")
	assert.True(t, errors.Is(err, ErrPoolNotFound), "a rejected entry must not create the pool")

	_, err = svc.AddRewardToken(ctx, "")
	assert.True(t, errors.Is(err, ErrTokenNotAllowed))

	_, err = svc.AddRewardToken(ctx, "DEF")
	require.NoError(t, err)
	_, err = svc.AddRewardToken(ctx, "DEF")
	require.NoError(t, err)

	tokens, err := svc.RewardTokens(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(tokens))
	for _, tk := range tokens {
		names = append(names, tk.Token)
	}
	assert.Equal(t, []string{"ABC", "DEF", "XYZ"}, names)

	_, err = svc.AddEntries(ctx, "p1", "alice", u(10), "DEF", decimal.NewFromInt(5))
	require.NoError(t, err)
}

func TestDrawPreconditions(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, 1)

	_, err := svc.Draw(ctx, "missing", 100, 1, u(1))
	assert.True(t, errors.Is(err, ErrPoolNotFound))

	_, err = svc.AddEntries(ctx, "p1", "alice", u(99), "ABC", decimal.NewFromInt(10))
	require.NoError(t, err)

	_, err = svc.Draw(ctx, "p1", 10001, 1, u(1))
	assert.True(t, errors.Is(err, ErrInvalidRatio))

	_, err = svc.Draw(ctx, "p1", 100, 1, u(1))
	assert.True(t, errors.Is(err, ErrInsufficientQuantity))

	_, err = svc.SetMinQuantity(ctx, "p1", u(50))
	require.NoError(t, err)

	_, err = svc.Draw(ctx, "p1", 100, 1, u(99))
	assert.True(t, errors.Is(err, lots.ErrInvalidInput), "win quantity must be below the total")
}

func TestDrawAndClaimFlow(t *testing.T) {
	ctx := context.Background()
	svc, hook := newTestService(t, 42)

	_, err := svc.AddEntries(ctx, "p1", "alice", u(60), "ABC", decimal.NewFromInt(1000))
	require.NoError(t, err)
	_, err = svc.AddEntries(ctx, "p1", "bob", u(40), "ABC", decimal.NewFromInt(1000))
	require.NoError(t, err)

	round, err := svc.Draw(ctx, "p1", 5000, 7, u(10))
	require.NoError(t, err)
	assert.True(t, round.Drawn)
	assert.True(t, round.Winning)
	assert.Equal(t, uint32(5000), round.RewardRatio)
	require.Len(t, round.Rewards, 1)
	assert.Equal(t, "1000", round.Rewards[0].Amount.String())
	assert.NotEmpty(t, round.Tails)
	assert.Equal(t, "round drawn", hook.LastEntry().Message)

	pool, err := svc.Pool(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), pool.CurrentRound)
	assert.Equal(t, "1000", pool.Balances[0].Amount.String())

	winners := 0
	for s := uint64(1); s <= 100; s++ {
		ok, err := svc.IsWinner(ctx, "p1", 1, u(s))
		require.NoError(t, err)
		if ok {
			winners++
		}
	}
	assert.Equal(t, 10, winners)

	alice, err := svc.Claim(ctx, "p1", 1, "alice", 1)
	require.NoError(t, err)
	bob, err := svc.Claim(ctx, "p1", 1, "bob", 1)
	require.NoError(t, err)
	assert.Equal(t, u(10), alice.Winners.Add(bob.Winners))

	paid := decimal.Zero
	for _, res := range []ClaimResult{alice, bob} {
		for _, r := range res.Rewards {
			paid = paid.Add(r.Amount)
		}
	}
	assert.Equal(t, "1000", paid.String(), "every winner is paid 100")

	_, err = svc.Claim(ctx, "p1", 1, "alice", 1)
	assert.True(t, errors.Is(err, ErrAlreadyClaimed))
	_, err = svc.Claim(ctx, "p1", 1, "alice", 2)
	assert.True(t, errors.Is(err, ErrInvalidSection))

	sections, err := svc.Sections(ctx, "p1", 1, "alice")
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.True(t, sections[0].Claimed)
	require.NotNil(t, sections[0].ClaimedAt)

	if !alice.Winners.IsZero() {
		rewards, err := svc.Rewards(ctx, "p1", 1, "alice")
		require.NoError(t, err)
		require.Len(t, rewards, 1)
		assert.Equal(t, FromQuantity(alice.Winners.Mul64(100)).String(), rewards[0].Amount.String())
	}
}

func TestDrawLotsLeavesPoolsAlone(t *testing.T) {
	ctx := context.Background()
	svc, hook := newTestService(t, 21)

	res, err := svc.DrawLots(4, u(73), u(1000))
	require.NoError(t, err)
	assert.Equal(t, u(73), res.CountWinners(u(1), u(1000)))

	_, err = svc.DrawLots(4, u(1000), u(1000))
	assert.True(t, errors.Is(err, lots.ErrInvalidInput))
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)

	_, err = svc.Pool(ctx, "p1")
	assert.True(t, errors.Is(err, ErrPoolNotFound))
}

func TestClaimHonoursLosingDirection(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, 3)

	_, err := svc.AddEntries(ctx, "p1", "alice", u(30), "ABC", decimal.NewFromInt(90))
	require.NoError(t, err)
	_, err = svc.AddEntries(ctx, "p1", "bob", u(70), "ABC", decimal.NewFromInt(0))
	require.NoError(t, err)

	round, err := svc.Draw(ctx, "p1", 10000, 0, u(90))
	require.NoError(t, err)
	assert.False(t, round.Winning)

	alice, err := svc.Claim(ctx, "p1", 1, "alice", 1)
	require.NoError(t, err)
	bob, err := svc.Claim(ctx, "p1", 1, "bob", 1)
	require.NoError(t, err)
	assert.Equal(t, u(90), alice.Winners.Add(bob.Winners))

	pool, err := svc.Pool(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, pool.Balances[0].Amount.IsZero())
}

func TestClaimBeforeDraw(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, 5)

	_, err := svc.AddEntries(ctx, "p1", "alice", u(100), "ABC", decimal.NewFromInt(1))
	require.NoError(t, err)

	_, err = svc.Claim(ctx, "p1", 1, "alice", 1)
	assert.True(t, errors.Is(err, ErrRoundNotDrawn))
	_, err = svc.Claim(ctx, "p1", 9, "alice", 1)
	assert.True(t, errors.Is(err, ErrRoundNotFound))

	_, err = svc.IsWinner(ctx, "p1", 1, u(1))
	assert.True(t, errors.Is(err, ErrRoundNotDrawn))
}

func TestNextRoundStartsAtOne(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, 9)

	_, err := svc.AddEntries(ctx, "p1", "alice", u(150), "ABC", decimal.NewFromInt(1))
	require.NoError(t, err)
	_, err = svc.Draw(ctx, "p1", 0, 0, u(20))
	require.NoError(t, err)

	s, err := svc.AddEntries(ctx, "p1", "alice", u(3), "ABC", decimal.NewFromInt(1))
	require.NoError(t, err)
	assert.Equal(t, "1", s.Start.String())
	assert.Equal(t, 1, s.BuyIndex)

	_, err = svc.IsWinner(ctx, "p1", 1, u(151))
	assert.True(t, errors.Is(err, ErrInvalidQuantity))
}

func TestRoundResultRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, 11)

	_, err := svc.AddEntries(ctx, "p1", "alice", u(1000), "ABC", decimal.NewFromInt(1))
	require.NoError(t, err)
	round, err := svc.Draw(ctx, "p1", 100, 3, u(73))
	require.NoError(t, err)

	res, err := RoundResult(round)
	require.NoError(t, err)
	assert.Equal(t, u(73), res.CountWinners(u(1), u(1000)))
	assert.Equal(t, uint8(4), res.Digits)
}

func TestParseQuantity(t *testing.T) {
	q, err := ParseQuantity("340282366920938463463374607431768211455")
	require.NoError(t, err)
	assert.Equal(t, uint128.Max, q)

	for _, bad := range []string{"", "abc", "-1", "1.5", "340282366920938463463374607431768211456"} {
		_, err := ParseQuantity(bad)
		assert.True(t, errors.Is(err, ErrInvalidQuantity), bad)
	}
}

func TestShareFloors(t *testing.T) {
	got := share(decimal.NewFromInt(1000), decimal.NewFromInt(1), decimal.NewFromInt(3))
	assert.Equal(t, "333", got.String())
	got = share(decimal.NewFromInt(999), decimal.NewFromInt(2), decimal.NewFromInt(3))
	assert.Equal(t, "666", got.String())
}
