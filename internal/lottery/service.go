// Package lottery keeps the pool ledger around lots.Drawer: ticket sections,
// round draws, reward distribution and claims.
package lottery

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"lukechampine.com/uint128"

	"github.com/ArowuTest/lucky-lottery/internal/lots"
	"github.com/ArowuTest/lucky-lottery/internal/metrics"
	"github.com/ArowuTest/lucky-lottery/internal/models"
)

// DefaultMinQuantity is the minimum round size of a new pool.
const DefaultMinQuantity = 500000

// maxRatio is 100% in basis points.
const maxRatio = 10000

// Service serializes every ledger mutation. One Service must own a Store.
type Service struct {
	mu          sync.Mutex
	store       Store
	drawer      *lots.Drawer
	minQuantity uint128.Uint128
	log         *logrus.Entry
	now         func() time.Time
}

type Option func(*Service)

func WithLogger(log *logrus.Entry) Option {
	return func(s *Service) { s.log = log }
}

// WithMinQuantity sets the minimum given to pools created from now on.
func WithMinQuantity(q uint128.Uint128) Option {
	return func(s *Service) { s.minQuantity = q }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, drawer *lots.Drawer, opts ...Option) *Service {
	s := &Service{
		store:       store,
		drawer:      drawer,
		minQuantity: uint128.From64(DefaultMinQuantity),
		log:         logrus.NewEntry(logrus.StandardLogger()),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithField("component", "lottery")
	return s
}

// ClaimResult is what a claim paid out.
type ClaimResult struct {
	Section models.Section
	Winners uint128.Uint128
	Rewards []models.UserReward
}

func (s *Service) newRound(poolID string, number uint64) models.Round {
	return models.Round{
		ID:            uuid.New(),
		PoolID:        poolID,
		Number:        number,
		TotalQuantity: decimal.Zero,
		WinQuantity:   decimal.Zero,
	}
}

// openRound loads a pool and its open round. A missing pool is created
// when create is set; a missing open round is always created.
func (s *Service) openRound(ctx context.Context, poolID string, create bool) (models.Pool, models.Round, error) {
	pool, err := s.store.GetPool(ctx, poolID)
	if errors.Is(err, ErrPoolNotFound) && create {
		pool = models.Pool{
			ID:           poolID,
			MinQuantity:  FromQuantity(s.minQuantity),
			CurrentRound: 1,
		}
		return pool, s.newRound(poolID, 1), nil
	}
	if err != nil {
		return pool, models.Round{}, err
	}

	round, err := s.store.GetRound(ctx, pool.ID, pool.CurrentRound)
	if errors.Is(err, ErrRoundNotFound) {
		return pool, s.newRound(pool.ID, pool.CurrentRound), nil
	}
	return pool, round, err
}

// AddEntries sells quantity serials of the open round to userID and
// credits amount of token to the pool.
func (s *Service) AddEntries(ctx context.Context, poolID, userID string, quantity uint128.Uint128, token string, amount decimal.Decimal) (models.Section, error) {
	if quantity.IsZero() {
		return models.Section{}, fmt.Errorf("%w: zero entries", ErrInvalidQuantity)
	}
	if amount.Sign() < 0 {
		return models.Section{}, fmt.Errorf("%w: negative amount %s", ErrInvalidQuantity, amount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.store.GetRewardToken(ctx, token); err != nil {
		if errors.Is(err, ErrTokenNotAllowed) {
			return models.Section{}, fmt.Errorf("%w: %q", ErrTokenNotAllowed, token)
		}
		return models.Section{}, fmt.Errorf("get reward token: %w", err)
	}

	pool, round, err := s.openRound(ctx, poolID, true)
	if err != nil {
		return models.Section{}, err
	}
	total, err := ToQuantity(round.TotalQuantity)
	if err != nil {
		return models.Section{}, err
	}
	limit := lots.Pow10(lots.MaxDigits).Sub64(1)
	if quantity.Cmp(limit.Sub(total)) > 0 {
		return models.Section{}, fmt.Errorf("%w: round %d would exceed %s serials", ErrInvalidQuantity, round.Number, limit)
	}
	end := total.Add(quantity)

	existing, err := s.store.ListSections(ctx, round.ID, userID)
	if err != nil {
		return models.Section{}, fmt.Errorf("list sections: %w", err)
	}

	credited := false
	for i := range pool.Balances {
		if pool.Balances[i].Token == token {
			pool.Balances[i].Amount = pool.Balances[i].Amount.Add(amount)
			credited = true
		}
	}
	if !credited {
		pool.Balances = append(pool.Balances, models.PoolBalance{
			ID:     uuid.New(),
			PoolID: pool.ID,
			Token:  token,
			Amount: amount,
		})
	}

	section := models.Section{
		ID:       uuid.New(),
		RoundID:  round.ID,
		UserID:   userID,
		BuyIndex: len(existing) + 1,
		Start:    FromQuantity(total.Add64(1)),
		End:      FromQuantity(end),
	}
	round.TotalQuantity = FromQuantity(end)

	if err := s.store.SaveEntries(ctx, &pool, &round, &section); err != nil {
		return models.Section{}, fmt.Errorf("save entries: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"pool":      pool.ID,
		"round":     round.Number,
		"user":      userID,
		"buy_index": section.BuyIndex,
		"start":     section.Start.String(),
		"end":       section.End.String(),
	}).Debug("entries added")
	return section, nil
}

// AddRewardToken lets AddEntries accept payments in token.
func (s *Service) AddRewardToken(ctx context.Context, token string) (models.RewardToken, error) {
	if token == "" {
		return models.RewardToken{}, fmt.Errorf("%w: empty token", ErrTokenNotAllowed)
	}
	t := models.RewardToken{Token: token, CreatedAt: s.now()}
	if err := s.store.AddRewardToken(ctx, &t); err != nil {
		return models.RewardToken{}, fmt.Errorf("add reward token: %w", err)
	}
	s.log.WithField("token", token).Info("reward token added")
	return s.store.GetRewardToken(ctx, token)
}

func (s *Service) RewardTokens(ctx context.Context) ([]models.RewardToken, error) {
	return s.store.ListRewardTokens(ctx)
}

// SetMinQuantity changes the minimum round size of a pool, creating the
// pool if needed.
func (s *Service) SetMinQuantity(ctx context.Context, poolID string, quantity uint128.Uint128) (models.Pool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pool, err := s.store.GetPool(ctx, poolID)
	if errors.Is(err, ErrPoolNotFound) {
		pool = models.Pool{ID: poolID, CurrentRound: 1}
	} else if err != nil {
		return pool, err
	}
	pool.MinQuantity = FromQuantity(quantity)
	if err := s.store.SavePool(ctx, &pool); err != nil {
		return pool, fmt.Errorf("save pool: %w", err)
	}
	s.log.WithFields(logrus.Fields{"pool": poolID, "min_quantity": quantity.String()}).Info("minimum quantity updated")
	return pool, nil
}

// Draw closes the open round of a pool: it picks winQuantity winning
// serials, pays out ratio basis points of every pool balance to the round
// and opens the next round.
func (s *Service) Draw(ctx context.Context, poolID string, ratio uint32, salt uint32, winQuantity uint128.Uint128) (models.Round, error) {
	if ratio > maxRatio {
		return models.Round{}, fmt.Errorf("%w: %d", ErrInvalidRatio, ratio)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pool, round, err := s.openRound(ctx, poolID, false)
	if err != nil {
		return models.Round{}, err
	}
	total, err := ToQuantity(round.TotalQuantity)
	if err != nil {
		return models.Round{}, err
	}
	minimum, err := ToQuantity(pool.MinQuantity)
	if err != nil {
		return models.Round{}, err
	}
	if total.Cmp(minimum) < 0 {
		return models.Round{}, fmt.Errorf("%w: %s of %s sold", ErrInsufficientQuantity, total, minimum)
	}

	log := s.log.WithFields(logrus.Fields{"pool": pool.ID, "round": round.Number})
	res, err := s.draw(log, salt, winQuantity, total)
	if err != nil {
		return models.Round{}, fmt.Errorf("draw pool %s round %d: %w", pool.ID, round.Number, err)
	}

	ratioDec := decimal.NewFromInt(int64(ratio))
	round.Rewards = round.Rewards[:0]
	for i := range pool.Balances {
		reward := share(pool.Balances[i].Amount, ratioDec, bps)
		pool.Balances[i].Amount = pool.Balances[i].Amount.Sub(reward)
		round.Rewards = append(round.Rewards, models.RoundReward{
			ID:      uuid.New(),
			RoundID: round.ID,
			Token:   pool.Balances[i].Token,
			Amount:  reward,
		})
	}

	round.Tails = make([]models.WinningTail, 0, len(res.Tails))
	for _, t := range res.Tails.Sorted() {
		round.Tails = append(round.Tails, models.WinningTail{
			ID:      uuid.New(),
			RoundID: round.ID,
			Value:   t.Value.String(),
			Length:  t.Length,
		})
	}

	drawnAt := s.now()
	round.WinQuantity = FromQuantity(winQuantity)
	round.RewardRatio = ratio
	round.Winning = res.Winning
	round.Digits = res.Digits
	round.Salt = salt
	round.Drawn = true
	round.DrawnAt = &drawnAt

	pool.CurrentRound++
	next := s.newRound(pool.ID, pool.CurrentRound)

	if err := s.store.SaveDraw(ctx, &pool, &round, &next); err != nil {
		return models.Round{}, fmt.Errorf("save draw: %w", err)
	}

	log.WithFields(logrus.Fields{
		"total":       total.String(),
		"win":         winQuantity.String(),
		"winning":     res.Winning,
		"tails":       len(res.Tails),
		"rollbacks":   res.Stats.Rollbacks,
		"replenished": res.Stats.Replenished,
	}).Info("round drawn")
	return round, nil
}

// DrawLots runs a draw that touches no pool. It shares the drawer, and so
// the random source, with pool draws and is serialized with them.
func (s *Service) DrawLots(salt uint32, target, total uint128.Uint128) (lots.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draw(s.log, salt, target, total)
}

// draw must be called with s.mu held.
func (s *Service) draw(log *logrus.Entry, salt uint32, target, total uint128.Uint128) (lots.Result, error) {
	started := time.Now()
	res, err := s.drawer.Draw(salt, target, total)
	if err != nil {
		reason := "error"
		switch {
		case errors.Is(err, lots.ErrInvalidInput):
			reason = "invalid_input"
		case errors.Is(err, lots.ErrExhaustedCandidateSpace):
			reason = "exhausted"
		}
		metrics.DrawFailures.WithLabelValues(reason).Inc()
		log.WithError(err).Warn("draw failed")
		return lots.Result{}, err
	}
	metrics.ObserveDraw(res, time.Since(started))
	return res, nil
}

// Claim pays out a user's share of a drawn round for one section.
func (s *Service) Claim(ctx context.Context, poolID string, number uint64, userID string, buyIndex int) (ClaimResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	round, err := s.drawnRound(ctx, poolID, number)
	if err != nil {
		return ClaimResult{}, err
	}
	sections, err := s.store.ListSections(ctx, round.ID, userID)
	if err != nil {
		return ClaimResult{}, fmt.Errorf("list sections: %w", err)
	}
	var section *models.Section
	for i := range sections {
		if sections[i].BuyIndex == buyIndex {
			section = &sections[i]
		}
	}
	if section == nil {
		metrics.ClaimsTotal.WithLabelValues("invalid").Inc()
		return ClaimResult{}, fmt.Errorf("%w: %d", ErrInvalidSection, buyIndex)
	}
	if section.Claimed {
		metrics.ClaimsTotal.WithLabelValues("duplicate").Inc()
		return ClaimResult{}, ErrAlreadyClaimed
	}

	res, err := RoundResult(round)
	if err != nil {
		return ClaimResult{}, err
	}
	lo, err := ToQuantity(section.Start)
	if err != nil {
		return ClaimResult{}, err
	}
	hi, err := ToQuantity(section.End)
	if err != nil {
		return ClaimResult{}, err
	}
	winners := res.CountWinners(lo, hi)

	var rewards []models.UserReward
	if !winners.IsZero() {
		won := FromQuantity(winners)
		for _, rr := range round.Rewards {
			amount := share(rr.Amount, won, round.WinQuantity)
			if amount.IsZero() {
				continue
			}
			rewards = append(rewards, models.UserReward{
				ID:      uuid.New(),
				RoundID: round.ID,
				UserID:  userID,
				Token:   rr.Token,
				Amount:  amount,
			})
		}
	}

	claimedAt := s.now()
	section.Claimed = true
	section.ClaimedAt = &claimedAt
	if err := s.store.SaveClaim(ctx, section, rewards); err != nil {
		return ClaimResult{}, fmt.Errorf("save claim: %w", err)
	}

	outcome := "lost"
	if !winners.IsZero() {
		outcome = "won"
	}
	metrics.ClaimsTotal.WithLabelValues(outcome).Inc()
	s.log.WithFields(logrus.Fields{
		"pool":      poolID,
		"round":     number,
		"user":      userID,
		"buy_index": buyIndex,
		"winners":   winners.String(),
	}).Info("section claimed")

	return ClaimResult{Section: *section, Winners: winners, Rewards: rewards}, nil
}

func (s *Service) drawnRound(ctx context.Context, poolID string, number uint64) (models.Round, error) {
	round, err := s.store.GetRound(ctx, poolID, number)
	if err != nil {
		return round, err
	}
	if !round.Drawn {
		return round, ErrRoundNotDrawn
	}
	return round, nil
}

// RoundResult rebuilds the draw outcome stored on a round.
func RoundResult(round models.Round) (lots.Result, error) {
	total, err := ToQuantity(round.TotalQuantity)
	if err != nil {
		return lots.Result{}, err
	}
	res := lots.Result{
		Tails:   make(lots.TailSet, len(round.Tails)),
		Winning: round.Winning,
		Digits:  round.Digits,
		Total:   total,
	}
	for _, t := range round.Tails {
		v, err := tailValue(t.Value)
		if err != nil {
			return lots.Result{}, err
		}
		res.Tails[v] = t.Length
	}
	res.Target = res.Tails.CountMatched(uint128.From64(1), total)
	return res, nil
}

func (s *Service) Pool(ctx context.Context, poolID string) (models.Pool, error) {
	return s.store.GetPool(ctx, poolID)
}

func (s *Service) Round(ctx context.Context, poolID string, number uint64) (models.Round, error) {
	return s.store.GetRound(ctx, poolID, number)
}

// IsWinner checks a single serial of a drawn round.
func (s *Service) IsWinner(ctx context.Context, poolID string, number uint64, serial uint128.Uint128) (bool, error) {
	round, err := s.drawnRound(ctx, poolID, number)
	if err != nil {
		return false, err
	}
	res, err := RoundResult(round)
	if err != nil {
		return false, err
	}
	if serial.IsZero() || serial.Cmp(res.Total) > 0 {
		return false, fmt.Errorf("%w: serial %s outside 1..%s", ErrInvalidQuantity, serial, res.Total)
	}
	return res.IsWinner(serial), nil
}

func (s *Service) Sections(ctx context.Context, poolID string, number uint64, userID string) ([]models.Section, error) {
	round, err := s.store.GetRound(ctx, poolID, number)
	if err != nil {
		return nil, err
	}
	return s.store.ListSections(ctx, round.ID, userID)
}

func (s *Service) Rewards(ctx context.Context, poolID string, number uint64, userID string) ([]models.UserReward, error) {
	round, err := s.store.GetRound(ctx, poolID, number)
	if err != nil {
		return nil, err
	}
	return s.store.ListUserRewards(ctx, round.ID, userID)
}
