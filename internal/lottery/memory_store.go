package lottery

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/ArowuTest/lucky-lottery/internal/models"
)

type roundKey struct {
	pool   string
	number uint64
}

type userKey struct {
	round uuid.UUID
	user  string
}

// MemoryStore is a process-local Store. Nothing survives a restart.
type MemoryStore struct {
	mu       sync.RWMutex
	pools    map[string]models.Pool
	rounds   map[roundKey]models.Round
	sections map[userKey][]models.Section
	rewards  map[userKey][]models.UserReward
	tokens   map[string]models.RewardToken
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		pools:    make(map[string]models.Pool),
		rounds:   make(map[roundKey]models.Round),
		sections: make(map[userKey][]models.Section),
		rewards:  make(map[userKey][]models.UserReward),
		tokens:   make(map[string]models.RewardToken),
	}
}

func clonePool(p models.Pool) models.Pool {
	p.Balances = append([]models.PoolBalance(nil), p.Balances...)
	return p
}

func cloneRound(r models.Round) models.Round {
	r.Tails = append([]models.WinningTail(nil), r.Tails...)
	r.Rewards = append([]models.RoundReward(nil), r.Rewards...)
	return r
}

func (m *MemoryStore) GetPool(_ context.Context, id string) (models.Pool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.pools[id]
	if !ok {
		return models.Pool{}, ErrPoolNotFound
	}
	return clonePool(p), nil
}

func (m *MemoryStore) SavePool(_ context.Context, pool *models.Pool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pools[pool.ID] = clonePool(*pool)
	return nil
}

func (m *MemoryStore) GetRound(_ context.Context, poolID string, number uint64) (models.Round, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rounds[roundKey{poolID, number}]
	if !ok {
		return models.Round{}, ErrRoundNotFound
	}
	return cloneRound(r), nil
}

func (m *MemoryStore) ListSections(_ context.Context, roundID uuid.UUID, userID string) ([]models.Section, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.Section(nil), m.sections[userKey{roundID, userID}]...), nil
}

func (m *MemoryStore) ListUserRewards(_ context.Context, roundID uuid.UUID, userID string) ([]models.UserReward, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := append([]models.UserReward(nil), m.rewards[userKey{roundID, userID}]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Token < out[j].Token })
	return out, nil
}

func (m *MemoryStore) SaveEntries(_ context.Context, pool *models.Pool, round *models.Round, section *models.Section) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := userKey{section.RoundID, section.UserID}
	for _, s := range m.sections[k] {
		if s.BuyIndex == section.BuyIndex {
			return fmt.Errorf("duplicate section %d for user %s", s.BuyIndex, s.UserID)
		}
	}
	m.pools[pool.ID] = clonePool(*pool)
	m.rounds[roundKey{round.PoolID, round.Number}] = cloneRound(*round)
	m.sections[k] = append(m.sections[k], *section)
	return nil
}

func (m *MemoryStore) SaveDraw(_ context.Context, pool *models.Pool, drawn *models.Round, next *models.Round) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	nk := roundKey{next.PoolID, next.Number}
	if _, ok := m.rounds[nk]; ok {
		return fmt.Errorf("round %d of pool %s already exists", next.Number, next.PoolID)
	}
	m.pools[pool.ID] = clonePool(*pool)
	m.rounds[roundKey{drawn.PoolID, drawn.Number}] = cloneRound(*drawn)
	m.rounds[nk] = cloneRound(*next)
	return nil
}

func (m *MemoryStore) SaveClaim(_ context.Context, section *models.Section, rewards []models.UserReward) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := userKey{section.RoundID, section.UserID}
	list := m.sections[k]
	found := false
	for i := range list {
		if list[i].ID == section.ID {
			list[i] = *section
			found = true
		}
	}
	if !found {
		return ErrInvalidSection
	}

	totals := m.rewards[k]
	for _, r := range rewards {
		merged := false
		for i := range totals {
			if totals[i].Token == r.Token {
				totals[i].Amount = totals[i].Amount.Add(r.Amount)
				merged = true
			}
		}
		if !merged {
			totals = append(totals, r)
		}
	}
	m.rewards[k] = totals
	return nil
}

func (m *MemoryStore) AddRewardToken(_ context.Context, token *models.RewardToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tokens[token.Token]; !ok {
		m.tokens[token.Token] = *token
	}
	return nil
}

func (m *MemoryStore) GetRewardToken(_ context.Context, token string) (models.RewardToken, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tokens[token]
	if !ok {
		return models.RewardToken{}, ErrTokenNotAllowed
	}
	return t, nil
}

func (m *MemoryStore) ListRewardTokens(_ context.Context) ([]models.RewardToken, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.RewardToken, 0, len(m.tokens))
	for _, t := range m.tokens {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Token < out[j].Token })
	return out, nil
}
