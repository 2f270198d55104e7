package lottery

import (
	"context"

	"github.com/google/uuid"

	"github.com/ArowuTest/lucky-lottery/internal/models"
)

// Store persists the ledger. Each Save* call is applied atomically.
type Store interface {
	GetPool(ctx context.Context, id string) (models.Pool, error)
	SavePool(ctx context.Context, pool *models.Pool) error

	// GetRound loads a round with its tails and rewards.
	GetRound(ctx context.Context, poolID string, number uint64) (models.Round, error)
	ListSections(ctx context.Context, roundID uuid.UUID, userID string) ([]models.Section, error)
	ListUserRewards(ctx context.Context, roundID uuid.UUID, userID string) ([]models.UserReward, error)

	// SaveEntries stores the pool and its open round and records a new section.
	SaveEntries(ctx context.Context, pool *models.Pool, round *models.Round, section *models.Section) error
	// SaveDraw stores the drawn round, the debited pool and the next open round.
	SaveDraw(ctx context.Context, pool *models.Pool, drawn *models.Round, next *models.Round) error
	// AddRewardToken allows token. Adding it twice is not an error.
	AddRewardToken(ctx context.Context, token *models.RewardToken) error
	// GetRewardToken returns ErrTokenNotAllowed for unknown tokens.
	GetRewardToken(ctx context.Context, token string) (models.RewardToken, error)
	ListRewardTokens(ctx context.Context) ([]models.RewardToken, error)

	// SaveClaim marks the section claimed and adds rewards to the user's totals.
	SaveClaim(ctx context.Context, section *models.Section, rewards []models.UserReward) error
}
