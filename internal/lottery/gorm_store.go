package lottery

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ArowuTest/lucky-lottery/internal/models"
)

// GormStore keeps the ledger in postgres.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) GetPool(ctx context.Context, id string) (models.Pool, error) {
	var pool models.Pool
	err := s.db.WithContext(ctx).
		Preload("Balances", func(db *gorm.DB) *gorm.DB {
			return db.Order("token asc")
		}).
		First(&pool, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pool, ErrPoolNotFound
	}
	return pool, err
}

func (s *GormStore) SavePool(ctx context.Context, pool *models.Pool) error {
	return s.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(pool).Error
}

func (s *GormStore) GetRound(ctx context.Context, poolID string, number uint64) (models.Round, error) {
	var round models.Round
	err := s.db.WithContext(ctx).
		Preload("Tails", func(db *gorm.DB) *gorm.DB {
			return db.Order("length asc, value asc")
		}).
		Preload("Rewards", func(db *gorm.DB) *gorm.DB {
			return db.Order("token asc")
		}).
		Where("pool_id = ? AND number = ?", poolID, number).
		First(&round).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return round, ErrRoundNotFound
	}
	return round, err
}

func (s *GormStore) ListSections(ctx context.Context, roundID uuid.UUID, userID string) ([]models.Section, error) {
	var out []models.Section
	err := s.db.WithContext(ctx).
		Where("round_id = ? AND user_id = ?", roundID, userID).
		Order("buy_index asc").
		Find(&out).Error
	return out, err
}

func (s *GormStore) ListUserRewards(ctx context.Context, roundID uuid.UUID, userID string) ([]models.UserReward, error) {
	var out []models.UserReward
	err := s.db.WithContext(ctx).
		Where("round_id = ? AND user_id = ?", roundID, userID).
		Order("token asc").
		Find(&out).Error
	return out, err
}

func (s *GormStore) SaveEntries(ctx context.Context, pool *models.Pool, round *models.Round, section *models.Section) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(pool).Error; err != nil {
			return err
		}
		if err := tx.Omit("Tails", "Rewards").Save(round).Error; err != nil {
			return err
		}
		return tx.Create(section).Error
	})
}

func (s *GormStore) SaveDraw(ctx context.Context, pool *models.Pool, drawn *models.Round, next *models.Round) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(pool).Error; err != nil {
			return err
		}
		if err := tx.Save(drawn).Error; err != nil {
			return err
		}
		return tx.Create(next).Error
	})
}

func (s *GormStore) SaveClaim(ctx context.Context, section *models.Section, rewards []models.UserReward) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(section).Error; err != nil {
			return err
		}
		for i := range rewards {
			r := &rewards[i]
			var existing models.UserReward
			err := tx.Where("round_id = ? AND user_id = ? AND token = ?", r.RoundID, r.UserID, r.Token).
				First(&existing).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				if err := tx.Create(r).Error; err != nil {
					return err
				}
			case err != nil:
				return err
			default:
				existing.Amount = existing.Amount.Add(r.Amount)
				if err := tx.Save(&existing).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (s *GormStore) AddRewardToken(ctx context.Context, token *models.RewardToken) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(token).Error
}

func (s *GormStore) GetRewardToken(ctx context.Context, token string) (models.RewardToken, error) {
	var t models.RewardToken
	err := s.db.WithContext(ctx).First(&t, "token = ?", token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return t, ErrTokenNotAllowed
	}
	return t, err
}

func (s *GormStore) ListRewardTokens(ctx context.Context) ([]models.RewardToken, error) {
	var out []models.RewardToken
	err := s.db.WithContext(ctx).Order("token asc").Find(&out).Error
	return out, err
}
