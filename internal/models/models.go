package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Role enumerates the JWT roles understood by the API.
type Role string

const (
	RoleOperator Role = "OPERATOR"
	RoleUser     Role = "USER"
)

// Pool is one lottery pool. Its rounds are drawn one after another.
type Pool struct {
	ID           string          `gorm:"primaryKey"`
	MinQuantity  decimal.Decimal `gorm:"type:numeric(39,0);not null"` // serials required before a draw
	CurrentRound uint64          `gorm:"not null"`                    // open round, starts at 1

	Balances  []PoolBalance `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PoolBalance is the reward amount a pool still holds for one token.
type PoolBalance struct {
	ID     uuid.UUID       `gorm:"type:uuid;primaryKey"`
	PoolID string          `gorm:"not null;uniqueIndex:idx_pool_token"`
	Token  string          `gorm:"not null;uniqueIndex:idx_pool_token"`
	Amount decimal.Decimal `gorm:"type:numeric(78,0);not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Round is one draw of a pool ("lot times" in the ledger).
type Round struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	PoolID        string          `gorm:"not null;uniqueIndex:idx_pool_round"`
	Number        uint64          `gorm:"not null;uniqueIndex:idx_pool_round"`
	TotalQuantity decimal.Decimal `gorm:"type:numeric(39,0);not null"` // serials sold, numbered 1..TotalQuantity
	WinQuantity   decimal.Decimal `gorm:"type:numeric(39,0);not null"`
	RewardRatio   uint32          `gorm:"not null"` // basis points of the pool balance paid out
	Winning       bool            `gorm:"not null"` // false: tails denote losing serials
	Digits        uint8           `gorm:"not null"`
	Drawn         bool            `gorm:"not null;default:false"`
	Salt          uint32
	DrawnAt       *time.Time

	Tails     []WinningTail `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Rewards   []RoundReward `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WinningTail is one tail of a drawn round.
type WinningTail struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	RoundID uuid.UUID `gorm:"type:uuid;not null;index"`
	Value   string    `gorm:"type:numeric(39,0);not null"`
	Length  uint8     `gorm:"not null"`
}

// RoundReward is the amount of one token paid out by a drawn round.
type RoundReward struct {
	ID      uuid.UUID       `gorm:"type:uuid;primaryKey"`
	RoundID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Token   string          `gorm:"not null"`
	Amount  decimal.Decimal `gorm:"type:numeric(78,0);not null"`
}

// Section is one purchase: the serials Start..End of a round bought by a user.
type Section struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	RoundID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_section_user"`
	UserID    string          `gorm:"not null;index:idx_section_user"`
	BuyIndex  int             `gorm:"not null"` // 1-based per user and round
	Start     decimal.Decimal `gorm:"type:numeric(39,0);not null"`
	End       decimal.Decimal `gorm:"type:numeric(39,0);not null"`
	Claimed   bool            `gorm:"not null;default:false"`
	ClaimedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// RewardToken is a token the operator accepts as entry payment.
type RewardToken struct {
	Token     string `gorm:"primaryKey"`
	CreatedAt time.Time
}

// UserReward accumulates what a user received from a round, per token.
type UserReward struct {
	ID      uuid.UUID       `gorm:"type:uuid;primaryKey"`
	RoundID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_user_reward"`
	UserID  string          `gorm:"not null;uniqueIndex:idx_user_reward"`
	Token   string          `gorm:"not null;uniqueIndex:idx_user_reward"`
	Amount  decimal.Decimal `gorm:"type:numeric(78,0);not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Migrate will create/update your tables
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Pool{},
		&PoolBalance{},
		&Round{},
		&WinningTail{},
		&RoundReward{},
		&Section{},
		&UserReward{},
		&RewardToken{},
	)
}
