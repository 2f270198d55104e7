package lottery

import "errors"

var (
	ErrPoolNotFound         = errors.New("pool not found")
	ErrRoundNotFound        = errors.New("round not found")
	ErrRoundNotDrawn        = errors.New("round not drawn yet")
	ErrInsufficientQuantity = errors.New("round below the pool minimum quantity")
	ErrInvalidSection       = errors.New("no such section")
	ErrAlreadyClaimed       = errors.New("section already claimed")
	ErrInvalidRatio         = errors.New("reward ratio must be within 0..10000")
	ErrInvalidQuantity      = errors.New("invalid quantity")
	ErrTokenNotAllowed      = errors.New("token not accepted as reward")
)
