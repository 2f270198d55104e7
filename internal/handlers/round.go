package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ArowuTest/lucky-lottery/internal/models"
)

type roundResponse struct {
	PoolID        string        `json:"pool_id"`
	Number        uint64        `json:"number"`
	TotalQuantity string        `json:"total_quantity"`
	WinQuantity   string        `json:"win_quantity"`
	RewardRatio   uint32        `json:"reward_ratio"`
	Drawn         bool          `json:"drawn"`
	Winning       bool          `json:"winning"`
	Digits        uint8         `json:"digits,omitempty"`
	DrawnAt       *time.Time    `json:"drawn_at,omitempty"`
	Tails         []tailJSON    `json:"tails"`
	Rewards       []balanceJSON `json:"rewards"`
}

func newRoundResponse(r models.Round) roundResponse {
	resp := roundResponse{
		PoolID:        r.PoolID,
		Number:        r.Number,
		TotalQuantity: r.TotalQuantity.String(),
		WinQuantity:   r.WinQuantity.String(),
		RewardRatio:   r.RewardRatio,
		Drawn:         r.Drawn,
		Winning:       r.Winning,
		Digits:        r.Digits,
		DrawnAt:       r.DrawnAt,
		Tails:         tailsFromRows(r.Tails),
		Rewards:       make([]balanceJSON, 0, len(r.Rewards)),
	}
	for _, rw := range r.Rewards {
		resp.Rewards = append(resp.Rewards, balanceJSON{Token: rw.Token, Amount: rw.Amount.String()})
	}
	return resp
}

type claimRequest struct {
	UserID   string `json:"user_id" binding:"required"`
	BuyIndex int    `json:"buy_index" binding:"required,gte=1"`
}

// GetRound handles GET /api/v1/pools/:pool/rounds/:round
func (h *Handler) GetRound(c *gin.Context) {
	number, ok := roundParam(c)
	if !ok {
		return
	}
	round, err := h.svc.Round(c.Request.Context(), c.Param("pool"), number)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newRoundResponse(round))
}

// CheckSerial handles GET /api/v1/pools/:pool/rounds/:round/serials/:serial
func (h *Handler) CheckSerial(c *gin.Context) {
	number, ok := roundParam(c)
	if !ok {
		return
	}
	serial, ok := quantityField(c, "serial", c.Param("serial"))
	if !ok {
		return
	}
	won, err := h.svc.IsWinner(c.Request.Context(), c.Param("pool"), number, serial)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"serial": serial.String(), "winner": won})
}

// ListSections handles GET /api/v1/pools/:pool/rounds/:round/users/:user/sections
func (h *Handler) ListSections(c *gin.Context) {
	number, ok := roundParam(c)
	if !ok {
		return
	}
	sections, err := h.svc.Sections(c.Request.Context(), c.Param("pool"), number, c.Param("user"))
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]sectionJSON, 0, len(sections))
	for _, s := range sections {
		out = append(out, newSectionJSON(s))
	}
	c.JSON(http.StatusOK, gin.H{"sections": out})
}

// ListRewards handles GET /api/v1/pools/:pool/rounds/:round/users/:user/rewards
func (h *Handler) ListRewards(c *gin.Context) {
	number, ok := roundParam(c)
	if !ok {
		return
	}
	rewards, err := h.svc.Rewards(c.Request.Context(), c.Param("pool"), number, c.Param("user"))
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]balanceJSON, 0, len(rewards))
	for _, r := range rewards {
		out = append(out, balanceJSON{Token: r.Token, Amount: r.Amount.String()})
	}
	c.JSON(http.StatusOK, gin.H{"rewards": out})
}

// Claim handles POST /api/v1/pools/:pool/rounds/:round/claims
func (h *Handler) Claim(c *gin.Context) {
	number, ok := roundParam(c)
	if !ok {
		return
	}
	var req claimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload: " + err.Error()})
		return
	}

	res, err := h.svc.Claim(c.Request.Context(), c.Param("pool"), number, req.UserID, req.BuyIndex)
	if err != nil {
		h.fail(c, err)
		return
	}
	rewards := make([]balanceJSON, 0, len(res.Rewards))
	for _, r := range res.Rewards {
		rewards = append(rewards, balanceJSON{Token: r.Token, Amount: r.Amount.String()})
	}
	c.JSON(http.StatusOK, gin.H{
		"section": newSectionJSON(res.Section),
		"winners": res.Winners.String(),
		"rewards": rewards,
	})
}
