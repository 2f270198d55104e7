package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/ArowuTest/lucky-lottery/internal/models"
)

type entriesRequest struct {
	UserID   string `json:"user_id" binding:"required"`
	Quantity string `json:"quantity" binding:"required"`
	Token    string `json:"token" binding:"required"`
	Amount   string `json:"amount"`
}

type minQuantityRequest struct {
	Quantity string `json:"quantity" binding:"required"`
}

type balanceJSON struct {
	Token  string `json:"token"`
	Amount string `json:"amount"`
}

type poolResponse struct {
	ID           string        `json:"id"`
	MinQuantity  string        `json:"min_quantity"`
	CurrentRound uint64        `json:"current_round"`
	Balances     []balanceJSON `json:"balances"`
}

func newPoolResponse(p models.Pool) poolResponse {
	resp := poolResponse{
		ID:           p.ID,
		MinQuantity:  p.MinQuantity.String(),
		CurrentRound: p.CurrentRound,
		Balances:     make([]balanceJSON, 0, len(p.Balances)),
	}
	for _, b := range p.Balances {
		resp.Balances = append(resp.Balances, balanceJSON{Token: b.Token, Amount: b.Amount.String()})
	}
	return resp
}

type sectionJSON struct {
	BuyIndex int    `json:"buy_index"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Claimed  bool   `json:"claimed"`
}

func newSectionJSON(s models.Section) sectionJSON {
	return sectionJSON{BuyIndex: s.BuyIndex, Start: s.Start.String(), End: s.End.String(), Claimed: s.Claimed}
}

// AddEntries handles POST /api/v1/pools/:pool/entries
func (h *Handler) AddEntries(c *gin.Context) {
	var req entriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload: " + err.Error()})
		return
	}
	quantity, ok := quantityField(c, "quantity", req.Quantity)
	if !ok {
		return
	}
	amount := decimal.Zero
	if req.Amount != "" {
		var err error
		if amount, err = decimal.NewFromString(req.Amount); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
			return
		}
	}

	section, err := h.svc.AddEntries(c.Request.Context(), c.Param("pool"), req.UserID, quantity, req.Token, amount)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, newSectionJSON(section))
}

// SetMinQuantity handles PUT /api/v1/pools/:pool/min-quantity
func (h *Handler) SetMinQuantity(c *gin.Context) {
	var req minQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload: " + err.Error()})
		return
	}
	quantity, ok := quantityField(c, "quantity", req.Quantity)
	if !ok {
		return
	}
	pool, err := h.svc.SetMinQuantity(c.Request.Context(), c.Param("pool"), quantity)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newPoolResponse(pool))
}

// GetPool handles GET /api/v1/pools/:pool
func (h *Handler) GetPool(c *gin.Context) {
	pool, err := h.svc.Pool(c.Request.Context(), c.Param("pool"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newPoolResponse(pool))
}
