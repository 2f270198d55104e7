package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ArowuTest/lucky-lottery/internal/lots"
	"github.com/ArowuTest/lucky-lottery/internal/models"
)

type tailJSON struct {
	Value  string `json:"value"`
	Length uint8  `json:"length"`
}

// drawLotsRequest is the payload of the stateless draw.
type drawLotsRequest struct {
	Salt           uint32 `json:"salt"`
	TargetQuantity string `json:"target_quantity" binding:"required"`
	TotalQuantity  string `json:"total_quantity" binding:"required"`
}

// drawRequest closes the open round of a pool.
type drawRequest struct {
	Ratio       uint32 `json:"ratio"` // basis points
	Salt        uint32 `json:"salt"`
	WinQuantity string `json:"win_quantity" binding:"required"`
}

func tailsFromSet(s lots.TailSet) []tailJSON {
	out := make([]tailJSON, 0, len(s))
	for _, t := range s.Sorted() {
		out = append(out, tailJSON{Value: t.Value.String(), Length: t.Length})
	}
	return out
}

func tailsFromRows(rows []models.WinningTail) []tailJSON {
	out := make([]tailJSON, 0, len(rows))
	for _, t := range rows {
		out = append(out, tailJSON{Value: t.Value, Length: t.Length})
	}
	return out
}

// DrawLots handles POST /api/v1/draw-lots
func (h *Handler) DrawLots(c *gin.Context) {
	var req drawLotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload: " + err.Error()})
		return
	}
	target, ok := quantityField(c, "target_quantity", req.TargetQuantity)
	if !ok {
		return
	}
	total, ok := quantityField(c, "total_quantity", req.TotalQuantity)
	if !ok {
		return
	}

	res, err := h.svc.DrawLots(req.Salt, target, total)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tails":   tailsFromSet(res.Tails),
		"winning": res.Winning,
		"digits":  res.Digits,
	})
}

// Draw handles POST /api/v1/pools/:pool/draws
func (h *Handler) Draw(c *gin.Context) {
	var req drawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload: " + err.Error()})
		return
	}
	win, ok := quantityField(c, "win_quantity", req.WinQuantity)
	if !ok {
		return
	}

	round, err := h.svc.Draw(c.Request.Context(), c.Param("pool"), req.Ratio, req.Salt, win)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.log.WithField("operator", c.GetString("subject")).
		WithField("pool", round.PoolID).
		Info("draw requested")
	c.JSON(http.StatusOK, newRoundResponse(round))
}
