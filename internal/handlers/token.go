package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type tokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// AddToken handles POST /api/v1/tokens
func (h *Handler) AddToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload: " + err.Error()})
		return
	}
	t, err := h.svc.AddRewardToken(c.Request.Context(), req.Token)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.log.WithField("operator", c.GetString("subject")).WithField("token", t.Token).Info("reward token allowed")
	c.JSON(http.StatusCreated, gin.H{"token": t.Token})
}

// ListTokens handles GET /api/v1/tokens
func (h *Handler) ListTokens(c *gin.Context) {
	tokens, err := h.svc.RewardTokens(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, t.Token)
	}
	c.JSON(http.StatusOK, gin.H{"tokens": out})
}
