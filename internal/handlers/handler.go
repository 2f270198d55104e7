package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"lukechampine.com/uint128"

	"github.com/ArowuTest/lucky-lottery/internal/lots"
	"github.com/ArowuTest/lucky-lottery/internal/lottery"
	"github.com/ArowuTest/lucky-lottery/internal/models"
)

// Operator is the single account allowed to log in for operator tokens.
type Operator struct {
	Username     string
	PasswordHash string // bcrypt
}

// Handler serves the lottery API.
type Handler struct {
	svc      *lottery.Service
	operator Operator
	log      *logrus.Entry
}

func New(svc *lottery.Service, operator Operator, log *logrus.Entry) *Handler {
	return &Handler{svc: svc, operator: operator, log: log.WithField("component", "http")}
}

// Register mounts every route under r (normally /api/v1).
func (h *Handler) Register(r gin.IRouter) {
	operatorOnly := RequireAuth(models.RoleOperator)

	r.POST("/operator/login", h.Login)
	r.POST("/draw-lots", h.DrawLots)
	r.GET("/tokens", h.ListTokens)
	r.POST("/tokens", operatorOnly, h.AddToken)

	pools := r.Group("/pools/:pool")
	{
		pools.GET("", h.GetPool)
		pools.POST("/entries", h.AddEntries)
		pools.PUT("/min-quantity", operatorOnly, h.SetMinQuantity)
		pools.POST("/draws", operatorOnly, h.Draw)

		rounds := pools.Group("/rounds/:round")
		{
			rounds.GET("", h.GetRound)
			rounds.GET("/serials/:serial", h.CheckSerial)
			rounds.GET("/users/:user/sections", h.ListSections)
			rounds.GET("/users/:user/rewards", h.ListRewards)
			rounds.POST("/claims", h.Claim)
		}
	}
}

// fail answers err with the status its sentinel maps to.
func (h *Handler) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, lottery.ErrPoolNotFound),
		errors.Is(err, lottery.ErrRoundNotFound),
		errors.Is(err, lottery.ErrInvalidSection):
		status = http.StatusNotFound
	case errors.Is(err, lottery.ErrRoundNotDrawn),
		errors.Is(err, lottery.ErrInsufficientQuantity),
		errors.Is(err, lottery.ErrAlreadyClaimed):
		status = http.StatusConflict
	case errors.Is(err, lottery.ErrInvalidRatio),
		errors.Is(err, lottery.ErrInvalidQuantity),
		errors.Is(err, lottery.ErrTokenNotAllowed),
		errors.Is(err, lots.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, lots.ErrExhaustedCandidateSpace):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		h.log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		c.JSON(status, gin.H{"error": "Internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func roundParam(c *gin.Context) (uint64, bool) {
	n, err := strconv.ParseUint(c.Param("round"), 10, 64)
	if err != nil || n == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid round number"})
		return 0, false
	}
	return n, true
}

func quantityField(c *gin.Context, name, value string) (uint128.Uint128, bool) {
	q, err := lottery.ParseQuantity(value)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name + ": " + err.Error()})
		return uint128.Zero, false
	}
	return q, true
}
