package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type redeemRequest struct {
	Code string `json:"code" binding:"required"`
}

type payRequest struct {
	Amount  int64  `json:"amount" binding:"required,gt=0"`
	OrderID string `json:"orderId"`
}

func (h *handlers) getBalance(c *gin.Context) {
	snap, err := h.deps.BalanceSvc.Snapshot(c.Request.Context(), clientID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *handlers) redeemCode(c *gin.Context) {
	var req redeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	snap, err := h.deps.BalanceSvc.RedeemCode(c.Request.Context(), clientID(c), req.Code)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *handlers) payWithBalance(c *gin.Context) {
	var req payRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	snap, err := h.deps.BalanceSvc.Pay(c.Request.Context(), clientID(c), req.Amount, req.OrderID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}
