package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type createOrderRequest struct {
	CourseIDs   []string `json:"courseIds" binding:"required,min=1,dive,required"`
	TotalAmount int64    `json:"totalAmount" binding:"min=0"`
}

func (h *handlers) checkout(c *gin.Context) {
	res, err := h.deps.OrderSvc.Checkout(c.Request.Context(), clientID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	status := http.StatusCreated
	if res.Reused {
		status = http.StatusOK
	}
	c.JSON(status, res)
}

func (h *handlers) createOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	id, err := h.deps.OrderSvc.CreateOrder(c.Request.Context(), clientID(c), req.CourseIDs, req.TotalAmount)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order_id": id})
}

func (h *handlers) listOrders(c *gin.Context) {
	orders, err := h.deps.OrderSvc.List(c.Request.Context(), clientID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": orders, "count": len(orders)})
}

func (h *handlers) getOrder(c *gin.Context) {
	o, err := h.deps.OrderSvc.Get(c.Request.Context(), clientID(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *handlers) payOrder(c *gin.Context) {
	res, err := h.deps.OrderSvc.PayWithBalance(c.Request.Context(), clientID(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handlers) markOrderPaid(c *gin.Context) {
	ok, err := h.deps.OrderSvc.MarkOrderPaid(c.Request.Context(), clientID(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": ok})
}
