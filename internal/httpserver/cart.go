package httpserver

import (
	"net/http"
	"strconv"

	"github.com/HuyGoodBoy/yogalanding-sub000/internal/domain"
	"github.com/HuyGoodBoy/yogalanding-sub000/internal/service/catalog"
	"github.com/gin-gonic/gin"
)

func (h *handlers) listCourses(c *gin.Context) {
	f := catalog.Filter{
		Level:  c.Query("level"),
		Search: c.Query("q"),
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(c, domain.Invalid("limit", "must be a non-negative integer"))
			return
		}
		f.Limit = n
	}
	courses, err := h.deps.CatalogSvc.List(c.Request.Context(), clientID(c), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": courses, "count": len(courses)})
}

func (h *handlers) getCourse(c *gin.Context) {
	course, err := h.deps.CatalogSvc.GetBySlug(c.Request.Context(), clientID(c), c.Param("slug"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

func (h *handlers) getCart(c *gin.Context) {
	summary, err := h.deps.CartSvc.Summary(c.Request.Context(), clientID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *handlers) addCartItem(c *gin.Context) {
	var item domain.CartItem
	if err := c.ShouldBindJSON(&item); err != nil {
		writeBindError(c, err)
		return
	}
	summary, err := h.deps.CartSvc.Add(c.Request.Context(), clientID(c), item)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *handlers) removeCartItem(c *gin.Context) {
	summary, err := h.deps.CartSvc.Remove(c.Request.Context(), clientID(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *handlers) clearCart(c *gin.Context) {
	if err := h.deps.CartSvc.Clear(c.Request.Context(), clientID(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, domain.Summarize(nil))
}
