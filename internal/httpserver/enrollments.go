package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *handlers) listEnrollments(c *gin.Context) {
	rows, err := h.deps.EnrollmentSvc.Mine(c.Request.Context(), clientID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": rows, "count": len(rows)})
}

func (h *handlers) courseAccess(c *gin.Context) {
	ok, err := h.deps.EnrollmentSvc.HasAccess(c.Request.Context(), clientID(c), c.Param("courseId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"course_id": c.Param("courseId"), "has_access": ok})
}
