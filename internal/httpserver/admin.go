package httpserver

import (
	"net/http"

	"github.com/HuyGoodBoy/yogalanding-sub000/internal/service/admin"
	"github.com/gin-gonic/gin"
)

type grantRequest struct {
	CourseID string `json:"courseId" binding:"required"`
}

type setAdminRequest struct {
	IsAdmin *bool `json:"isAdmin" binding:"required"`
}

func (h *handlers) adminUsers(c *gin.Context) {
	users, err := h.deps.AdminSvc.ListUsers(c.Request.Context(), clientID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": users, "count": len(users)})
}

func (h *handlers) adminCourses(c *gin.Context) {
	courses, err := h.deps.AdminSvc.ListCourses(c.Request.Context(), clientID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": courses, "count": len(courses)})
}

func (h *handlers) adminUserEnrollments(c *gin.Context) {
	rows, err := h.deps.AdminSvc.UserEnrollments(c.Request.Context(), clientID(c), c.Param("userId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": rows, "count": len(rows)})
}

func (h *handlers) adminGrantEnrollment(c *gin.Context) {
	var req grantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	rows, err := h.deps.AdminSvc.GrantEnrollment(c.Request.Context(), clientID(c), c.Param("userId"), req.CourseID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": rows, "count": len(rows)})
}

func (h *handlers) adminRevokeEnrollment(c *gin.Context) {
	rows, err := h.deps.AdminSvc.RevokeEnrollment(c.Request.Context(), clientID(c), c.Param("userId"), c.Param("courseId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": rows, "count": len(rows)})
}

func (h *handlers) adminSetAdmin(c *gin.Context) {
	var req setAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	if err := h.deps.AdminSvc.SetUserAdmin(c.Request.Context(), clientID(c), c.Param("userId"), *req.IsAdmin); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) adminRechargeCodes(c *gin.Context) {
	codes, err := h.deps.AdminSvc.ListRechargeCodes(c.Request.Context(), clientID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": codes, "count": len(codes)})
}

func (h *handlers) adminCreateRechargeCode(c *gin.Context) {
	var req admin.NewRechargeCode
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	code, err := h.deps.AdminSvc.CreateRechargeCode(c.Request.Context(), clientID(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, code)
}

func (h *handlers) adminDebug(c *gin.Context) {
	raw, err := h.deps.AdminSvc.DebugAdminStatus(c.Request.Context(), clientID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}
