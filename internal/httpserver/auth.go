package httpserver

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

type handlers struct {
	deps   Deps
	logger *log.Logger
}

// fail writes err and logs the ones that are not the caller's fault.
func (h *handlers) fail(c *gin.Context, err error) {
	if statusFor(err) >= http.StatusInternalServerError {
		h.logger.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	writeError(c, err)
}

type signInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type signUpRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"fullName"`
}

type recoverRequest struct {
	Email string `json:"email" binding:"required"`
}

func (h *handlers) signIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	user, err := h.deps.SessionSvc.SignIn(c.Request.Context(), clientID(c), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *handlers) signUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	out, err := h.deps.SessionSvc.SignUp(c.Request.Context(), clientID(c), req.Email, req.Password, req.FullName)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h *handlers) signOut(c *gin.Context) {
	if err := h.deps.SessionSvc.SignOut(c.Request.Context(), clientID(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) recoverPassword(c *gin.Context) {
	var req recoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	if err := h.deps.SessionSvc.RecoverPassword(c.Request.Context(), req.Email); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

// me returns the signed-in user and, when readable, the profile row.
func (h *handlers) me(c *gin.Context) {
	ctx := c.Request.Context()
	user, err := h.deps.SessionSvc.CurrentUser(ctx, clientID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	resp := gin.H{"user": user}
	if profile, err := h.deps.SessionSvc.Profile(ctx, clientID(c)); err == nil {
		resp["profile"] = profile
	} else {
		h.logger.Printf("load profile for %s: %v", user.ID, err)
	}
	c.JSON(http.StatusOK, resp)
}
