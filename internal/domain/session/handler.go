package session

import (
	"net/http"
	"time"

	"travelbooking/internal/domain"
	"travelbooking/internal/pkg/apperr"
	"travelbooking/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      domain.User `json:"user"`
}

type Handler struct {
	manager *Manager
	errs    *apperr.Mapper
}

func NewHandler(manager *Manager) *Handler {
	return &Handler{
		manager: manager,
		errs:    apperr.NewMapper("Sign in failed. Please try again."),
	}
}

// RegisterRoutes wires login/logout; auth guards the routes that need a live session.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, auth gin.HandlerFunc) {
	rg.POST("/sessions", h.Login)
	rg.GET("/sessions/me", auth, h.Me)
	rg.DELETE("/sessions", auth, h.Logout)
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Email and password are required")
		return
	}

	sess, token, err := h.manager.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.errs.Respond(c, err)
		return
	}

	response.Success(c, http.StatusCreated, LoginResponse{
		Token:     token,
		ExpiresAt: sess.ExpiresAt,
		User:      sess.User,
	})
}

func (h *Handler) Me(c *gin.Context) {
	sess := FromGin(c)
	if sess == nil {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": sess.User, "expiresAt": sess.ExpiresAt})
}

func (h *Handler) Logout(c *gin.Context) {
	sess := FromGin(c)
	if sess == nil {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}
	if err := h.manager.Logout(c.Request.Context(), sess.ID); err != nil {
		h.errs.Respond(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Signed out"})
}
