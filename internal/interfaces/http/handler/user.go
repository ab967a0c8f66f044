package handler

import (
	"github.com/gin-gonic/gin"
	appidentity "github.com/marketplace/backend/internal/application/identity"
	"github.com/marketplace/backend/internal/interfaces/http/middleware"
)

// UserHandler handles account registration and sessions
type UserHandler struct {
	BaseHandler
	accountService *appidentity.AccountService
}

// NewUserHandler creates a new user handler
func NewUserHandler(accountService *appidentity.AccountService) *UserHandler {
	return &UserHandler{accountService: accountService}
}

// Register handles POST /user/register
func (h *UserHandler) Register(c *gin.Context) {
	var req appidentity.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.accountService.Register(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, user)
}

// Login handles POST /user/login
func (h *UserHandler) Login(c *gin.Context) {
	var req appidentity.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.accountService.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Logout handles POST /user/logout
func (h *UserHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	err := h.accountService.Logout(c.Request.Context(), appidentity.LogoutInput{
		UserID:   claims.UserID,
		TokenJTI: claims.ID,
		TokenTTL: claims.GetRemainingTTL(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Me handles GET /user/me
func (h *UserHandler) Me(c *gin.Context) {
	actor, ok := h.actorFrom(c)
	if !ok {
		return
	}

	user, err := h.accountService.GetUser(c.Request.Context(), actor.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, user)
}
