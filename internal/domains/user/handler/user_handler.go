package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"warehouse-pick-coordinator/internal/domains/user"
	"warehouse-pick-coordinator/internal/shared/apperr"
	"warehouse-pick-coordinator/internal/shared/middleware"
	"warehouse-pick-coordinator/internal/shared/response"
	"warehouse-pick-coordinator/internal/shared/utils"
)

// UserHandler serves the authentication and operator-account HTTP surface.
type UserHandler struct {
	service user.Service
}

func NewUserHandler(service user.Service) *UserHandler {
	return &UserHandler{service: service}
}

// Login handles POST /auth/login.
func (h *UserHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return
	}

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.SetCookie("refresh_token", res.RefreshToken, 7*24*3600, "/", "", true, true)
	res.RefreshToken = ""

	response.Success(c, http.StatusOK, res)
}

// RefreshToken handles POST /auth/refresh, reading the refresh token from
// its HttpOnly cookie rather than the request body.
func (h *UserHandler) RefreshToken(c *gin.Context) {
	refreshToken, err := c.Cookie("refresh_token")
	if err != nil {
		response.Unauthorized(c, "missing refresh token")
		return
	}

	res, err := h.service.RefreshToken(c.Request.Context(), refreshToken)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.SetCookie("refresh_token", res.RefreshToken, 7*24*3600, "/", "", true, true)
	res.RefreshToken = ""

	response.Success(c, http.StatusOK, res)
}

// Logout clears the refresh token cookie; token invalidation server-side is
// unnecessary since access tokens are short-lived and stateless.
func (h *UserHandler) Logout(c *gin.Context) {
	c.SetCookie("refresh_token", "", -1, "/", "", true, true)
	response.Success(c, http.StatusOK, gin.H{"message": "logged out"})
}

// GetProfile handles GET /auth/me.
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, profile)
}

// ChangePassword handles POST /auth/change-password.
func (h *UserHandler) ChangePassword(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req user.ChangePasswordRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), userID, req); err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "password changed"})
}

// ========================================
// Admin endpoints (mounted behind RequireRole(admin, superadmin))
// ========================================

func (h *UserHandler) CreateUser(c *gin.Context) {
	var req user.CreateUserRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return
	}

	dto, err := h.service.CreateUser(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, dto)
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	req := user.ListUsersRequest{
		Page:  utils.QueryInt(c, "page", 1),
		Limit: utils.QueryInt(c, "limit", 20),
		Role:  user.Role(c.Query("role")),
	}
	if v := c.Query("is_active"); v != "" {
		active := v == "true"
		req.IsActive = &active
	}

	result, err := h.service.ListUsers(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

func (h *UserHandler) UpdateUserRole(c *gin.Context) {
	targetID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	actorID, ok := middleware.UserIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}
	actorRole, _ := middleware.RoleFromContext(c)
	actor := &user.User{ID: actorID, Role: user.Role(actorRole)}

	var req user.UpdateRoleRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return
	}

	if err := h.service.UpdateUserRole(c.Request.Context(), actor, targetID, req); err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "role updated"})
}

func (h *UserHandler) UpdateUserStatus(c *gin.Context) {
	targetID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	var req user.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	if err := h.service.UpdateUserStatus(c.Request.Context(), targetID, req); err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "status updated"})
}

func (h *UserHandler) ResetUserPassword(c *gin.Context) {
	targetID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	var req user.ResetPasswordByAdminRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return
	}

	if err := h.service.ResetUserPassword(c.Request.Context(), targetID, req); err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "password reset"})
}

// ========================================
// Helpers
// ========================================

func (h *UserHandler) bindAndValidate(c *gin.Context, req interface{ Validate() error }) error {
	if err := c.ShouldBindJSON(req); err != nil {
		response.BadRequest(c, "invalid request body")
		return err
	}
	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION", "validation failed", err.Error())
		return err
	}
	return nil
}

func (h *UserHandler) handleError(c *gin.Context, err error) {
	if ae, ok := apperr.As(err); ok {
		response.ErrorResponse(c, ae.HTTPStatus(), string(ae.Code), ae.Message)
		return
	}
	response.InternalServerError(c, "internal server error")
}
