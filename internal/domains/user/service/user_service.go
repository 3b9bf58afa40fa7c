package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"warehouse-pick-coordinator/internal/domains/user"
	"warehouse-pick-coordinator/internal/shared/apperr"
	"warehouse-pick-coordinator/pkg/jwt"
)

const bcryptCost = 12

// userService implements user.Service.
type userService struct {
	repo       user.Repository
	jwtManager *jwt.Manager
}

func NewUserService(repo user.Repository, jwtManager *jwt.Manager) user.Service {
	return &userService{repo: repo, jwtManager: jwtManager}
}

func (s *userService) Login(ctx context.Context, req user.LoginRequest) (*user.LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, apperr.Validation(err.Error())
	}

	u, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		// Don't reveal whether the username exists.
		return nil, apperr.Unauthorized(user.ErrInvalidCredentials.Error())
	}

	if !u.IsActive {
		return nil, apperr.Forbidden(user.ErrUserInactive.Error())
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		log.Warn().Str("username", req.Username).Msg("failed login attempt")
		return nil, apperr.Unauthorized(user.ErrInvalidCredentials.Error())
	}

	return s.issueTokens(u)
}

func (s *userService) RefreshToken(ctx context.Context, refreshToken string) (*user.LoginResponse, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperr.Unauthorized("invalid or expired refresh token")
	}

	userID, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		return nil, apperr.Unauthorized("invalid user id in token")
	}

	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperr.Unauthorized("user no longer exists")
	}
	if !u.IsActive {
		return nil, apperr.Forbidden(user.ErrUserInactive.Error())
	}

	return s.issueTokens(u)
}

func (s *userService) issueTokens(u *user.User) (*user.LoginResponse, error) {
	userIDStr := strconv.FormatInt(u.ID, 10)

	accessToken, err := s.jwtManager.GenerateAccessToken(userIDStr, u.Username, u.Role.String())
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("generate access token: %w", err))
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(userIDStr)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("generate refresh token: %w", err))
	}

	return &user.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(time.Hour),
		User:         user.ToDTO(u),
	}, nil
}

func (s *userService) ChangePassword(ctx context.Context, userID int64, req user.ChangePasswordRequest) error {
	if err := req.Validate(); err != nil {
		return apperr.Validation(err.Error())
	}

	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return apperr.NotFound(user.ErrUserNotFound.Error())
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return apperr.Unauthorized(user.ErrInvalidCredentials.Error())
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.NewPassword)); err == nil {
		return apperr.Validation(user.ErrSamePassword.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
	if err != nil {
		return apperr.Internal(fmt.Errorf("hash password: %w", err))
	}

	if err := s.repo.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return apperr.Internal(fmt.Errorf("update password: %w", err))
	}
	return nil
}

func (s *userService) GetProfile(ctx context.Context, userID int64) (*user.UserDTO, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperr.NotFound(user.ErrUserNotFound.Error())
	}
	dto := user.ToDTO(u)
	return &dto, nil
}

func (s *userService) CreateUser(ctx context.Context, req user.CreateUserRequest) (*user.UserDTO, error) {
	if err := req.Validate(); err != nil {
		return nil, apperr.Validation(err.Error())
	}

	exists, err := s.repo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("check username exists: %w", err))
	}
	if exists {
		return nil, apperr.Conflict(user.ErrUsernameTaken.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("hash password: %w", err))
	}

	newUser := &user.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Role:         req.Role,
		IsActive:     true,
	}

	if err := s.repo.Create(ctx, newUser); err != nil {
		if err == user.ErrUsernameTaken {
			return nil, apperr.Conflict(err.Error())
		}
		return nil, apperr.Internal(fmt.Errorf("create user: %w", err))
	}

	dto := user.ToDTO(newUser)
	return &dto, nil
}

func (s *userService) ListUsers(ctx context.Context, req user.ListUsersRequest) (*user.ListUsersResponse, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.Limit <= 0 {
		req.Limit = 20
	}

	users, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("list users: %w", err))
	}

	dtos := make([]user.UserDTO, len(users))
	for i := range users {
		dtos[i] = user.ToDTO(&users[i])
	}

	return &user.ListUsersResponse{
		Users: dtos,
		Total: total,
		Page:  req.Page,
		Limit: req.Limit,
	}, nil
}

// UpdateUserRole enforces that only a superadmin may grant the superadmin
// role; admins may only manage roles up to admin.
func (s *userService) UpdateUserRole(ctx context.Context, actor *user.User, targetID int64, req user.UpdateRoleRequest) error {
	if !req.Role.IsValid() {
		return apperr.Validation(user.ErrInvalidRole.Error())
	}
	if req.Role == user.RoleSuperadmin && !actor.Role.IsSuperadmin() {
		return apperr.Forbidden("only a superadmin can grant the superadmin role")
	}

	if _, err := s.repo.FindByID(ctx, targetID); err != nil {
		return apperr.NotFound(user.ErrUserNotFound.Error())
	}

	if err := s.repo.UpdateRole(ctx, targetID, req.Role); err != nil {
		return apperr.Internal(fmt.Errorf("update role: %w", err))
	}
	return nil
}

func (s *userService) UpdateUserStatus(ctx context.Context, targetID int64, req user.UpdateStatusRequest) error {
	if _, err := s.repo.FindByID(ctx, targetID); err != nil {
		return apperr.NotFound(user.ErrUserNotFound.Error())
	}

	if err := s.repo.UpdateStatus(ctx, targetID, req.IsActive); err != nil {
		return apperr.Internal(fmt.Errorf("update status: %w", err))
	}
	return nil
}

func (s *userService) ResetUserPassword(ctx context.Context, targetID int64, req user.ResetPasswordByAdminRequest) error {
	if err := req.Validate(); err != nil {
		return apperr.Validation(err.Error())
	}

	if _, err := s.repo.FindByID(ctx, targetID); err != nil {
		return apperr.NotFound(user.ErrUserNotFound.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
	if err != nil {
		return apperr.Internal(fmt.Errorf("hash password: %w", err))
	}

	if err := s.repo.UpdatePassword(ctx, targetID, string(hash)); err != nil {
		return apperr.Internal(fmt.Errorf("update password: %w", err))
	}
	return nil
}
