package user

import "context"

// Service is the business-logic contract for authentication and operator
// account management (spec C7 / RBAC table).
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*LoginResponse, error)
	ChangePassword(ctx context.Context, userID int64, req ChangePasswordRequest) error
	GetProfile(ctx context.Context, userID int64) (*UserDTO, error)

	// Admin (and superadmin) user management.
	CreateUser(ctx context.Context, req CreateUserRequest) (*UserDTO, error)
	ListUsers(ctx context.Context, req ListUsersRequest) (*ListUsersResponse, error)
	UpdateUserRole(ctx context.Context, actor *User, targetID int64, req UpdateRoleRequest) error
	UpdateUserStatus(ctx context.Context, targetID int64, req UpdateStatusRequest) error
	ResetUserPassword(ctx context.Context, targetID int64, req ResetPasswordByAdminRequest) error
}
