package user

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// LoginRequest - operator sign-in.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(3, 64)),
		validation.Field(&r.Password, validation.Required),
	)
}

// LoginResponse carries both tokens back; the handler moves RefreshToken
// into an HttpOnly cookie before this ever reaches the wire.
type LoginResponse struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         UserDTO `json:"user"`
}

// UserDTO is the wire-safe projection of User.
type UserDTO struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	Role      Role      `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func ToDTO(u *User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// ChangePasswordRequest - self-service password change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

func (r ChangePasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CurrentPassword, validation.Required),
		validation.Field(&r.NewPassword, validation.Required, validation.Length(8, 128)),
	)
}

// CreateUserRequest - admin-issued account creation.
type CreateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"full_name" binding:"required"`
	Role     Role   `json:"role" binding:"required"`
}

func (r CreateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(3, 64)),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 128)),
		validation.Field(&r.FullName, validation.Required, validation.Length(2, 100)),
		validation.Field(&r.Role, validation.Required, validation.By(validRoleRule)),
	)
}

func validRoleRule(value interface{}) error {
	role, _ := value.(Role)
	if !role.IsValid() {
		return ErrInvalidRole
	}
	return nil
}

// UpdateRoleRequest - admin role change.
type UpdateRoleRequest struct {
	Role Role `json:"role" binding:"required"`
}

func (r UpdateRoleRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Role, validation.Required, validation.By(validRoleRule)),
	)
}

// UpdateStatusRequest - admin activate/deactivate.
type UpdateStatusRequest struct {
	IsActive bool `json:"is_active"`
}

// ResetPasswordByAdminRequest - admin resetting someone else's password.
type ResetPasswordByAdminRequest struct {
	NewPassword string `json:"new_password" binding:"required"`
}

func (r ResetPasswordByAdminRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.NewPassword, validation.Required, validation.Length(8, 128)),
	)
}

// ListUsersRequest - admin listing with pagination.
type ListUsersRequest struct {
	Page     int
	Limit    int
	Role     Role
	IsActive *bool
}

type ListUsersResponse struct {
	Users []UserDTO `json:"users"`
	Total int       `json:"total"`
	Page  int       `json:"page"`
	Limit int       `json:"limit"`
}
