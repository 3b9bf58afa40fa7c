package user

import "context"

// Repository is the data-access contract for operator accounts.
type Repository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id int64) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	Update(ctx context.Context, u *User) error
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
	UpdateRole(ctx context.Context, userID int64, role Role) error
	UpdateStatus(ctx context.Context, userID int64, isActive bool) error
	List(ctx context.Context, req ListUsersRequest) ([]User, int, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}
