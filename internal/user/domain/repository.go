package domain

import "context"

// UserRepository 用户仓储接口
type UserRepository interface {
	Save(ctx context.Context, user *User) error
	// GetByID 按 ID 获取用户；不存在时返回 ErrUserNotFound
	GetByID(ctx context.Context, id uint) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// AddressRepository 收货地址仓储接口
type AddressRepository interface {
	Save(ctx context.Context, address *ShippingAddress) error
	// Get 获取属于该用户的地址；不存在时返回 ErrAddressNotFound
	Get(ctx context.Context, userID, addressID uint) (*ShippingAddress, error)
	ListByUser(ctx context.Context, userID uint) ([]*ShippingAddress, error)
	// GetDefault 获取用户的默认地址；无默认地址时返回 ErrAddressNotFound
	GetDefault(ctx context.Context, userID uint) (*ShippingAddress, error)
	// ClearDefault 清除该用户所有地址的默认标记
	ClearDefault(ctx context.Context, userID uint) error
	// WithTx 在单个事务内执行 fn，事务句柄通过 context 传递
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}
