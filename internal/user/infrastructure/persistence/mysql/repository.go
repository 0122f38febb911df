package mysql

import (
	"context"
	"errors"

	"github.com/wyfcoding/marketplace/internal/user/domain"
	"github.com/wyfcoding/marketplace/pkg/contextx"
	"gorm.io/gorm"
)

type userRepository struct{ db *gorm.DB }

// NewUserRepository 创建用户仓储
func NewUserRepository(db *gorm.DB) domain.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextx.GetTx(ctx).(*gorm.DB); ok {
		return tx
	}
	return r.db
}

func (r *userRepository) Save(ctx context.Context, user *domain.User) error {
	return r.getDB(ctx).WithContext(ctx).Save(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	err := r.getDB(ctx).WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.getDB(ctx).WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

type addressRepository struct{ db *gorm.DB }

// NewAddressRepository 创建收货地址仓储
func NewAddressRepository(db *gorm.DB) domain.AddressRepository {
	return &addressRepository{db: db}
}

func (r *addressRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextx.GetTx(ctx).(*gorm.DB); ok {
		return tx
	}
	return r.db
}

func (r *addressRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(contextx.WithTx(ctx, tx))
	})
}

func (r *addressRepository) Save(ctx context.Context, address *domain.ShippingAddress) error {
	return r.getDB(ctx).WithContext(ctx).Save(address).Error
}

func (r *addressRepository) Get(ctx context.Context, userID, addressID uint) (*domain.ShippingAddress, error) {
	var address domain.ShippingAddress
	err := r.getDB(ctx).WithContext(ctx).
		Where("id = ? AND user_id = ?", addressID, userID).
		First(&address).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrAddressNotFound
	}
	if err != nil {
		return nil, err
	}
	return &address, nil
}

func (r *addressRepository) ListByUser(ctx context.Context, userID uint) ([]*domain.ShippingAddress, error) {
	var addresses []*domain.ShippingAddress
	err := r.getDB(ctx).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("default_address DESC, id DESC").
		Find(&addresses).Error
	if err != nil {
		return nil, err
	}
	return addresses, nil
}

func (r *addressRepository) GetDefault(ctx context.Context, userID uint) (*domain.ShippingAddress, error) {
	var address domain.ShippingAddress
	err := r.getDB(ctx).WithContext(ctx).
		Where("user_id = ? AND default_address = ?", userID, true).
		First(&address).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrAddressNotFound
	}
	if err != nil {
		return nil, err
	}
	return &address, nil
}

func (r *addressRepository) ClearDefault(ctx context.Context, userID uint) error {
	return r.getDB(ctx).WithContext(ctx).
		Model(&domain.ShippingAddress{}).
		Where("user_id = ? AND default_address = ?", userID, true).
		UpdateColumn("default_address", false).Error
}
