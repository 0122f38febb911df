// Package application 用户档案与收货地址的应用服务
package application

import (
	"context"
	"errors"

	"github.com/wyfcoding/marketplace/internal/user/domain"
)

// AddAddressCommand 新增收货地址
type AddAddressCommand struct {
	UserID     uint
	FullName   string
	Address    string
	City       string
	State      string
	PostalCode string
	Country    string
	Phone      string
	SetDefault bool
}

// UserService 用户档案服务
type UserService struct {
	users     domain.UserRepository
	addresses domain.AddressRepository
}

// NewUserService 创建用户档案服务
func NewUserService(users domain.UserRepository, addresses domain.AddressRepository) *UserService {
	return &UserService{users: users, addresses: addresses}
}

// GetProfile 获取用户档案
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

// AddAddress 新增收货地址；SetDefault 为真时在同一事务内转移默认标记
func (s *UserService) AddAddress(ctx context.Context, cmd AddAddressCommand) (*domain.ShippingAddress, error) {
	address := &domain.ShippingAddress{
		UserID:     cmd.UserID,
		FullName:   cmd.FullName,
		Address:    cmd.Address,
		City:       cmd.City,
		State:      cmd.State,
		PostalCode: cmd.PostalCode,
		Country:    cmd.Country,
		Phone:      cmd.Phone,
	}
	err := s.addresses.WithTx(ctx, func(txCtx context.Context) error {
		if cmd.SetDefault {
			if err := s.addresses.ClearDefault(txCtx, cmd.UserID); err != nil {
				return err
			}
			address.Default = true
		}
		return s.addresses.Save(txCtx, address)
	})
	if err != nil {
		return nil, err
	}
	return address, nil
}

// ListAddresses 列出用户的全部收货地址，默认地址在前
func (s *UserService) ListAddresses(ctx context.Context, userID uint) ([]*domain.ShippingAddress, error) {
	return s.addresses.ListByUser(ctx, userID)
}

// DefaultAddress 获取用户的默认收货地址；无默认地址时返回 nil
func (s *UserService) DefaultAddress(ctx context.Context, userID uint) (*domain.ShippingAddress, error) {
	address, err := s.addresses.GetDefault(ctx, userID)
	if errors.Is(err, domain.ErrAddressNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return address, nil
}

// SetDefaultAddress 将指定地址设为默认。清旧标记和设新标记在同一事务内完成，
// 保证任一时刻至多一条默认地址。
func (s *UserService) SetDefaultAddress(ctx context.Context, userID, addressID uint) error {
	return s.addresses.WithTx(ctx, func(txCtx context.Context) error {
		address, err := s.addresses.Get(txCtx, userID, addressID)
		if err != nil {
			return err
		}
		if err := s.addresses.ClearDefault(txCtx, userID); err != nil {
			return err
		}
		address.Default = true
		return s.addresses.Save(txCtx, address)
	})
}
