// Package domain 包含用户与收货地址的领域模型
package domain

import (
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrUserNotFound 用户不存在
	ErrUserNotFound = errors.New("user not found")
	// ErrAddressNotFound 收货地址不存在或不属于该用户
	ErrAddressNotFound = errors.New("shipping address not found")
)

// UserType 用户类型，决定定价类别
type UserType string

const (
	UserTypeNormal   UserType = "normal"
	UserTypeBusiness UserType = "business"
)

// User 用户实体。认证由外部系统完成，这里只保存定价和收货所需的档案。
type User struct {
	gorm.Model
	Email    string   `gorm:"column:email;type:varchar(255);uniqueIndex;not null"`
	Username string   `gorm:"column:username;type:varchar(100);not null"`
	UserType UserType `gorm:"column:user_type;type:varchar(10);not null;default:normal"`
	Phone    string   `gorm:"column:phone;type:varchar(20)"`
}

func (User) TableName() string { return "users" }

// ShippingAddress 收货地址，每个用户至多一条默认地址
type ShippingAddress struct {
	gorm.Model
	UserID     uint   `gorm:"column:user_id;index;not null"`
	FullName   string `gorm:"column:full_name;type:varchar(100);not null"`
	Address    string `gorm:"column:address;type:text;not null"`
	City       string `gorm:"column:city;type:varchar(100);not null"`
	State      string `gorm:"column:state;type:varchar(100);not null"`
	PostalCode string `gorm:"column:postal_code;type:varchar(20);not null"`
	Country    string `gorm:"column:country;type:varchar(100);not null"`
	Phone      string `gorm:"column:phone;type:varchar(20);not null"`
	Default    bool   `gorm:"column:default_address;not null;default:false"`
}

func (ShippingAddress) TableName() string { return "shipping_addresses" }
