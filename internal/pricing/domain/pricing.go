// Package domain 实现按请求者类别分层的定价策略。
// 策略是纯函数：购物车展示、结算报价与订单落库必须用同一请求者上下文调用，
// 报价时锁定的价格随快照传递，落库时原样使用。
package domain

import "github.com/shopspring/decimal"

// Category 请求者类别
type Category string

const (
	// CategoryGuest 未认证访客
	CategoryGuest Category = "guest"
	// CategoryNormal 普通认证用户
	CategoryNormal Category = "normal"
	// CategoryBusiness 企业认证用户
	CategoryBusiness Category = "business"
)

var (
	guestMarkup      = decimal.NewFromFloat(1.10)
	businessDiscount = decimal.NewFromFloat(0.75)
)

// CategoryOf 由认证状态与用户类型推导请求者类别。
// 已认证的非企业用户一律按普通用户计价。
func CategoryOf(authenticated bool, userType string) Category {
	if !authenticated {
		return CategoryGuest
	}
	if userType == string(CategoryBusiness) {
		return CategoryBusiness
	}
	return CategoryNormal
}

// Quote 按类别换算基础价格，保留两位小数。
//   - business: ×0.75
//   - normal:   ×1.00
//   - guest:    ×1.10
func Quote(base decimal.Decimal, category Category) decimal.Decimal {
	switch category {
	case CategoryBusiness:
		return base.Mul(businessDiscount).Round(2)
	case CategoryGuest:
		return base.Mul(guestMarkup).Round(2)
	default:
		return base.Round(2)
	}
}

// MinorUnits 将金额换算为最小货币单位（分），用于支付网关报文
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// FromMinorUnits 将最小货币单位金额还原为十进制金额
func FromMinorUnits(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100))
}
