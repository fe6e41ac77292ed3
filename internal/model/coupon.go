package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountType описывает способ расчёта скидки по купону.
type DiscountType string

const (
	// DiscountPercentage скидка в процентах от суммы заказа.
	DiscountPercentage DiscountType = "PERCENTAGE"
	// DiscountFixedAmount скидка фиксированной суммой.
	DiscountFixedAmount DiscountType = "FIXED_AMOUNT"
)

// Valid сообщает, является ли тип скидки известным.
func (t DiscountType) Valid() bool {
	return t == DiscountPercentage || t == DiscountFixedAmount
}

// Promotion описывает акцию, к которой привязаны купоны.
type Promotion struct {
	ID        uuid.UUID
	Name      string
	SellerID  *uuid.UUID
	IsActive  bool
	StartDate time.Time
	EndDate   time.Time
	CreatedAt time.Time
	Coupons   []Coupon
}

// ActiveAt сообщает, действует ли акция в момент now (границы включительно).
func (p Promotion) ActiveAt(now time.Time) bool {
	return p.IsActive && !now.Before(p.StartDate) && !now.After(p.EndDate)
}

// Coupon описывает промокод акции.
type Coupon struct {
	ID              uuid.UUID
	PromotionID     uuid.UUID
	Code            string
	DiscountType    DiscountType
	DiscountValue   decimal.Decimal
	MinimumPurchase *decimal.Decimal
	MaxUses         *int
	UsedCount       int
	PerUserLimit    *int
	Promotion       Promotion
}

// UsedCoupon фиксирует одно погашение купона.
type UsedCoupon struct {
	ID       uuid.UUID
	CouponID uuid.UUID
	UserID   uuid.UUID
	OrderID  *string
	UsedAt   time.Time
}

// Eligibility — результат проверки купона. Непригодный купон описывается
// этим результатом, а не ошибкой.
type Eligibility struct {
	Valid        bool
	Discount     *decimal.Decimal
	DiscountType DiscountType
	Message      string
}
