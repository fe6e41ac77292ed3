package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/leandro-lugaresi/hub"
	"github.com/shopspring/decimal"

	"github.com/bigjbird1/vowswap/internal/event"
	"github.com/bigjbird1/vowswap/internal/metrics"
	"github.com/bigjbird1/vowswap/internal/model"
	"github.com/bigjbird1/vowswap/internal/rbac"
	"github.com/bigjbird1/vowswap/internal/repository"
)

// Сообщения результата проверки купона, возвращаемые клиенту.
const (
	// MsgInvalidCode купон с таким кодом не найден.
	MsgInvalidCode = "Invalid coupon code"
	// MsgExpired акция выключена или текущее время вне её периода.
	MsgExpired = "Coupon has expired or is not active"
	// MsgMaxUses исчерпан общий лимит использований купона.
	MsgMaxUses = "Coupon has reached its maximum usage limit"
	// MsgPerUserLimit исчерпан лимит использований купона для пользователя.
	MsgPerUserLimit = "You have reached the usage limit for this coupon"
	// MsgApplied купон применим.
	MsgApplied = "Coupon applied successfully"

	msgMinimumFormat = "Minimum purchase amount of $%s required"
)

var hundred = decimal.NewFromInt(100)

// CouponInput содержит параметры проверки или погашения купона.
type CouponInput struct {
	Code string
	// Пользователь, для которого проверяется купон. uuid.Nil означает вызывающего.
	UserID      uuid.UUID
	OrderID     string
	TotalAmount decimal.Decimal
}

// evaluateCoupon последовательно применяет проверки пригодности; первая неуспешная
// определяет сообщение. coupon равен nil, если купон не найден.
func evaluateCoupon(c *model.Coupon, userRedemptions int, total decimal.Decimal, now time.Time) model.Eligibility {
	if c == nil {
		return model.Eligibility{Message: MsgInvalidCode}
	}
	if !c.Promotion.ActiveAt(now) {
		return model.Eligibility{Message: MsgExpired}
	}
	if c.MinimumPurchase != nil && total.LessThan(*c.MinimumPurchase) {
		return model.Eligibility{Message: fmt.Sprintf(msgMinimumFormat, c.MinimumPurchase.StringFixed(2))}
	}
	if c.MaxUses != nil && c.UsedCount >= *c.MaxUses {
		return model.Eligibility{Message: MsgMaxUses}
	}
	if c.PerUserLimit != nil && userRedemptions >= *c.PerUserLimit {
		return model.Eligibility{Message: MsgPerUserLimit}
	}

	discount := computeDiscount(c.DiscountType, c.DiscountValue, total)
	return model.Eligibility{
		Valid:        true,
		Discount:     &discount,
		DiscountType: c.DiscountType,
		Message:      MsgApplied,
	}
}

func computeDiscount(t model.DiscountType, value, total decimal.Decimal) decimal.Decimal {
	if t == model.DiscountPercentage {
		return total.Mul(value).Div(hundred)
	}
	return value
}

func (s *Service) couponUser(who model.Identity, in CouponInput) (uuid.UUID, error) {
	if !who.Authenticated() {
		return uuid.Nil, ErrUnauthenticated
	}
	if in.UserID == uuid.Nil || in.UserID == who.UserID {
		return who.UserID, nil
	}
	if !rbac.Can(who.Role, rbac.RedeemForOthers) {
		return uuid.Nil, ErrForbidden
	}
	return in.UserID, nil
}

func validateCouponInput(in CouponInput) (string, error) {
	code := strings.TrimSpace(in.Code)
	if code == "" {
		return "", validationErr("code is required")
	}
	if in.TotalAmount.IsNegative() {
		return "", validationErr("totalAmount must not be negative")
	}
	return code, nil
}

// ValidateCoupon проверяет пригодность купона и рассчитывает скидку, ничего не записывая.
func (s *Service) ValidateCoupon(ctx context.Context, who model.Identity, in CouponInput) (model.Eligibility, error) {
	userID, err := s.couponUser(who, in)
	if err != nil {
		return model.Eligibility{}, err
	}
	code, err := validateCouponInput(in)
	if err != nil {
		return model.Eligibility{}, err
	}

	c, err := s.repo.GetCouponByCode(ctx, code)
	if err != nil && !errors.Is(err, repository.ErrCouponNotFound) {
		return model.Eligibility{}, err
	}

	var used int
	if c != nil && c.PerUserLimit != nil {
		used, err = s.repo.CountUserRedemptions(ctx, c.ID, userID)
		if err != nil {
			return model.Eligibility{}, err
		}
	}

	elig := evaluateCoupon(c, used, in.TotalAmount, s.now())
	metrics.CouponChecks.WithLabelValues("validate", resultLabel(elig)).Inc()
	return elig, nil
}

// RedeemCoupon погашает купон в рамках заказа: проверки повторяются под блокировкой строки купона,
// запись о погашении и увеличение счётчика фиксируются атомарно.
func (s *Service) RedeemCoupon(ctx context.Context, who model.Identity, in CouponInput) (model.Eligibility, error) {
	userID, err := s.couponUser(who, in)
	if err != nil {
		return model.Eligibility{}, err
	}
	code, err := validateCouponInput(in)
	if err != nil {
		return model.Eligibility{}, err
	}
	orderID := strings.TrimSpace(in.OrderID)
	if orderID == "" {
		return model.Eligibility{}, validationErr("orderId is required")
	}

	now := s.now()
	elig, usage, err := s.repo.RedeemCoupon(ctx, repository.RedeemParams{
		UsageID: uuid.New(),
		Code:    code,
		UserID:  userID,
		OrderID: orderID,
	}, func(c *model.Coupon, used int) model.Eligibility {
		return evaluateCoupon(c, used, in.TotalAmount, now)
	})
	if err != nil {
		if errors.Is(err, repository.ErrUsageLimitReached) {
			elig = model.Eligibility{Message: MsgMaxUses}
			metrics.CouponChecks.WithLabelValues("redeem", resultLabel(elig)).Inc()
			return elig, nil
		}
		return model.Eligibility{}, err
	}

	metrics.CouponChecks.WithLabelValues("redeem", resultLabel(elig)).Inc()
	if usage != nil {
		metrics.CouponRedemptions.Inc()
		s.publish(event.CouponRedeemed, hub.Fields{
			"coupon_code": code,
			"user_id":     userID,
			"order_id":    orderID,
			"discount":    *elig.Discount,
		})
	}

	return elig, nil
}

// ValidateAndRedeem погашает купон, если указан заказ, и иначе только проверяет его.
func (s *Service) ValidateAndRedeem(ctx context.Context, who model.Identity, in CouponInput) (model.Eligibility, error) {
	if strings.TrimSpace(in.OrderID) == "" {
		return s.ValidateCoupon(ctx, who, in)
	}
	return s.RedeemCoupon(ctx, who, in)
}

func resultLabel(e model.Eligibility) string {
	if e.Valid {
		return "valid"
	}
	return "invalid"
}

// CouponSpec описывает купон, создаваемый вместе с акцией.
type CouponSpec struct {
	Code            string
	DiscountType    model.DiscountType
	DiscountValue   decimal.Decimal
	MinimumPurchase *decimal.Decimal
	MaxUses         *int
	PerUserLimit    *int
}

// CreatePromotionInput содержит данные новой акции.
type CreatePromotionInput struct {
	Name      string
	StartDate time.Time
	EndDate   time.Time
	IsActive  bool
	Coupons   []CouponSpec
}

// CreatePromotion создаёт акцию с купонами. Акция продавца привязывается к нему.
func (s *Service) CreatePromotion(ctx context.Context, who model.Identity, in CreatePromotionInput) (*model.Promotion, error) {
	if err := authorize(who, rbac.ManagePromotions); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		return nil, validationErr("name is required")
	case in.EndDate.Before(in.StartDate):
		return nil, validationErr("endDate is before startDate")
	case len(in.Coupons) == 0:
		return nil, validationErr("at least one coupon is required")
	}

	p := &model.Promotion{
		ID:        uuid.New(),
		Name:      name,
		IsActive:  in.IsActive,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		Coupons:   make([]model.Coupon, 0, len(in.Coupons)),
	}
	if who.Role == model.RoleSeller {
		sellerID := who.UserID
		p.SellerID = &sellerID
	}

	seen := make(map[string]struct{}, len(in.Coupons))
	for _, spec := range in.Coupons {
		c, err := newCoupon(p.ID, spec)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[c.Code]; dup {
			return nil, validationErr("duplicate coupon code %q", c.Code)
		}
		seen[c.Code] = struct{}{}
		p.Coupons = append(p.Coupons, c)
	}

	if err := s.repo.CreatePromotion(ctx, p); err != nil {
		return nil, err
	}

	for i := range p.Coupons {
		p.Coupons[i].Promotion = model.Promotion{}
	}
	return p, nil
}

func newCoupon(promotionID uuid.UUID, spec CouponSpec) (model.Coupon, error) {
	code := strings.TrimSpace(spec.Code)
	switch {
	case code == "":
		return model.Coupon{}, validationErr("coupon code is required")
	case !spec.DiscountType.Valid():
		return model.Coupon{}, validationErr("unknown discount type %q", spec.DiscountType)
	case !spec.DiscountValue.IsPositive():
		return model.Coupon{}, validationErr("discountValue must be positive")
	case spec.DiscountType == model.DiscountPercentage && spec.DiscountValue.GreaterThan(hundred):
		return model.Coupon{}, validationErr("percentage discount must not exceed 100")
	case spec.MinimumPurchase != nil && spec.MinimumPurchase.IsNegative():
		return model.Coupon{}, validationErr("minimumPurchase must not be negative")
	case spec.MaxUses != nil && *spec.MaxUses < 0:
		return model.Coupon{}, validationErr("maxUses must not be negative")
	case spec.PerUserLimit != nil && *spec.PerUserLimit < 0:
		return model.Coupon{}, validationErr("perUserLimit must not be negative")
	}

	return model.Coupon{
		ID:              uuid.New(),
		PromotionID:     promotionID,
		Code:            code,
		DiscountType:    spec.DiscountType,
		DiscountValue:   spec.DiscountValue,
		MinimumPurchase: spec.MinimumPurchase,
		MaxUses:         spec.MaxUses,
		PerUserLimit:    spec.PerUserLimit,
	}, nil
}

// GetPromotion возвращает акцию с купонами. Продавец видит только свои акции.
func (s *Service) GetPromotion(ctx context.Context, who model.Identity, id uuid.UUID) (*model.Promotion, error) {
	if err := authorize(who, rbac.ManagePromotions); err != nil {
		return nil, err
	}

	p, err := s.repo.GetPromotion(ctx, id)
	if err != nil {
		return nil, err
	}

	if who.Role == model.RoleSeller && (p.SellerID == nil || *p.SellerID != who.UserID) {
		return nil, ErrForbidden
	}
	return p, nil
}
