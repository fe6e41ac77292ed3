package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bigjbird1/vowswap/internal/model"
	"github.com/bigjbird1/vowswap/internal/service"
	"github.com/bigjbird1/vowswap/internal/validation"
)

type couponRequest struct {
	Code        string           `json:"code" validate:"required,max=50"`
	UserID      *string          `json:"userId" validate:"omitempty,uuid"`
	OrderID     string           `json:"orderId" validate:"max=255"`
	TotalAmount *decimal.Decimal `json:"totalAmount" validate:"required"`
}

func (h *Handler) decodeCouponRequest(w http.ResponseWriter, r *http.Request) (service.CouponInput, bool) {
	var req couponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, http.StatusText(http.StatusBadRequest))
		return service.CouponInput{}, false
	}
	if err := validation.Struct(req); err != nil {
		badRequest(w, err.Error())
		return service.CouponInput{}, false
	}

	in := service.CouponInput{
		Code:        req.Code,
		OrderID:     req.OrderID,
		TotalAmount: *req.TotalAmount,
	}
	if req.UserID != nil {
		in.UserID = uuid.MustParse(*req.UserID)
	}
	return in, true
}

// ValidateCoupon проверяет купон; если указан orderId, купон сразу погашается.
func (h *Handler) ValidateCoupon(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeCouponRequest(w, r)
	if !ok {
		return
	}

	elig, err := h.service.ValidateAndRedeem(r.Context(), identity(r), in)
	if err != nil {
		h.writeError(w, r, "validate coupon", err)
		return
	}

	writeJSON(w, http.StatusOK, newCouponResponse(elig))
}

// RedeemCoupon погашает купон в рамках заказа.
func (h *Handler) RedeemCoupon(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeCouponRequest(w, r)
	if !ok {
		return
	}

	elig, err := h.service.RedeemCoupon(r.Context(), identity(r), in)
	if err != nil {
		h.writeError(w, r, "redeem coupon", err)
		return
	}

	writeJSON(w, http.StatusOK, newCouponResponse(elig))
}

type couponSpecRequest struct {
	Code            string           `json:"code" validate:"required,max=50"`
	DiscountType    string           `json:"discountType" validate:"required,discounttype"`
	DiscountValue   *decimal.Decimal `json:"discountValue" validate:"required"`
	MinimumPurchase *decimal.Decimal `json:"minimumPurchase"`
	MaxUses         *int             `json:"maxUses" validate:"omitempty,min=0"`
	PerUserLimit    *int             `json:"perUserLimit" validate:"omitempty,min=0"`
}

type createPromotionRequest struct {
	Name      string              `json:"name" validate:"required,max=255"`
	StartDate time.Time           `json:"startDate" validate:"required"`
	EndDate   time.Time           `json:"endDate" validate:"required"`
	IsActive  *bool               `json:"isActive"`
	Coupons   []couponSpecRequest `json:"coupons" validate:"required,min=1,dive"`
}

// CreatePromotion создаёт акцию вместе с её купонами.
func (h *Handler) CreatePromotion(w http.ResponseWriter, r *http.Request) {
	var req createPromotionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, http.StatusText(http.StatusBadRequest))
		return
	}
	if err := validation.Struct(req); err != nil {
		badRequest(w, err.Error())
		return
	}

	in := service.CreatePromotionInput{
		Name:      req.Name,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		IsActive:  req.IsActive == nil || *req.IsActive,
		Coupons:   make([]service.CouponSpec, 0, len(req.Coupons)),
	}
	for _, c := range req.Coupons {
		in.Coupons = append(in.Coupons, service.CouponSpec{
			Code:            c.Code,
			DiscountType:    model.DiscountType(c.DiscountType),
			DiscountValue:   *c.DiscountValue,
			MinimumPurchase: c.MinimumPurchase,
			MaxUses:         c.MaxUses,
			PerUserLimit:    c.PerUserLimit,
		})
	}

	p, err := h.service.CreatePromotion(r.Context(), identity(r), in)
	if err != nil {
		h.writeError(w, r, "create promotion", err)
		return
	}

	writeJSON(w, http.StatusCreated, newPromotionResponse(*p))
}

// GetPromotion возвращает акцию с купонами и счётчиками использований.
func (h *Handler) GetPromotion(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid promotion id")
		return
	}

	p, err := h.service.GetPromotion(r.Context(), identity(r), id)
	if err != nil {
		h.writeError(w, r, "get promotion", err)
		return
	}

	writeJSON(w, http.StatusOK, newPromotionResponse(*p))
}
