package handler

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/bigjbird1/vowswap/internal/model"
)

type moderationActionResponse struct {
	ID          uuid.UUID `json:"id"`
	Action      string    `json:"action"`
	ModeratorID uuid.UUID `json:"moderatorId"`
	ReportID    uuid.UUID `json:"reportId"`
	Notes       *string   `json:"notes"`
	CreatedAt   string    `json:"createdAt"`
}

type reportResponse struct {
	ID                uuid.UUID                  `json:"id"`
	Type              string                     `json:"type"`
	ContentID         string                     `json:"contentId"`
	Reason            string                     `json:"reason"`
	Details           *string                    `json:"details"`
	Status            string                     `json:"status"`
	ReporterID        uuid.UUID                  `json:"reporterId"`
	ReportedUserID    *uuid.UUID                 `json:"reportedUserId"`
	CreatedAt         string                     `json:"createdAt"`
	UpdatedAt         string                     `json:"updatedAt"`
	Reporter          *model.UserSummary         `json:"reporter,omitempty"`
	ReportedUser      *model.UserSummary         `json:"reportedUser,omitempty"`
	ModerationActions []moderationActionResponse `json:"moderationActions,omitempty"`
}

type moderationResultResponse struct {
	ModerationAction moderationActionResponse `json:"moderationAction"`
	UpdatedReport    reportResponse           `json:"updatedReport"`
}

type eligibilityData struct {
	Valid        bool     `json:"valid"`
	Discount     *float64 `json:"discount,omitempty"`
	DiscountType string   `json:"discountType,omitempty"`
	Message      string   `json:"message"`
}

type couponResponse struct {
	Success bool            `json:"success"`
	Data    eligibilityData `json:"data"`
}

type couponCodeResponse struct {
	ID              uuid.UUID `json:"id"`
	Code            string    `json:"code"`
	DiscountType    string    `json:"discountType"`
	DiscountValue   float64   `json:"discountValue"`
	MinimumPurchase *float64  `json:"minimumPurchase"`
	MaxUses         *int      `json:"maxUses"`
	UsedCount       int       `json:"usedCount"`
	PerUserLimit    *int      `json:"perUserLimit"`
}

type promotionResponse struct {
	ID        uuid.UUID            `json:"id"`
	Name      string               `json:"name"`
	SellerID  *uuid.UUID           `json:"sellerId"`
	IsActive  bool                 `json:"isActive"`
	StartDate string               `json:"startDate"`
	EndDate   string               `json:"endDate"`
	CreatedAt string               `json:"createdAt,omitempty"`
	Coupons   []couponCodeResponse `json:"coupons"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func toFloat(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	f := d.InexactFloat64()
	return &f
}

func newActionResponse(a model.ModerationAction) moderationActionResponse {
	return moderationActionResponse{
		ID:          a.ID,
		Action:      string(a.Action),
		ModeratorID: a.ModeratorID,
		ReportID:    a.ReportID,
		Notes:       a.Notes,
		CreatedAt:   formatTime(a.CreatedAt),
	}
}

func newReportResponse(r model.ContentReport) reportResponse {
	return reportResponse{
		ID:             r.ID,
		Type:           string(r.ContentType),
		ContentID:      r.ContentID,
		Reason:         r.Reason,
		Details:        r.Details,
		Status:         string(r.Status),
		ReporterID:     r.ReporterID,
		ReportedUserID: r.ReportedUserID,
		CreatedAt:      formatTime(r.CreatedAt),
		UpdatedAt:      formatTime(r.UpdatedAt),
	}
}

func newReportDetailsResponse(d model.ReportDetails) reportResponse {
	resp := newReportResponse(d.ContentReport)
	reporter := d.Reporter
	resp.Reporter = &reporter
	resp.ReportedUser = d.ReportedUser
	resp.ModerationActions = lo.Map(d.Actions, func(a model.ModerationAction, _ int) moderationActionResponse {
		return newActionResponse(a)
	})
	return resp
}

func newCouponResponse(e model.Eligibility) couponResponse {
	data := eligibilityData{
		Valid:   e.Valid,
		Message: e.Message,
	}
	if e.Valid {
		data.Discount = toFloat(e.Discount)
		data.DiscountType = string(e.DiscountType)
	}
	return couponResponse{Success: true, Data: data}
}

func newPromotionResponse(p model.Promotion) promotionResponse {
	return promotionResponse{
		ID:        p.ID,
		Name:      p.Name,
		SellerID:  p.SellerID,
		IsActive:  p.IsActive,
		StartDate: formatTime(p.StartDate),
		EndDate:   formatTime(p.EndDate),
		CreatedAt: formatTime(p.CreatedAt),
		Coupons: lo.Map(p.Coupons, func(c model.Coupon, _ int) couponCodeResponse {
			return couponCodeResponse{
				ID:              c.ID,
				Code:            c.Code,
				DiscountType:    string(c.DiscountType),
				DiscountValue:   c.DiscountValue.InexactFloat64(),
				MinimumPurchase: toFloat(c.MinimumPurchase),
				MaxUses:         c.MaxUses,
				UsedCount:       c.UsedCount,
				PerUserLimit:    c.PerUserLimit,
			}
		}),
	}
}
