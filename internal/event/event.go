// Package event содержит имена доменных событий, публикуемых через hub.
package event

const (
	// ReportCreated подана новая жалоба.
	// Поля: report_id uuid.UUID, content_type model.ContentType, reporter_id uuid.UUID
	ReportCreated = "report.created"
	// ReportModerated к жалобе применено действие модератора.
	// Поля: report_id uuid.UUID, action model.ModerationActionType, status model.ReportStatus, moderator_id uuid.UUID
	ReportModerated = "report.moderated"
	// UserSuspended пользователь заблокирован действием SUSPEND.
	// Поля: user_id uuid.UUID, report_id uuid.UUID, moderator_id uuid.UUID
	UserSuspended = "user.suspended"
	// CouponRedeemed купон погашен в рамках заказа.
	// Поля: coupon_code string, user_id uuid.UUID, order_id string, discount decimal.Decimal
	CouponRedeemed = "coupon.redeemed"
)
