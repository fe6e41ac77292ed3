package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigjbird1/vowswap/internal/model"
)

func requireDB(t *testing.T) *PostgresRepository {
	t.Helper()
	if testRepo == nil {
		t.Skip("postgres is not available")
	}
	return testRepo
}

func createUser(t *testing.T, r *PostgresRepository, role model.Role) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := r.pool.Exec(context.Background(),
		`INSERT INTO users (id, name, email, role) VALUES ($1, $2, $3, $4)`,
		id, "user "+id.String()[:8], id.String()+"@vowswap.test", string(role),
	)
	require.NoError(t, err)
	return id
}

func createReport(t *testing.T, r *PostgresRepository, reporter uuid.UUID, reported *uuid.UUID) *model.ContentReport {
	t.Helper()

	report := &model.ContentReport{
		ID:             uuid.New(),
		ContentType:    model.ContentTypeReview,
		ContentID:      "review-" + uuid.NewString(),
		Reason:         "Offensive language",
		Status:         model.ReportStatusPending,
		ReporterID:     reporter,
		ReportedUserID: reported,
	}
	require.NoError(t, r.CreateReport(context.Background(), report))
	return report
}

func createCoupon(t *testing.T, r *PostgresRepository, c model.Coupon) model.Coupon {
	t.Helper()

	now := time.Now()
	c.ID = uuid.New()
	c.Code = "TEST-" + uuid.NewString()[:8]
	if c.DiscountType == "" {
		c.DiscountType = model.DiscountPercentage
		c.DiscountValue = decimal.NewFromInt(10)
	}

	p := &model.Promotion{
		ID:        uuid.New(),
		Name:      "Integration",
		IsActive:  true,
		StartDate: now.Add(-time.Hour),
		EndDate:   now.Add(time.Hour),
		Coupons:   []model.Coupon{c},
	}
	p.Coupons[0].PromotionID = p.ID
	require.NoError(t, r.CreatePromotion(context.Background(), p))
	return p.Coupons[0]
}

// usageCheck повторяет проверки лимитов использования.
func usageCheck(c *model.Coupon, used int) model.Eligibility {
	switch {
	case c == nil:
		return model.Eligibility{Message: "invalid"}
	case c.MaxUses != nil && c.UsedCount >= *c.MaxUses:
		return model.Eligibility{Message: "max uses"}
	case c.PerUserLimit != nil && used >= *c.PerUserLimit:
		return model.Eligibility{Message: "per user"}
	}
	return model.Eligibility{Valid: true}
}

func TestRedeemCoupon_ConcurrentMaxUses(t *testing.T) {
	r := requireDB(t)
	ctx := context.Background()

	const (
		maxUses  = 5
		attempts = 20
	)
	limit := maxUses
	coupon := createCoupon(t, r, model.Coupon{MaxUses: &limit})

	users := make([]uuid.UUID, attempts)
	for i := range users {
		users[i] = createUser(t, r, model.RoleCustomer)
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(userID uuid.UUID) {
			defer wg.Done()

			elig, usage, err := r.RedeemCoupon(ctx, RedeemParams{
				UsageID: uuid.New(),
				Code:    coupon.Code,
				UserID:  userID,
				OrderID: "order-" + userID.String(),
			}, usageCheck)
			if err != nil {
				assert.ErrorIs(t, err, ErrUsageLimitReached)
				return
			}
			if elig.Valid {
				assert.NotNil(t, usage)
				mu.Lock()
				success++
				mu.Unlock()
			}
		}(users[i])
	}
	wg.Wait()

	assert.Equal(t, maxUses, success)

	got, err := r.GetCouponByCode(ctx, coupon.Code)
	require.NoError(t, err)
	assert.Equal(t, maxUses, got.UsedCount)

	var rows int
	require.NoError(t, r.pool.QueryRow(ctx, `SELECT count(*) FROM used_coupons WHERE coupon_id = $1`, coupon.ID).Scan(&rows))
	assert.Equal(t, maxUses, rows, "every counted use has exactly one usage record")
}

func TestRedeemCoupon_IneligibleWritesNothing(t *testing.T) {
	r := requireDB(t)
	ctx := context.Background()

	perUser := 1
	coupon := createCoupon(t, r, model.Coupon{PerUserLimit: &perUser})
	userID := createUser(t, r, model.RoleCustomer)

	redeem := func(order string) (model.Eligibility, *model.UsedCoupon) {
		elig, usage, err := r.RedeemCoupon(ctx, RedeemParams{UsageID: uuid.New(), Code: coupon.Code, UserID: userID, OrderID: order}, usageCheck)
		require.NoError(t, err)
		return elig, usage
	}

	elig, usage := redeem("order-1")
	require.True(t, elig.Valid)
	require.NotNil(t, usage)
	assert.Equal(t, "order-1", *usage.OrderID)

	elig, usage = redeem("order-2")
	assert.False(t, elig.Valid)
	assert.Equal(t, "per user", elig.Message)
	assert.Nil(t, usage)

	n, err := r.CountUserRedemptions(ctx, coupon.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := r.GetCouponByCode(ctx, coupon.Code)
	require.NoError(t, err)
	assert.Equal(t, 1, got.UsedCount)
}

func TestRedeemCoupon_UnknownCode(t *testing.T) {
	r := requireDB(t)

	elig, usage, err := r.RedeemCoupon(context.Background(), RedeemParams{
		UsageID: uuid.New(), Code: "NO-SUCH-CODE", UserID: uuid.New(), OrderID: "o",
	}, usageCheck)
	require.NoError(t, err)
	assert.False(t, elig.Valid)
	assert.Nil(t, usage)

	_, err = r.GetCouponByCode(context.Background(), "NO-SUCH-CODE")
	assert.ErrorIs(t, err, ErrCouponNotFound)
}

func TestRedeemCoupon_UnknownUser(t *testing.T) {
	r := requireDB(t)
	ctx := context.Background()

	coupon := createCoupon(t, r, model.Coupon{})

	_, usage, err := r.RedeemCoupon(ctx, RedeemParams{
		UsageID: uuid.New(), Code: coupon.Code, UserID: uuid.New(), OrderID: "order-ghost",
	}, usageCheck)
	require.ErrorIs(t, err, ErrUserNotFound)
	assert.Nil(t, usage)

	got, err := r.GetCouponByCode(ctx, coupon.Code)
	require.NoError(t, err)
	assert.Zero(t, got.UsedCount)
}

func TestCreateReport_UnknownReportedUser(t *testing.T) {
	r := requireDB(t)
	ctx := context.Background()

	reporter := createUser(t, r, model.RoleCustomer)
	ghost := uuid.New()
	report := &model.ContentReport{
		ID:             uuid.New(),
		ContentType:    model.ContentTypeProduct,
		ContentID:      "product-" + uuid.NewString(),
		Reason:         "Counterfeit",
		Status:         model.ReportStatusPending,
		ReporterID:     reporter,
		ReportedUserID: &ghost,
	}

	err := r.CreateReport(ctx, report)
	require.ErrorIs(t, err, ErrUserNotFound)

	_, err = r.GetReport(ctx, report.ID)
	assert.ErrorIs(t, err, ErrReportNotFound)
}

func TestPromotion_RoundTrip(t *testing.T) {
	r := requireDB(t)
	ctx := context.Background()

	seller := createUser(t, r, model.RoleSeller)
	minimum := decimal.RequireFromString("49.99")
	maxUses := 100
	code := "SPRING-" + uuid.NewString()[:8]

	p := &model.Promotion{
		ID:        uuid.New(),
		Name:      "Spring",
		SellerID:  &seller,
		IsActive:  true,
		StartDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		Coupons: []model.Coupon{{
			ID:              uuid.New(),
			Code:            code,
			DiscountType:    model.DiscountPercentage,
			DiscountValue:   decimal.RequireFromString("12.5"),
			MinimumPurchase: &minimum,
			MaxUses:         &maxUses,
		}},
	}
	require.NoError(t, r.CreatePromotion(ctx, p))
	assert.False(t, p.CreatedAt.IsZero())

	got, err := r.GetPromotion(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.SellerID)
	assert.Equal(t, seller, *got.SellerID)
	require.Len(t, got.Coupons, 1)
	assert.True(t, decimal.RequireFromString("12.5").Equal(got.Coupons[0].DiscountValue))
	require.NotNil(t, got.Coupons[0].MinimumPurchase)
	assert.True(t, minimum.Equal(*got.Coupons[0].MinimumPurchase))
	assert.Equal(t, 0, got.Coupons[0].UsedCount)

	dup := &model.Promotion{
		ID: uuid.New(), Name: "Copy", IsActive: true, StartDate: p.StartDate, EndDate: p.EndDate,
		Coupons: []model.Coupon{{ID: uuid.New(), Code: code, DiscountType: model.DiscountFixedAmount, DiscountValue: decimal.NewFromInt(5)}},
	}
	err = r.CreatePromotion(ctx, dup)
	assert.ErrorIs(t, err, ErrCouponCodeExists)

	_, err = r.GetPromotion(ctx, dup.ID)
	assert.ErrorIs(t, err, ErrPromotionNotFound, "failed creation must not leave a promotion behind")
}

func TestApplyModerationAction_MissingReport(t *testing.T) {
	r := requireDB(t)
	ctx := context.Background()

	moderator := createUser(t, r, model.RoleModerator)
	actionID := uuid.New()

	_, err := r.ApplyModerationAction(ctx, ApplyActionParams{
		ActionID:    actionID,
		ReportID:    uuid.New(),
		ModeratorID: moderator,
		Action:      model.ActionApprove,
	})
	assert.ErrorIs(t, err, ErrReportNotFound)

	var n int
	require.NoError(t, r.pool.QueryRow(ctx, `SELECT count(*) FROM moderation_actions WHERE id = $1`, actionID).Scan(&n))
	assert.Zero(t, n, "no audit record for a missing report")
}

func TestApplyModerationAction_SuspendAndHistory(t *testing.T) {
	r := requireDB(t)
	ctx := context.Background()

	reporter := createUser(t, r, model.RoleCustomer)
	offender := createUser(t, r, model.RoleSeller)
	moderator := createUser(t, r, model.RoleModerator)
	report := createReport(t, r, reporter, &offender)

	flag, err := r.ApplyModerationAction(ctx, ApplyActionParams{
		ActionID: uuid.New(), ReportID: report.ID, ModeratorID: moderator, Action: model.ActionFlag,
	})
	require.NoError(t, err)
	assert.Equal(t, model.ReportStatusUnderReview, flag.Report.Status)
	assert.Nil(t, flag.SuspendedUser)

	u, err := r.GetUser(ctx, offender)
	require.NoError(t, err)
	assert.Equal(t, model.UserStatusActive, u.Status, "FLAG leaves the reported user active")

	notes := "repeat offender"
	suspend, err := r.ApplyModerationAction(ctx, ApplyActionParams{
		ActionID: uuid.New(), ReportID: report.ID, ModeratorID: moderator, Action: model.ActionSuspend, Notes: &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, model.ReportStatusResolved, suspend.Report.Status)
	require.NotNil(t, suspend.SuspendedUser)
	assert.Equal(t, offender, *suspend.SuspendedUser)

	u, err = r.GetUser(ctx, offender)
	require.NoError(t, err)
	assert.Equal(t, model.UserStatusSuspended, u.Status)

	details, err := r.GetReport(ctx, report.ID)
	require.NoError(t, err)
	require.Len(t, details.Actions, 2)
	assert.Equal(t, model.ActionSuspend, details.Actions[0].Action, "detail history is newest first")
	assert.Equal(t, model.ActionFlag, details.Actions[1].Action)
	require.NotNil(t, details.ReportedUser)
	assert.Equal(t, offender, details.ReportedUser.ID)

	list, err := r.ListReports(ctx, model.ReportFilter{Status: model.ReportStatusResolved, ContentType: model.ContentTypeReview})
	require.NoError(t, err)
	var found *model.ReportDetails
	for i := range list {
		if list[i].ID == report.ID {
			found = &list[i]
		}
	}
	require.NotNil(t, found)
	require.Len(t, found.Actions, 2)
	assert.Equal(t, model.ActionFlag, found.Actions[0].Action, "list history is chronological")
}

func TestListReports_DateRange(t *testing.T) {
	r := requireDB(t)
	ctx := context.Background()

	reporter := createUser(t, r, model.RoleCustomer)
	report := createReport(t, r, reporter, nil)

	from := report.CreatedAt.Add(-time.Minute)
	to := report.CreatedAt.Add(time.Minute)
	list, err := r.ListReports(ctx, model.ReportFilter{From: &from, To: &to})
	require.NoError(t, err)
	assert.Contains(t, idsOf(list), report.ID)

	past := report.CreatedAt.Add(-time.Hour)
	list, err = r.ListReports(ctx, model.ReportFilter{To: &past})
	require.NoError(t, err)
	assert.NotContains(t, idsOf(list), report.ID)
}

func idsOf(list []model.ReportDetails) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(list))
	for _, d := range list {
		ids = append(ids, d.ID)
	}
	return ids
}
