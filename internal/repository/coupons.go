package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/bigjbird1/vowswap/internal/model"
)

const couponSelect = `SELECT c.id, c.promotion_id, c.code, c.discount_type, c.discount_value,
		c.minimum_purchase, c.max_uses, c.used_count, c.per_user_limit,
		p.name, p.seller_id, p.is_active, p.start_date, p.end_date, p.created_at
	 FROM coupon_codes c
	 JOIN promotions p ON p.id = c.promotion_id`

func scanCoupon(row rowScanner) (*model.Coupon, error) {
	var (
		c            model.Coupon
		discountType string
		value        int64
		minimum      *int64
	)

	err := row.Scan(
		&c.ID, &c.PromotionID, &c.Code, &discountType, &value,
		&minimum, &c.MaxUses, &c.UsedCount, &c.PerUserLimit,
		&c.Promotion.Name, &c.Promotion.SellerID, &c.Promotion.IsActive,
		&c.Promotion.StartDate, &c.Promotion.EndDate, &c.Promotion.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.DiscountType = model.DiscountType(discountType)
	c.DiscountValue = fromHundredths(value)
	if minimum != nil {
		v := fromHundredths(*minimum)
		c.MinimumPurchase = &v
	}
	c.Promotion.ID = c.PromotionID

	return &c, nil
}

// GetCouponByCode возвращает купон вместе с акцией.
func (r *PostgresRepository) GetCouponByCode(ctx context.Context, code string) (*model.Coupon, error) {
	c, err := scanCoupon(r.pool.QueryRow(ctx, couponSelect+` WHERE c.code = $1`, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCouponNotFound
		}
		return nil, fmt.Errorf("select coupon: %w", err)
	}
	return c, nil
}

// CountUserRedemptions возвращает число погашений купона пользователем.
func (r *PostgresRepository) CountUserRedemptions(ctx context.Context, couponID, userID uuid.UUID) (int, error) {
	return countUserRedemptions(ctx, r.pool, couponID, userID)
}

func countUserRedemptions(ctx context.Context, q querier, couponID, userID uuid.UUID) (int, error) {
	var n int
	err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM used_coupons WHERE coupon_id = $1 AND user_id = $2`,
		couponID, userID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count redemptions: %w", err)
	}
	return n, nil
}

// RedeemParams описывает погашение купона в рамках заказа.
type RedeemParams struct {
	UsageID uuid.UUID
	Code    string
	UserID  uuid.UUID
	OrderID string
}

// EligibilityCheck вычисляет пригодность купона по его состоянию и числу погашений пользователем.
// coupon равен nil, если купон не найден.
type EligibilityCheck func(coupon *model.Coupon, userRedemptions int) model.Eligibility

// RedeemCoupon погашает купон. Строка купона блокируется до конца транзакции, проверка пригодности
// повторяется по заблокированному состоянию, после чего запись о погашении и увеличение счётчика
// фиксируются вместе. Непригодный купон возвращается как результат без изменений в БД.
func (r *PostgresRepository) RedeemCoupon(ctx context.Context, p RedeemParams, check EligibilityCheck) (model.Eligibility, *model.UsedCoupon, error) {
	var (
		elig  model.Eligibility
		usage *model.UsedCoupon
	)

	err := r.withRetry(ctx, func() error {
		usage = nil
		return r.inTx(ctx, func(tx pgx.Tx) error {
			c, err := scanCoupon(tx.QueryRow(ctx, couponSelect+` WHERE c.code = $1 FOR UPDATE OF c`, p.Code))
			if err != nil && !errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("lock coupon for update: %w", err)
			}

			var used int
			if c != nil {
				used, err = countUserRedemptions(ctx, tx, c.ID, p.UserID)
				if err != nil {
					return err
				}
			}

			elig = check(c, used)
			if !elig.Valid {
				return nil
			}

			u := &model.UsedCoupon{
				ID:       p.UsageID,
				CouponID: c.ID,
				UserID:   p.UserID,
				OrderID:  &p.OrderID,
			}
			err = tx.QueryRow(ctx,
				`INSERT INTO used_coupons (id, coupon_id, user_id, order_id) VALUES ($1, $2, $3, $4) RETURNING used_at`,
				u.ID, u.CouponID, u.UserID, u.OrderID,
			).Scan(&u.UsedAt)
			if err != nil {
				if isForeignKeyViolation(err) {
					return fmt.Errorf("%w: %s", ErrUserNotFound, u.UserID)
				}
				return fmt.Errorf("insert used coupon: %w", err)
			}

			tag, err := tx.Exec(ctx,
				`UPDATE coupon_codes SET used_count = used_count + 1
				 WHERE id = $1 AND (max_uses IS NULL OR used_count < max_uses)`,
				c.ID,
			)
			if err != nil {
				return fmt.Errorf("increment usage: %w", err)
			}
			if tag.RowsAffected() != 1 {
				return ErrUsageLimitReached
			}

			usage = u
			return nil
		})
	})
	if err != nil {
		return model.Eligibility{}, nil, err
	}

	return elig, usage, nil
}

// CreatePromotion сохраняет акцию вместе с её купонами в одной транзакции.
func (r *PostgresRepository) CreatePromotion(ctx context.Context, p *model.Promotion) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO promotions (id, name, seller_id, is_active, start_date, end_date)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING created_at`,
			p.ID, p.Name, p.SellerID, p.IsActive, p.StartDate, p.EndDate,
		).Scan(&p.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert promotion: %w", err)
		}

		for _, c := range p.Coupons {
			var minimum *int64
			if c.MinimumPurchase != nil {
				v := toHundredths(*c.MinimumPurchase)
				minimum = &v
			}

			_, err := tx.Exec(ctx,
				`INSERT INTO coupon_codes (id, promotion_id, code, discount_type, discount_value,
					minimum_purchase, max_uses, used_count, per_user_limit)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, 0, $8)`,
				c.ID, p.ID, c.Code, string(c.DiscountType), toHundredths(c.DiscountValue),
				minimum, c.MaxUses, c.PerUserLimit,
			)
			if err != nil {
				if isUniqueViolation(err) {
					return fmt.Errorf("%w: %s", ErrCouponCodeExists, c.Code)
				}
				return fmt.Errorf("insert coupon: %w", err)
			}
		}

		return nil
	})
}

// GetPromotion возвращает акцию вместе с её купонами.
func (r *PostgresRepository) GetPromotion(ctx context.Context, id uuid.UUID) (*model.Promotion, error) {
	var p model.Promotion
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, seller_id, is_active, start_date, end_date, created_at FROM promotions WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.Name, &p.SellerID, &p.IsActive, &p.StartDate, &p.EndDate, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPromotionNotFound
		}
		return nil, fmt.Errorf("select promotion: %w", err)
	}

	rows, err := r.pool.Query(ctx, couponSelect+` WHERE c.promotion_id = $1 ORDER BY c.code`, id)
	if err != nil {
		return nil, fmt.Errorf("select coupons: %w", err)
	}
	defer rows.Close()

	p.Coupons = []model.Coupon{}
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, fmt.Errorf("scan coupon: %w", err)
		}
		c.Promotion = model.Promotion{}
		p.Coupons = append(p.Coupons, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return &p, nil
}
