package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/samber/lo"

	"github.com/bigjbird1/vowswap/internal/model"
)

const reportSelect = `SELECT r.id, r.content_type, r.content_id, r.reason, r.details, r.status,
		r.reporter_id, r.reported_user_id, r.created_at, r.updated_at,
		rp.name, rp.email, ru.name, ru.email
	 FROM content_reports r
	 JOIN users rp ON rp.id = r.reporter_id
	 LEFT JOIN users ru ON ru.id = r.reported_user_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (model.ReportDetails, error) {
	var (
		d             model.ReportDetails
		contentType   string
		status        string
		reportedName  *string
		reportedEmail *string
	)

	err := row.Scan(
		&d.ID, &contentType, &d.ContentID, &d.Reason, &d.Details, &status,
		&d.ReporterID, &d.ReportedUserID, &d.CreatedAt, &d.UpdatedAt,
		&d.Reporter.Name, &d.Reporter.Email, &reportedName, &reportedEmail,
	)
	if err != nil {
		return d, err
	}

	d.ContentType = model.ContentType(contentType)
	d.Status = model.ReportStatus(status)
	d.Reporter.ID = d.ReporterID
	if d.ReportedUserID != nil && reportedName != nil {
		d.ReportedUser = &model.UserSummary{
			ID:    *d.ReportedUserID,
			Name:  *reportedName,
			Email: lo.FromPtr(reportedEmail),
		}
	}
	d.Actions = []model.ModerationAction{}

	return d, nil
}

// CreateReport сохраняет новую жалобу.
func (r *PostgresRepository) CreateReport(ctx context.Context, report *model.ContentReport) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO content_reports (id, content_type, content_id, reason, details, status, reporter_id, reported_user_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at, updated_at`,
		report.ID, string(report.ContentType), report.ContentID, report.Reason, report.Details,
		string(report.Status), report.ReporterID, report.ReportedUserID,
	).Scan(&report.CreatedAt, &report.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: reported user", ErrUserNotFound)
		}
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// GetReport возвращает жалобу со сводками пользователей и историей действий (новые первыми).
func (r *PostgresRepository) GetReport(ctx context.Context, id uuid.UUID) (*model.ReportDetails, error) {
	return getReport(ctx, r.pool, id)
}

func getReport(ctx context.Context, q querier, id uuid.UUID) (*model.ReportDetails, error) {
	d, err := scanReport(q.QueryRow(ctx, reportSelect+` WHERE r.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("select report: %w", err)
	}

	history, err := loadActions(ctx, q, []uuid.UUID{id}, "DESC")
	if err != nil {
		return nil, err
	}
	d.Actions = lo.ValueOr(history, id, []model.ModerationAction{})

	return &d, nil
}

// ListReports возвращает жалобы по фильтру (новые первыми), история каждой жалобы в хронологическом порядке.
func (r *PostgresRepository) ListReports(ctx context.Context, f model.ReportFilter) ([]model.ReportDetails, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.Status != "" {
		add("r.status = $%d", string(f.Status))
	}
	if f.ContentType != "" {
		add("r.content_type = $%d", string(f.ContentType))
	}
	if f.From != nil {
		add("r.created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("r.created_at <= $%d", *f.To)
	}

	query := reportSelect
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY r.created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select reports: %w", err)
	}
	defer rows.Close()

	reports := []model.ReportDetails{}
	for rows.Next() {
		d, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		reports = append(reports, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	if len(reports) == 0 {
		return reports, nil
	}

	ids := lo.Map(reports, func(d model.ReportDetails, _ int) uuid.UUID { return d.ID })
	history, err := loadActions(ctx, r.pool, ids, "ASC")
	if err != nil {
		return nil, err
	}
	for i := range reports {
		if actions, ok := history[reports[i].ID]; ok {
			reports[i].Actions = actions
		}
	}

	return reports, nil
}

func loadActions(ctx context.Context, q querier, reportIDs []uuid.UUID, order string) (map[uuid.UUID][]model.ModerationAction, error) {
	ids := lo.Map(reportIDs, func(id uuid.UUID, _ int) string { return id.String() })

	rows, err := q.Query(ctx,
		`SELECT id, action, moderator_id, report_id, notes, created_at
		 FROM moderation_actions
		 WHERE report_id::text = ANY($1)
		 ORDER BY created_at `+order+`, id`,
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("select moderation actions: %w", err)
	}
	defer rows.Close()

	var actions []model.ModerationAction
	for rows.Next() {
		var (
			a      model.ModerationAction
			action string
		)
		if err := rows.Scan(&a.ID, &action, &a.ModeratorID, &a.ReportID, &a.Notes, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan moderation action: %w", err)
		}
		a.Action = model.ModerationActionType(action)
		actions = append(actions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return lo.GroupBy(actions, func(a model.ModerationAction) uuid.UUID { return a.ReportID }), nil
}

// ApplyActionParams описывает действие модератора над жалобой.
type ApplyActionParams struct {
	ActionID    uuid.UUID
	ReportID    uuid.UUID
	ModeratorID uuid.UUID
	Action      model.ModerationActionType
	Notes       *string
}

// ApplyModerationAction в одной транзакции записывает действие, переводит жалобу в новый статус
// и при SUSPEND блокирует пользователя, на которого подана жалоба.
// Если жалоба не найдена, ничего не записывается.
func (r *PostgresRepository) ApplyModerationAction(ctx context.Context, p ApplyActionParams) (*model.ModerationResult, error) {
	var res *model.ModerationResult

	err := r.withRetry(ctx, func() error {
		return r.inTx(ctx, func(tx pgx.Tx) error {
			var reportedUserID *uuid.UUID
			err := tx.QueryRow(ctx,
				`SELECT reported_user_id FROM content_reports WHERE id = $1 FOR UPDATE`,
				p.ReportID,
			).Scan(&reportedUserID)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return ErrReportNotFound
				}
				return fmt.Errorf("lock report for update: %w", err)
			}

			action := model.ModerationAction{
				ID:          p.ActionID,
				Action:      p.Action,
				ModeratorID: p.ModeratorID,
				ReportID:    p.ReportID,
				Notes:       p.Notes,
			}
			err = tx.QueryRow(ctx,
				`INSERT INTO moderation_actions (id, action, moderator_id, report_id, notes)
				 VALUES ($1, $2, $3, $4, $5)
				 RETURNING created_at`,
				action.ID, string(action.Action), action.ModeratorID, action.ReportID, action.Notes,
			).Scan(&action.CreatedAt)
			if err != nil {
				return fmt.Errorf("insert moderation action: %w", err)
			}

			_, err = tx.Exec(ctx,
				`UPDATE content_reports SET status = $2, updated_at = $3 WHERE id = $1`,
				p.ReportID, string(model.StatusForAction(p.Action)), time.Now(),
			)
			if err != nil {
				return fmt.Errorf("update report status: %w", err)
			}

			var suspended *uuid.UUID
			if p.Action == model.ActionSuspend && reportedUserID != nil {
				_, err = tx.Exec(ctx,
					`UPDATE users SET status = $2 WHERE id = $1`,
					*reportedUserID, string(model.UserStatusSuspended),
				)
				if err != nil {
					return fmt.Errorf("suspend user: %w", err)
				}
				suspended = reportedUserID
			}

			report, err := getReport(ctx, tx, p.ReportID)
			if err != nil {
				return err
			}

			res = &model.ModerationResult{
				Action:        action,
				Report:        *report,
				SuspendedUser: suspended,
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}
