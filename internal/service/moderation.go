package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/leandro-lugaresi/hub"

	"github.com/bigjbird1/vowswap/internal/event"
	"github.com/bigjbird1/vowswap/internal/metrics"
	"github.com/bigjbird1/vowswap/internal/model"
	"github.com/bigjbird1/vowswap/internal/rbac"
	"github.com/bigjbird1/vowswap/internal/repository"
)

// SubmitReportInput содержит данные новой жалобы.
type SubmitReportInput struct {
	Type           model.ContentType
	ContentID      string
	Reason         string
	Details        *string
	ReportedUserID *uuid.UUID
}

// SubmitReport создаёт жалобу в статусе PENDING от имени вызывающего.
// Повторные жалобы на тот же контент допускаются.
func (s *Service) SubmitReport(ctx context.Context, who model.Identity, in SubmitReportInput) (*model.ContentReport, error) {
	if !who.Authenticated() {
		return nil, ErrUnauthenticated
	}

	contentID := strings.TrimSpace(in.ContentID)
	reason := strings.TrimSpace(in.Reason)

	switch {
	case !in.Type.Valid():
		return nil, validationErr("unknown content type %q", in.Type)
	case contentID == "":
		return nil, validationErr("contentId is required")
	case reason == "":
		return nil, validationErr("reason is required")
	}

	var details *string
	if in.Details != nil {
		if d := strings.TrimSpace(*in.Details); d != "" {
			details = &d
		}
	}

	reportedUserID := in.ReportedUserID
	if reportedUserID != nil && *reportedUserID == uuid.Nil {
		reportedUserID = nil
	}

	report := &model.ContentReport{
		ID:             uuid.New(),
		ContentType:    in.Type,
		ContentID:      contentID,
		Reason:         reason,
		Details:        details,
		Status:         model.ReportStatusPending,
		ReporterID:     who.UserID,
		ReportedUserID: reportedUserID,
	}

	if err := s.repo.CreateReport(ctx, report); err != nil {
		return nil, err
	}

	metrics.ReportsSubmitted.WithLabelValues(string(report.ContentType)).Inc()
	s.publish(event.ReportCreated, hub.Fields{
		"report_id":    report.ID,
		"content_type": report.ContentType,
		"reporter_id":  report.ReporterID,
	})

	return report, nil
}

// ApplyActionInput описывает решение модератора.
type ApplyActionInput struct {
	Action   model.ModerationActionType
	ReportID uuid.UUID
	Notes    *string
}

// ApplyModerationAction записывает действие модератора и переводит жалобу в статус,
// определяемый только действием. SUSPEND дополнительно блокирует пользователя,
// на которого подана жалоба, в той же транзакции.
func (s *Service) ApplyModerationAction(ctx context.Context, who model.Identity, in ApplyActionInput) (*model.ModerationResult, error) {
	if err := authorize(who, rbac.Moderate); err != nil {
		return nil, err
	}

	if !in.Action.Valid() {
		return nil, validationErr("unknown moderation action %q", in.Action)
	}
	if in.ReportID == uuid.Nil {
		return nil, validationErr("reportId is required")
	}

	var notes *string
	if in.Notes != nil {
		if n := strings.TrimSpace(*in.Notes); n != "" {
			notes = &n
		}
	}

	res, err := s.repo.ApplyModerationAction(ctx, repository.ApplyActionParams{
		ActionID:    uuid.New(),
		ReportID:    in.ReportID,
		ModeratorID: who.UserID,
		Action:      in.Action,
		Notes:       notes,
	})
	if err != nil {
		return nil, err
	}

	metrics.ModerationActions.WithLabelValues(string(in.Action)).Inc()
	s.publish(event.ReportModerated, hub.Fields{
		"report_id":    res.Report.ID,
		"action":       res.Action.Action,
		"status":       res.Report.Status,
		"moderator_id": who.UserID,
	})

	if res.SuspendedUser != nil {
		s.ForgetIdentity(*res.SuspendedUser)
		metrics.UsersSuspended.Inc()
		s.publish(event.UserSuspended, hub.Fields{
			"user_id":      *res.SuspendedUser,
			"report_id":    res.Report.ID,
			"moderator_id": who.UserID,
		})
	}

	return res, nil
}

// ListReports возвращает жалобы по фильтру для модераторов.
func (s *Service) ListReports(ctx context.Context, who model.Identity, f model.ReportFilter) ([]model.ReportDetails, error) {
	if err := authorize(who, rbac.Moderate); err != nil {
		return nil, err
	}

	if f.Status != "" && !f.Status.Valid() {
		return nil, validationErr("unknown report status %q", f.Status)
	}
	if f.ContentType != "" && !f.ContentType.Valid() {
		return nil, validationErr("unknown content type %q", f.ContentType)
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return nil, validationErr("endDate is before startDate")
	}

	return s.repo.ListReports(ctx, f)
}

// GetReport возвращает жалобу с историей модерации (новые действия первыми).
func (s *Service) GetReport(ctx context.Context, who model.Identity, id uuid.UUID) (*model.ReportDetails, error) {
	if err := authorize(who, rbac.Moderate); err != nil {
		return nil, err
	}
	return s.repo.GetReport(ctx, id)
}

func authorize(who model.Identity, c rbac.Capability) error {
	if !who.Authenticated() {
		return ErrUnauthenticated
	}
	if !rbac.Can(who.Role, c) {
		return ErrForbidden
	}
	return nil
}
