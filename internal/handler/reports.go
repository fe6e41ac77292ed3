package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/bigjbird1/vowswap/internal/model"
	"github.com/bigjbird1/vowswap/internal/service"
	"github.com/bigjbird1/vowswap/internal/validation"
)

type submitReportRequest struct {
	Type           string  `json:"type" validate:"required,contenttype"`
	ContentID      string  `json:"contentId" validate:"required,max=255"`
	Reason         string  `json:"reason" validate:"required,max=255"`
	Details        *string `json:"details" validate:"omitempty,max=2000"`
	ReportedUserID *string `json:"reportedUserId" validate:"omitempty,uuid"`
}

// SubmitReport создаёт жалобу на контент от имени текущего пользователя.
func (h *Handler) SubmitReport(w http.ResponseWriter, r *http.Request) {
	var req submitReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, http.StatusText(http.StatusBadRequest))
		return
	}
	if err := validation.Struct(req); err != nil {
		badRequest(w, err.Error())
		return
	}

	in := service.SubmitReportInput{
		Type:      model.ContentType(req.Type),
		ContentID: req.ContentID,
		Reason:    req.Reason,
		Details:   req.Details,
	}
	if req.ReportedUserID != nil {
		id := uuid.MustParse(*req.ReportedUserID)
		in.ReportedUserID = &id
	}

	report, err := h.service.SubmitReport(r.Context(), identity(r), in)
	if err != nil {
		h.writeError(w, r, "submit report", err)
		return
	}

	writeJSON(w, http.StatusCreated, newReportResponse(*report))
}

// ListReports возвращает жалобы по фильтрам status, type, startDate, endDate.
func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	from, err := validation.ParseTime(q.Get("startDate"))
	if err != nil {
		badRequest(w, "startDate: "+err.Error())
		return
	}
	to, err := validation.ParseTime(q.Get("endDate"))
	if err != nil {
		badRequest(w, "endDate: "+err.Error())
		return
	}

	reports, err := h.service.ListReports(r.Context(), identity(r), model.ReportFilter{
		Status:      model.ReportStatus(q.Get("status")),
		ContentType: model.ContentType(q.Get("type")),
		From:        from,
		To:          to,
	})
	if err != nil {
		h.writeError(w, r, "list reports", err)
		return
	}

	writeJSON(w, http.StatusOK, lo.Map(reports, func(d model.ReportDetails, _ int) reportResponse {
		return newReportDetailsResponse(d)
	}))
}

// GetReport возвращает жалобу с историей модерации.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid report id")
		return
	}

	report, err := h.service.GetReport(r.Context(), identity(r), id)
	if err != nil {
		h.writeError(w, r, "get report", err)
		return
	}

	writeJSON(w, http.StatusOK, newReportDetailsResponse(*report))
}

type moderationActionRequest struct {
	Action   string  `json:"action" validate:"required,modaction"`
	ReportID string  `json:"reportId" validate:"required,uuid"`
	Notes    *string `json:"notes" validate:"omitempty,max=2000"`
}

// ApplyModerationAction применяет решение модератора к жалобе.
func (h *Handler) ApplyModerationAction(w http.ResponseWriter, r *http.Request) {
	var req moderationActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, http.StatusText(http.StatusBadRequest))
		return
	}
	if err := validation.Struct(req); err != nil {
		badRequest(w, err.Error())
		return
	}

	res, err := h.service.ApplyModerationAction(r.Context(), identity(r), service.ApplyActionInput{
		Action:   model.ModerationActionType(req.Action),
		ReportID: uuid.MustParse(req.ReportID),
		Notes:    req.Notes,
	})
	if err != nil {
		h.writeError(w, r, "apply moderation action", err)
		return
	}

	writeJSON(w, http.StatusOK, moderationResultResponse{
		ModerationAction: newActionResponse(res.Action),
		UpdatedReport:    newReportDetailsResponse(res.Report),
	})
}
