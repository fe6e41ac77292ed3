package model

import (
	"time"

	"github.com/google/uuid"
)

// ModerationActionType описывает решение модератора по жалобе.
type ModerationActionType string

const (
	ActionApprove ModerationActionType = "APPROVE"
	ActionReject  ModerationActionType = "REJECT"
	ActionDelete  ModerationActionType = "DELETE"
	ActionFlag    ModerationActionType = "FLAG"
	ActionWarn    ModerationActionType = "WARN"
	ActionSuspend ModerationActionType = "SUSPEND"
)

// Результирующий статус не зависит от текущего статуса жалобы.
var actionStatuses = map[ModerationActionType]ReportStatus{
	ActionApprove: ReportStatusResolved,
	ActionReject:  ReportStatusResolved,
	ActionDelete:  ReportStatusResolved,
	ActionFlag:    ReportStatusUnderReview,
	ActionWarn:    ReportStatusResolved,
	ActionSuspend: ReportStatusResolved,
}

// StatusForAction возвращает статус, в который переходит жалоба после действия.
// Неизвестные действия переводят жалобу на рассмотрение.
func StatusForAction(a ModerationActionType) ReportStatus {
	if s, ok := actionStatuses[a]; ok {
		return s
	}
	return ReportStatusUnderReview
}

// Valid сообщает, является ли действие известным.
func (a ModerationActionType) Valid() bool {
	_, ok := actionStatuses[a]
	return ok
}

// ModerationAction — неизменяемая запись аудита решения модератора.
type ModerationAction struct {
	ID          uuid.UUID
	Action      ModerationActionType
	ModeratorID uuid.UUID
	ReportID    uuid.UUID
	Notes       *string
	CreatedAt   time.Time
}

// ModerationResult — итог применения действия: запись аудита, обновлённая жалоба
// и признак того, что пользователь был заблокирован.
type ModerationResult struct {
	Action        ModerationAction
	Report        ReportDetails
	SuspendedUser *uuid.UUID
}
