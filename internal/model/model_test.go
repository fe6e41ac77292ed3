package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatusForAction(t *testing.T) {
	tests := []struct {
		action ModerationActionType
		want   ReportStatus
	}{
		{ActionApprove, ReportStatusResolved},
		{ActionReject, ReportStatusResolved},
		{ActionDelete, ReportStatusResolved},
		{ActionWarn, ReportStatusResolved},
		{ActionSuspend, ReportStatusResolved},
		{ActionFlag, ReportStatusUnderReview},
		{ModerationActionType("ESCALATE"), ReportStatusUnderReview},
		{ModerationActionType(""), ReportStatusUnderReview},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusForAction(tt.action))
		})
	}
}

func TestModerationActionTypeValid(t *testing.T) {
	assert.True(t, ActionFlag.Valid())
	assert.False(t, ModerationActionType("approve").Valid())
}

func TestPromotionActiveAt(t *testing.T) {
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 6, 30, 23, 59, 59, 0, time.UTC)
	p := Promotion{IsActive: true, StartDate: start, EndDate: end}

	assert.True(t, p.ActiveAt(start), "start bound is inclusive")
	assert.True(t, p.ActiveAt(end), "end bound is inclusive")
	assert.True(t, p.ActiveAt(start.Add(24*time.Hour)))
	assert.False(t, p.ActiveAt(start.Add(-time.Second)))
	assert.False(t, p.ActiveAt(end.Add(time.Second)))

	p.IsActive = false
	assert.False(t, p.ActiveAt(start.Add(24*time.Hour)))
}

func TestContentTypeValid(t *testing.T) {
	assert.True(t, ContentTypeRegistry.Valid())
	assert.False(t, ContentType("COMMENT").Valid())
}
