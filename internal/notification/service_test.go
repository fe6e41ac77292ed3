package notification

import (
	"testing"

	"github.com/google/uuid"
	"github.com/leandro-lugaresi/hub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/bigjbird1/vowswap/internal/event"
)

func TestService_LogsEvents(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := hub.New()
	s := StartService(h, zap.New(core))

	userID := uuid.New()
	h.Publish(hub.Message{Name: event.ReportCreated, Fields: hub.Fields{"report_id": uuid.New(), "content_type": "REVIEW"}})
	h.Publish(hub.Message{Name: event.UserSuspended, Fields: hub.Fields{"user_id": userID}})
	h.Publish(hub.Message{Name: "unrelated.topic"})

	s.Stop()

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "content report submitted", entries[0].Message)
	assert.Equal(t, "user suspended by moderation", entries[1].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "notification", entries[1].LoggerName)
	assert.Equal(t, userID.String(), entries[1].ContextMap()["userID"])
}
