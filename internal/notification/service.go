// Package notification обрабатывает доменные события, публикуемые сервисом.
package notification

import (
	"sync"

	"github.com/leandro-lugaresi/hub"
	"go.uber.org/zap"

	"github.com/bigjbird1/vowswap/internal/event"
)

type eventHandler func(s *Service, msg hub.Message)

var handlerMap = map[string]eventHandler{
	event.ReportCreated:   reportCreatedHandler,
	event.ReportModerated: reportModeratedHandler,
	event.UserSuspended:   userSuspendedHandler,
	event.CouponRedeemed:  couponRedeemedHandler,
}

// Service журналирует события модерации и погашения купонов.
type Service struct {
	hub    *hub.Hub
	sub    hub.Subscription
	logger *zap.Logger
	wg     sync.WaitGroup
}

// StartService создаёт сервис уведомлений и подписывает его на все события.
func StartService(h *hub.Hub, logger *zap.Logger) *Service {
	s := &Service{
		hub:    h,
		sub:    h.Subscribe(200, "*.*"),
		logger: logger.Named("notification"),
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for msg := range s.sub.Receiver {
			if handler, ok := handlerMap[msg.Topic()]; ok {
				handler(s, msg)
			}
		}
	}()

	return s
}

// Stop отписывает сервис от событий и дожидается обработки полученных.
func (s *Service) Stop() {
	s.hub.Unsubscribe(s.sub)
	s.wg.Wait()
}

func reportCreatedHandler(s *Service, msg hub.Message) {
	s.logger.Info("content report submitted",
		zap.Any("reportID", msg.Fields["report_id"]),
		zap.Any("contentType", msg.Fields["content_type"]),
		zap.Any("reporterID", msg.Fields["reporter_id"]),
	)
}

func reportModeratedHandler(s *Service, msg hub.Message) {
	s.logger.Info("moderation action applied",
		zap.Any("reportID", msg.Fields["report_id"]),
		zap.Any("action", msg.Fields["action"]),
		zap.Any("status", msg.Fields["status"]),
		zap.Any("moderatorID", msg.Fields["moderator_id"]),
	)
}

func userSuspendedHandler(s *Service, msg hub.Message) {
	s.logger.Warn("user suspended by moderation",
		zap.Any("userID", msg.Fields["user_id"]),
		zap.Any("reportID", msg.Fields["report_id"]),
		zap.Any("moderatorID", msg.Fields["moderator_id"]),
	)
}

func couponRedeemedHandler(s *Service, msg hub.Message) {
	s.logger.Info("coupon redeemed",
		zap.Any("code", msg.Fields["coupon_code"]),
		zap.Any("userID", msg.Fields["user_id"]),
		zap.Any("orderID", msg.Fields["order_id"]),
		zap.Any("discount", msg.Fields["discount"]),
	)
}
