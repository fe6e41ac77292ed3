// Package service реализует бизнес-логику модерации жалоб и погашения купонов.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/leandro-lugaresi/hub"
	"github.com/motoki317/sc"

	"github.com/bigjbird1/vowswap/internal/model"
	"github.com/bigjbird1/vowswap/internal/rbac"
	"github.com/bigjbird1/vowswap/internal/repository"
)

var (
	// ErrUnauthenticated возвращается, если вызывающий не аутентифицирован.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden возвращается, если роли вызывающего недостаточно для операции.
	ErrForbidden = errors.New("forbidden")
	// ErrSuspended возвращается для заблокированных учётных записей.
	ErrSuspended = errors.New("account suspended")
	// ErrValidation возвращается при некорректных или неполных входных данных.
	ErrValidation = errors.New("validation error")
)

// Repository описывает контракт доступа к данным, используемый сервисом.
type Repository interface {
	Close() error
	Ping(ctx context.Context) error
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)

	CreateReport(ctx context.Context, report *model.ContentReport) error
	GetReport(ctx context.Context, id uuid.UUID) (*model.ReportDetails, error)
	ListReports(ctx context.Context, f model.ReportFilter) ([]model.ReportDetails, error)
	ApplyModerationAction(ctx context.Context, p repository.ApplyActionParams) (*model.ModerationResult, error)

	GetCouponByCode(ctx context.Context, code string) (*model.Coupon, error)
	CountUserRedemptions(ctx context.Context, couponID, userID uuid.UUID) (int, error)
	RedeemCoupon(ctx context.Context, p repository.RedeemParams, check repository.EligibilityCheck) (model.Eligibility, *model.UsedCoupon, error)
	CreatePromotion(ctx context.Context, p *model.Promotion) error
	GetPromotion(ctx context.Context, id uuid.UUID) (*model.Promotion, error)
}

// Service содержит бизнес-логику сервиса. Состояние между запросами хранится только в БД;
// кэш учётных записей лишь ускоряет разрешение ролей.
type Service struct {
	repo  Repository
	hub   *hub.Hub
	users *sc.Cache[uuid.UUID, *model.User]
	now   func() time.Time
}

// NewService создаёт новый сервис с указанным репозиторием и шиной событий.
func NewService(repo Repository, h *hub.Hub) *Service {
	s := &Service{
		repo: repo,
		hub:  h,
		now:  time.Now,
	}
	s.users = sc.NewMust(s.loadUser, 30*time.Second, time.Minute)
	return s
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

// Ping проверяет доступность хранилища.
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func (s *Service) loadUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.repo.GetUser(ctx, id)
}

// ResolveIdentity определяет роль пользователя по идентификатору из токена провайдера.
func (s *Service) ResolveIdentity(ctx context.Context, userID uuid.UUID) (model.Identity, error) {
	if userID == uuid.Nil {
		return model.Identity{}, ErrUnauthenticated
	}

	u, err := s.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.Identity{}, ErrUnauthenticated
		}
		return model.Identity{}, fmt.Errorf("resolve identity: %w", err)
	}

	if u.Status == model.UserStatusSuspended {
		return model.Identity{}, ErrSuspended
	}

	role := u.Role
	if !rbac.ValidRole(role) {
		role = model.RoleCustomer
	}
	return model.Identity{UserID: u.ID, Role: role}, nil
}

// ForgetIdentity сбрасывает кэшированные сведения о пользователе.
func (s *Service) ForgetIdentity(userID uuid.UUID) {
	s.users.Forget(userID)
}

func (s *Service) publish(name string, fields hub.Fields) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(hub.Message{Name: name, Fields: fields})
}

func validationErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
