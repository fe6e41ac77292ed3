// Package model содержит доменные сущности сервиса модерации и купонов VowSwap.
package model

import (
	"time"

	"github.com/google/uuid"
)

// Role описывает роль пользователя платформы.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleModerator Role = "MODERATOR"
	RoleSeller    Role = "SELLER"
	RoleCustomer  Role = "CUSTOMER"
)

// UserStatus описывает состояние учётной записи пользователя.
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// User представляет пользователя, зеркалируемого из внешнего провайдера идентификации.
type User struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Role      Role
	Status    UserStatus
	CreatedAt time.Time
}

// Identity — аутентифицированный вызывающий: идентификатор и роль.
type Identity struct {
	UserID uuid.UUID
	Role   Role
}

// Authenticated сообщает, содержит ли Identity идентификатор пользователя.
func (i Identity) Authenticated() bool {
	return i.UserID != uuid.Nil
}

// UserSummary — краткие сведения о пользователе для вложения в ответы.
type UserSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// ContentType описывает тип контента, на который подана жалоба.
type ContentType string

const (
	ContentTypeProduct       ContentType = "PRODUCT"
	ContentTypeReview        ContentType = "REVIEW"
	ContentTypeUserProfile   ContentType = "USER_PROFILE"
	ContentTypeSellerProfile ContentType = "SELLER_PROFILE"
	ContentTypeRegistry      ContentType = "REGISTRY"
)

// Valid сообщает, является ли тип контента известным.
func (t ContentType) Valid() bool {
	switch t {
	case ContentTypeProduct, ContentTypeReview, ContentTypeUserProfile, ContentTypeSellerProfile, ContentTypeRegistry:
		return true
	}
	return false
}

// ReportStatus описывает статус рассмотрения жалобы.
type ReportStatus string

const (
	ReportStatusPending     ReportStatus = "PENDING"
	ReportStatusUnderReview ReportStatus = "UNDER_REVIEW"
	ReportStatusResolved    ReportStatus = "RESOLVED"
	ReportStatusDismissed   ReportStatus = "DISMISSED"
)

// Valid сообщает, является ли статус известным.
func (s ReportStatus) Valid() bool {
	switch s {
	case ReportStatusPending, ReportStatusUnderReview, ReportStatusResolved, ReportStatusDismissed:
		return true
	}
	return false
}

// ContentReport описывает жалобу пользователя на контент.
type ContentReport struct {
	ID             uuid.UUID
	ContentType    ContentType
	ContentID      string
	Reason         string
	Details        *string
	Status         ReportStatus
	ReporterID     uuid.UUID
	ReportedUserID *uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ReportDetails — жалоба вместе со сводками пользователей и историей модерации.
type ReportDetails struct {
	ContentReport
	Reporter     UserSummary
	ReportedUser *UserSummary
	Actions      []ModerationAction
}

// ReportFilter задаёт условия выборки жалоб. Нулевые значения не ограничивают выборку.
type ReportFilter struct {
	Status      ReportStatus
	ContentType ContentType
	From        *time.Time
	To          *time.Time
}
