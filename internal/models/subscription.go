// Package models содержит доменные структуры сервиса подписок,
// а также вспомогательные типы для приёма данных из JSON-запросов.
package models

import (
	"time"

	"github.com/magabrotheeeer/subscription-manager/internal/subscription"
)

// Subscription представляет подписку пользователя на сервис.
// EndDate может быть nil — это означает бессрочную подписку.
type Subscription struct {
	ID               string              `json:"id"`
	ServiceName      string              `json:"service_name"`
	UserID           string              `json:"user_id"`
	PlanID           string              `json:"plan_id"`
	PaymentMethodID  *string             `json:"payment_method_id,omitempty"`
	StartDate        time.Time           `json:"start_date"`
	EndDate          *time.Time          `json:"end_date,omitempty"`
	Status           subscription.Status `json:"status"`
	NotificationSent bool                `json:"notification_sent"`
	Version          int                 `json:"version"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// DummySubscription используется для приёма данных из JSON-запроса на создание подписки.
type DummySubscription struct {
	ServiceName     string     `json:"service_name" validate:"required,excludesall=\r\n"`
	UserID          string     `json:"user_id" validate:"required,uuid"`
	PlanID          string     `json:"plan_id" validate:"required,uuid"`
	PaymentMethodID *string    `json:"payment_method_id,omitempty" validate:"omitempty,uuid"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	StartTrial      bool       `json:"start_trial,omitempty"`
}

// SubscriptionPatch — административное изменение полей подписки.
// Nil-поля не изменяются. Статус меняется без проверки правил переходов.
type SubscriptionPatch struct {
	ServiceName      *string              `json:"service_name,omitempty" validate:"omitempty,min=1,excludesall=\r\n"`
	PlanID           *string              `json:"plan_id,omitempty" validate:"omitempty,uuid"`
	PaymentMethodID  *string              `json:"payment_method_id,omitempty" validate:"omitempty,uuid"`
	EndDate          *time.Time           `json:"end_date,omitempty"`
	Status           *subscription.Status `json:"status,omitempty"`
	NotificationSent *bool                `json:"notification_sent,omitempty"`
}

// Apply переносит заданные поля патча в подписку.
func (p SubscriptionPatch) Apply(sub *Subscription) {
	if p.ServiceName != nil {
		sub.ServiceName = *p.ServiceName
	}
	if p.PlanID != nil {
		sub.PlanID = *p.PlanID
	}
	if p.PaymentMethodID != nil {
		sub.PaymentMethodID = p.PaymentMethodID
	}
	if p.EndDate != nil {
		sub.EndDate = p.EndDate
	}
	if p.Status != nil {
		sub.Status = *p.Status
	}
	if p.NotificationSent != nil {
		sub.NotificationSent = *p.NotificationSent
	}
}

// SubscriptionFilter задаёт параметры выборки списка подписок.
type SubscriptionFilter struct {
	UserID *string
	// Status сравнивается с выведенным статусом на момент Now.
	Status *subscription.Status
	Now    time.Time
	Limit  int
	Offset int
}

// ExpiringSubscription — подписка из окна напоминаний вместе с email владельца.
type ExpiringSubscription struct {
	ID          string    `json:"id"`
	ServiceName string    `json:"service_name"`
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	EndDate     time.Time `json:"end_date"`
}

// StatusChange — условная смена статуса. Применяется, только если запись
// всё ещё находится в статусе From с версией Version.
type StatusChange struct {
	ID      string
	From    subscription.Status
	Version int
	To      subscription.Status
	// EndDate, если задан, заменяет дату окончания и сбрасывает флаг напоминания.
	EndDate *time.Time
}
