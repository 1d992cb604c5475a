package models

import "time"

// Статусы уведомления.
const (
	NotificationPending = "pending"
	NotificationSent    = "sent"
)

// Notification — сохранённое уведомление пользователю.
type Notification struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	SubscriptionID *string   `json:"subscription_id,omitempty"`
	Message        string    `json:"message"`
	DeliveryDate   time.Time `json:"delivery_date"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// DummyNotification используется для приёма уведомления из JSON-запроса.
type DummyNotification struct {
	UserID         string    `json:"user_id" validate:"required,uuid"`
	SubscriptionID *string   `json:"subscription_id,omitempty" validate:"omitempty,uuid"`
	Message        string    `json:"message" validate:"required"`
	DeliveryDate   time.Time `json:"delivery_date" validate:"required"`
}
