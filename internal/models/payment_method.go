package models

import "time"

// PaymentMethod — платёжный метод пользователя. LastFour хранится только для отображения.
type PaymentMethod struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Type      string    `json:"type"`
	LastFour  string    `json:"last_four,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DummyPaymentMethod используется для приёма платёжного метода из JSON-запроса.
type DummyPaymentMethod struct {
	UserID   string `json:"user_id" validate:"required,uuid"`
	Type     string `json:"type" validate:"required,oneof=card paypal bank_transfer"`
	LastFour string `json:"last_four,omitempty" validate:"omitempty,len=4,numeric"`
}

// PaymentMethodPatch — частичное обновление платёжного метода.
type PaymentMethodPatch struct {
	Type     *string `json:"type,omitempty" validate:"omitempty,oneof=card paypal bank_transfer"`
	LastFour *string `json:"last_four,omitempty" validate:"omitempty,len=4,numeric"`
}
