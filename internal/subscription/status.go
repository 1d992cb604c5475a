// Package subscription описывает жизненный цикл подписки: допустимые статусы,
// таблицу переходов между ними и вычисление статуса на момент чтения.
package subscription

import (
	"errors"
	"fmt"
	"time"
)

// Status — статус подписки.
type Status string

// Допустимые статусы подписки.
const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusCanceled Status = "canceled"
	StatusExpired  Status = "expired"
	StatusTrial    Status = "trial"
)

// ErrInvalidTransition возвращается, если переход из текущего статуса запрещён.
var ErrInvalidTransition = errors.New("invalid status transition")

// Valid сообщает, входит ли статус в перечень допустимых.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusCanceled, StatusExpired, StatusTrial:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// Derive возвращает статус, который видит клиент в момент now.
// Активная или пробная подписка с прошедшей датой окончания считается истёкшей.
func Derive(status Status, endDate *time.Time, now time.Time) Status {
	if status != StatusActive && status != StatusTrial {
		return status
	}
	if endDate != nil && now.After(*endDate) {
		return StatusExpired
	}
	return status
}

// InWindow сообщает, попадает ли дата окончания в окно напоминаний (now, now+window].
func InWindow(endDate *time.Time, now time.Time, window time.Duration) bool {
	if endDate == nil {
		return false
	}
	return endDate.After(now) && !endDate.After(now.Add(window))
}

func invalid(action Action, from Status) error {
	return fmt.Errorf("%w: cannot %s subscription in status %q", ErrInvalidTransition, action, from)
}
