package models

import "time"

// Интервалы списания по тарифу.
const (
	IntervalMonthly = "monthly"
	IntervalYearly  = "yearly"
)

// Plan — тарифный план, на который оформляются подписки.
type Plan struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Interval    string    `json:"interval"`
	Features    []string  `json:"features"`
	TrialDays   int       `json:"trial_days"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DummyPlan используется для приёма тарифа из JSON-запроса.
type DummyPlan struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Price       float64  `json:"price" validate:"gte=0"`
	Interval    string   `json:"interval" validate:"required,oneof=monthly yearly"`
	Features    []string `json:"features" validate:"required"`
	TrialDays   int      `json:"trial_days" validate:"gte=0"`
}

// PlanPatch — частичное обновление тарифа.
type PlanPatch struct {
	Name        *string   `json:"name,omitempty" validate:"omitempty,min=1"`
	Description *string   `json:"description,omitempty"`
	Price       *float64  `json:"price,omitempty" validate:"omitempty,gte=0"`
	Interval    *string   `json:"interval,omitempty" validate:"omitempty,oneof=monthly yearly"`
	Features    *[]string `json:"features,omitempty"`
	TrialDays   *int      `json:"trial_days,omitempty" validate:"omitempty,gte=0"`
}

// Apply переносит заданные поля патча в тариф.
func (p PlanPatch) Apply(plan *Plan) {
	if p.Name != nil {
		plan.Name = *p.Name
	}
	if p.Description != nil {
		plan.Description = *p.Description
	}
	if p.Price != nil {
		plan.Price = *p.Price
	}
	if p.Interval != nil {
		plan.Interval = *p.Interval
	}
	if p.Features != nil {
		plan.Features = *p.Features
	}
	if p.TrialDays != nil {
		plan.TrialDays = *p.TrialDays
	}
}
