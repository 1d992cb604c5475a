package subscription

import "slices"

// Action — операция жизненного цикла, инициированная пользователем.
type Action string

// Операции жизненного цикла.
const (
	ActionCancel     Action = "cancel"
	ActionRenew      Action = "renew"
	ActionInactivate Action = "inactivate"
	ActionActivate   Action = "activate"
)

// Transition — переход по операции из одного статуса в другой.
type Transition struct {
	Action Action
	From   Status
}

// transitions — все разрешённые переходы. Переход active -> expired
// не инициируется пользователем и вычисляется в Derive.
var transitions = map[Transition]Status{
	{ActionCancel, StatusActive}:     StatusCanceled,
	{ActionInactivate, StatusActive}: StatusInactive,
	{ActionRenew, StatusCanceled}:    StatusActive,
	{ActionRenew, StatusExpired}:     StatusActive,
	{ActionActivate, StatusInactive}: StatusActive,
	{ActionActivate, StatusTrial}:    StatusActive,
}

// Valid сообщает, известна ли операция.
func (a Action) Valid() bool {
	switch a {
	case ActionCancel, ActionRenew, ActionInactivate, ActionActivate:
		return true
	}
	return false
}

// Apply возвращает статус после операции или ErrInvalidTransition.
func Apply(action Action, from Status) (Status, error) {
	to, ok := transitions[Transition{action, from}]
	if !ok {
		return from, invalid(action, from)
	}
	return to, nil
}

// CanTransition сообщает, ведёт ли какая-либо операция из from в to.
func CanTransition(from, to Status) bool {
	for t, target := range transitions {
		if t.From == from && target == to {
			return true
		}
	}
	return false
}

// AllowedActions возвращает операции, доступные из статуса, в стабильном порядке.
func AllowedActions(from Status) []Action {
	actions := make([]Action, 0, 2)
	for t := range transitions {
		if t.From == from {
			actions = append(actions, t.Action)
		}
	}
	slices.Sort(actions)
	return actions
}

// Cancel разрешён только из active.
func Cancel(from Status) (Status, error) { return Apply(ActionCancel, from) }

// Renew разрешён из canceled и expired.
func Renew(from Status) (Status, error) { return Apply(ActionRenew, from) }

// Inactivate разрешён только из active.
func Inactivate(from Status) (Status, error) { return Apply(ActionInactivate, from) }

// Activate разрешён из inactive и trial.
func Activate(from Status) (Status, error) { return Apply(ActionActivate, from) }
