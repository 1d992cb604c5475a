package subscription

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerive(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name    string
		status  Status
		endDate *time.Time
		want    Status
	}{
		{name: "active with past end date expires", status: StatusActive, endDate: &past, want: StatusExpired},
		{name: "active with future end date stays active", status: StatusActive, endDate: &future, want: StatusActive},
		{name: "active without end date stays active", status: StatusActive, endDate: nil, want: StatusActive},
		{name: "trial with past end date expires", status: StatusTrial, endDate: &past, want: StatusExpired},
		{name: "canceled is never derived", status: StatusCanceled, endDate: &past, want: StatusCanceled},
		{name: "inactive is never derived", status: StatusInactive, endDate: &past, want: StatusInactive},
		{name: "end date equal to now is not expired", status: StatusActive, endDate: &now, want: StatusActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Derive(tt.status, tt.endDate, now))
		})
	}
}

func TestApply(t *testing.T) {
	all := []Status{StatusActive, StatusInactive, StatusCanceled, StatusExpired, StatusTrial}
	allowed := map[Action]map[Status]Status{
		ActionCancel:     {StatusActive: StatusCanceled},
		ActionInactivate: {StatusActive: StatusInactive},
		ActionRenew:      {StatusCanceled: StatusActive, StatusExpired: StatusActive},
		ActionActivate:   {StatusInactive: StatusActive, StatusTrial: StatusActive},
	}

	for action, from := range allowed {
		for _, status := range all {
			to, ok := from[status]
			got, err := Apply(action, status)
			if ok {
				require.NoError(t, err, "%s from %s", action, status)
				assert.Equal(t, to, got)
				continue
			}
			require.ErrorIs(t, err, ErrInvalidTransition, "%s from %s", action, status)
			assert.Equal(t, status, got, "status must stay unchanged")
		}
	}
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusActive, StatusCanceled))
	assert.True(t, CanTransition(StatusExpired, StatusActive))
	assert.True(t, CanTransition(StatusInactive, StatusActive))
	assert.False(t, CanTransition(StatusCanceled, StatusInactive))
	assert.False(t, CanTransition(StatusActive, StatusExpired))
}

func TestAllowedActions(t *testing.T) {
	assert.Equal(t, []Action{ActionCancel, ActionInactivate}, AllowedActions(StatusActive))
	assert.Equal(t, []Action{ActionRenew}, AllowedActions(StatusCanceled))
	assert.Empty(t, AllowedActions(Status("unknown")))
}

func TestInWindow(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	window := 72 * time.Hour
	in2d := now.Add(48 * time.Hour)
	in10d := now.Add(240 * time.Hour)
	edge := now.Add(window)
	past := now.Add(-time.Minute)

	assert.True(t, InWindow(&in2d, now, window))
	assert.True(t, InWindow(&edge, now, window))
	assert.False(t, InWindow(&in10d, now, window))
	assert.False(t, InWindow(&past, now, window))
	assert.False(t, InWindow(&now, now, window))
	assert.False(t, InWindow(nil, now, window))
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusTrial.Valid())
	assert.False(t, Status("paused").Valid())
	assert.True(t, ActionRenew.Valid())
	assert.False(t, Action("pause").Valid())
}

func TestNamedTransitions(t *testing.T) {
	tests := []struct {
		name    string
		fn      func(Status) (Status, error)
		from    Status
		want    Status
		wantErr bool
	}{
		{name: "cancel active", fn: Cancel, from: StatusActive, want: StatusCanceled},
		{name: "cancel inactive", fn: Cancel, from: StatusInactive, want: StatusInactive, wantErr: true},
		{name: "cancel trial", fn: Cancel, from: StatusTrial, want: StatusTrial, wantErr: true},
		{name: "renew canceled", fn: Renew, from: StatusCanceled, want: StatusActive},
		{name: "renew expired", fn: Renew, from: StatusExpired, want: StatusActive},
		{name: "renew active", fn: Renew, from: StatusActive, want: StatusActive, wantErr: true},
		{name: "renew inactive", fn: Renew, from: StatusInactive, want: StatusInactive, wantErr: true},
		{name: "inactivate active", fn: Inactivate, from: StatusActive, want: StatusInactive},
		{name: "inactivate expired", fn: Inactivate, from: StatusExpired, want: StatusExpired, wantErr: true},
		{name: "activate inactive", fn: Activate, from: StatusInactive, want: StatusActive},
		{name: "activate trial", fn: Activate, from: StatusTrial, want: StatusActive},
		{name: "activate canceled", fn: Activate, from: StatusCanceled, want: StatusCanceled, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fn(tt.from)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTransition)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
