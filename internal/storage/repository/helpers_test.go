package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-manager/internal/lib/pgtest"
	"github.com/magabrotheeeer/subscription-manager/internal/migrations"
	"github.com/magabrotheeeer/subscription-manager/internal/models"
	"github.com/magabrotheeeer/subscription-manager/internal/subscription"
)

// setupTestDatabase поднимает контейнер PostgreSQL и применяет миграции.
func setupTestDatabase(t *testing.T) *Storage {
	t.Helper()
	storage, err := New(pgtest.Start(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })

	require.NoError(t, migrations.Run(storage.DB, pgtest.MigrationsPath(t)))
	require.NoError(t, CheckDatabaseReady(context.Background(), storage))
	return storage
}

// testDataFactory создаёт связанные сущности для тестов.
type testDataFactory struct {
	t       *testing.T
	storage *Storage
}

func newTestDataFactory(t *testing.T, storage *Storage) *testDataFactory {
	return &testDataFactory{t: t, storage: storage}
}

func (f *testDataFactory) user(username, email string) *models.User {
	u := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: "hashedpassword",
		FirstName:    "Test",
		LastName:     "User",
	}
	require.NoError(f.t, f.storage.RegisterUser(context.Background(), u))
	return u
}

func (f *testDataFactory) plan(name string) *models.Plan {
	p := &models.Plan{
		ID:          uuid.NewString(),
		Name:        name,
		Description: "test plan",
		Price:       9.99,
		Interval:    models.IntervalMonthly,
		Features:    []string{"hd", "offline"},
	}
	require.NoError(f.t, f.storage.CreatePlan(context.Background(), p))
	return p
}

func (f *testDataFactory) subscription(userID, planID string, status subscription.Status,
	endDate *time.Time, notified bool) *models.Subscription {
	sub := &models.Subscription{
		ID:               uuid.NewString(),
		ServiceName:      "Netflix",
		UserID:           userID,
		PlanID:           planID,
		StartDate:        time.Now().UTC().Truncate(time.Microsecond),
		EndDate:          endDate,
		Status:           status,
		NotificationSent: notified,
	}
	require.NoError(f.t, f.storage.CreateSubscription(context.Background(), sub))
	return sub
}

func ptr[T any](v T) *T {
	return &v
}
