package paymentmethods

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-manager/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-manager/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreatePaymentMethod(ctx context.Context, pm *models.PaymentMethod) error {
	return m.Called(ctx, pm).Error(0)
}

func (m *RepoMock) GetPaymentMethod(ctx context.Context, id string) (*models.PaymentMethod, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentMethod), args.Error(1)
}

func (m *RepoMock) ListPaymentMethods(ctx context.Context, userID string) ([]*models.PaymentMethod, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PaymentMethod), args.Error(1)
}

func (m *RepoMock) UpdatePaymentMethod(ctx context.Context, pm *models.PaymentMethod) error {
	return m.Called(ctx, pm).Error(0)
}

func (m *RepoMock) DeletePaymentMethod(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func TestPaymentMethodsService_Create(t *testing.T) {
	ctx := context.Background()
	req := models.DummyPaymentMethod{UserID: "u1", Type: "card", LastFour: "4242"}

	tests := []struct {
		name    string
		repoErr error
		wantErr error
	}{
		{name: "success"},
		{name: "unknown user", repoErr: models.ErrNotFound, wantErr: models.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			repo.On("CreatePaymentMethod", ctx, mock.MatchedBy(func(pm *models.PaymentMethod) bool {
				return pm.ID != "" && pm.UserID == "u1" && pm.LastFour == "4242"
			})).Return(tt.repoErr).Once()

			got, err := NewPaymentMethodsService(repo, sl.Discard()).Create(ctx, req)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "card", got.Type)
			repo.AssertExpectations(t)
		})
	}
}

func TestPaymentMethodsService_Update(t *testing.T) {
	ctx := context.Background()
	paypal := "paypal"
	repo := new(RepoMock)
	repo.On("GetPaymentMethod", ctx, "pm1").Return(&models.PaymentMethod{ID: "pm1", Type: "card", LastFour: "4242"}, nil)
	repo.On("UpdatePaymentMethod", ctx, mock.MatchedBy(func(pm *models.PaymentMethod) bool {
		return pm.Type == "paypal" && pm.LastFour == "4242"
	})).Return(nil).Once()

	got, err := NewPaymentMethodsService(repo, sl.Discard()).Update(ctx, "pm1", models.PaymentMethodPatch{Type: &paypal})
	require.NoError(t, err)
	assert.Equal(t, "paypal", got.Type)
	repo.AssertExpectations(t)
}

func TestPaymentMethodsService_ListGetDelete(t *testing.T) {
	ctx := context.Background()
	repo := new(RepoMock)
	repo.On("ListPaymentMethods", ctx, "").Return([]*models.PaymentMethod{{ID: "pm1"}, {ID: "pm2"}}, nil)
	repo.On("GetPaymentMethod", ctx, "missing").Return(nil, models.ErrNotFound)
	repo.On("DeletePaymentMethod", ctx, "pm1").Return(nil)
	svc := NewPaymentMethodsService(repo, sl.Discard())

	list, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = svc.Get(ctx, "missing")
	require.ErrorIs(t, err, models.ErrNotFound)

	require.NoError(t, svc.Delete(ctx, "pm1"))
}
