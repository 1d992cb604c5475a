package list

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/subscription-manager/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-manager/internal/models"
	"github.com/magabrotheeeer/subscription-manager/internal/subscription"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) List(ctx context.Context, filter models.SubscriptionFilter) ([]*models.Subscription, error) {
	args := m.Called(ctx, filter)
	if res := args.Get(0); res != nil {
		return res.([]*models.Subscription), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestListHandler(t *testing.T) {
	userID := "a1b2c3d4-e5f6-4a7b-8c9d-0e1f2a3b4c5d"
	canceled := subscription.StatusCanceled

	tests := []struct {
		name           string
		query          string
		wantFilter     *models.SubscriptionFilter
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "значения по умолчанию",
			query:          "",
			wantFilter:     &models.SubscriptionFilter{Limit: 10},
			expectedStatus: http.StatusOK,
			expectedBody:   `"list_count":1`,
		},
		{
			name:           "фильтры и пагинация",
			query:          "?limit=500&offset=20&user_id=" + userID + "&status=canceled",
			wantFilter:     &models.SubscriptionFilter{Limit: 100, Offset: 20, UserID: &userID, Status: &canceled},
			expectedStatus: http.StatusOK,
			expectedBody:   `"subscriptions":[`,
		},
		{
			name:           "неизвестный статус",
			query:          "?status=paused",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"invalid status"`,
		},
		{
			name:           "некорректный user_id",
			query:          "?user_id=42",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"invalid user_id"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			if tt.wantFilter != nil {
				mockService.On("List", mock.Anything, *tt.wantFilter).
					Return([]*models.Subscription{{ID: "s1", Status: subscription.StatusActive}}, nil).Once()
			}

			w := httptest.NewRecorder()
			New(sl.Discard(), mockService).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/subscriptions"+tt.query, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
