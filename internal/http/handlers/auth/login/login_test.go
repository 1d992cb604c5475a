package login

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-manager/internal/http/response"
	"github.com/magabrotheeeer/subscription-manager/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-manager/internal/models"
)

type AuthServiceMock struct {
	mock.Mock
}

func (m *AuthServiceMock) Login(ctx context.Context, username, password string) (string, error) {
	args := m.Called(ctx, username, password)
	return args.String(0), args.Error(1)
}

func TestLoginHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		mockToken      string
		mockErr        error
		callService    bool
		wantStatusCode int
		wantToken      string
		wantError      string
	}{
		{
			name:           "valid login",
			body:           `{"username":"user1","password":"password123"}`,
			mockToken:      "tok",
			callService:    true,
			wantStatusCode: http.StatusOK,
			wantToken:      "tok",
		},
		{
			name:           "invalid json",
			body:           "{",
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
		},
		{
			name:           "validation error",
			body:           `{"username":"user1"}`,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "field Password is a required field",
		},
		{
			name:           "wrong credentials",
			body:           `{"username":"user1","password":"nope"}`,
			mockErr:        fmt.Errorf("services.auth.Login: %w", models.ErrInvalidCredentials),
			callService:    true,
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "invalid credentials",
		},
		{
			name:           "service failure",
			body:           `{"username":"user1","password":"password123"}`,
			mockErr:        errors.New("db down"),
			callService:    true,
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "could not log in",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authMock := new(AuthServiceMock)
			if tt.callService {
				var creds models.Credentials
				require.NoError(t, json.Unmarshal([]byte(tt.body), &creds))
				authMock.On("Login", mock.Anything, creds.Username, creds.Password).Return(tt.mockToken, tt.mockErr).Once()
			}

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(tt.body))
			New(sl.Discard(), authMock).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatusCode, w.Code)
			var resp response.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			if tt.wantError != "" {
				assert.Equal(t, response.StatusError, resp.Status)
				assert.Contains(t, resp.Error, tt.wantError)
			} else {
				assert.Equal(t, response.StatusOK, resp.Status)
				data := resp.Data.(map[string]any)
				assert.Equal(t, tt.wantToken, data["token"])
			}
			authMock.AssertExpectations(t)
		})
	}
}
