package sessiondelivery

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/AdinarayanSahu/campus-reads/internal/domain"
	"github.com/AdinarayanSahu/campus-reads/pkg/errorspkg"
	"github.com/AdinarayanSahu/campus-reads/pkg/randompkg"
)

func TestRenewAccessTokenAPI(t *testing.T) {
	refreshToken := randompkg.String(48)
	accessToken := randompkg.String(48)
	accessTokenExpiresAt := time.Now().Add(15 * time.Minute).Truncate(time.Second).UTC()

	testCases := []struct {
		name          string
		requestBody   gin.H
		buildStubs    func(sessionService *MockService)
		checkResponse func(recorder *httptest.ResponseRecorder)
	}{
		{
			name:        "InvalidBindRefreshToken",
			requestBody: gin.H{"refresh_token": ""},
			buildStubs: func(sessionService *MockService) {
				sessionService.EXPECT().RenewAccessToken(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name:        "BlockedSession",
			requestBody: gin.H{"refresh_token": refreshToken},
			buildStubs: func(sessionService *MockService) {
				sessionService.EXPECT().
					RenewAccessToken(gomock.Any(), gomock.Eq(refreshToken)).
					Times(1).
					Return("", time.Time{}, domain.ErrBlockedSession)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusUnauthorized, recorder.Code)
			},
		},
		{
			name:        "ExpiredSession",
			requestBody: gin.H{"refresh_token": refreshToken},
			buildStubs: func(sessionService *MockService) {
				sessionService.EXPECT().
					RenewAccessToken(gomock.Any(), gomock.Eq(refreshToken)).
					Times(1).
					Return("", time.Time{}, domain.ErrExpiredSession)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusUnauthorized, recorder.Code)
			},
		},
		{
			name:        "InternalError",
			requestBody: gin.H{"refresh_token": refreshToken},
			buildStubs: func(sessionService *MockService) {
				sessionService.EXPECT().
					RenewAccessToken(gomock.Any(), gomock.Eq(refreshToken)).
					Times(1).
					Return("", time.Time{}, errorspkg.ErrInternal)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusInternalServerError, recorder.Code)
			},
		},
		{
			name:        "OK",
			requestBody: gin.H{"refresh_token": refreshToken},
			buildStubs: func(sessionService *MockService) {
				sessionService.EXPECT().
					RenewAccessToken(gomock.Any(), gomock.Eq(refreshToken)).
					Times(1).
					Return(accessToken, accessTokenExpiresAt, nil)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)

				var got struct {
					AccessToken          string `json:"access_token"`
					AccessTokenExpiresAt string `json:"access_token_expires_at"`
				}
				require.NoError(t, json.NewDecoder(recorder.Body).Decode(&got))
				require.Equal(t, accessToken, got.AccessToken)
				require.Equal(t, accessTokenExpiresAt.Format(time.RFC3339), got.AccessTokenExpiresAt)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			sessionService := NewMockService(ctrl)
			tc.buildStubs(sessionService)

			sessionHandler := NewHandler(sessionService)

			gin.SetMode(gin.ReleaseMode)
			server := gin.New()
			server.POST("/sessions", sessionHandler.RenewAccessToken)

			data, err := json.Marshal(tc.requestBody)
			require.NoError(t, err)

			request, err := http.NewRequest(http.MethodPost, "/sessions", bytes.NewReader(data))
			require.NoError(t, err)

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, request)
			tc.checkResponse(recorder)
		})
	}
}
