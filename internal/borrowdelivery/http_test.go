package borrowdelivery

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/AdinarayanSahu/campus-reads/internal/domain"
	"github.com/AdinarayanSahu/campus-reads/internal/middleware"
	"github.com/AdinarayanSahu/campus-reads/pkg/errorspkg"
	"github.com/AdinarayanSahu/campus-reads/pkg/randompkg"
	"github.com/AdinarayanSahu/campus-reads/pkg/tokenpkg"
)

func randomBorrowView(userID, bookID int64, status domain.BorrowStatus) domain.BorrowView {
	now := time.Now().Truncate(time.Second).UTC()

	return domain.BorrowView{
		ID:           randompkg.Int64Between(1, 1000),
		UserID:       userID,
		UserName:     randompkg.Name(),
		UserEmail:    randompkg.Email(),
		BookID:       bookID,
		BookTitle:    randompkg.String(12),
		BookAuthor:   randompkg.Name(),
		BookISBN:     randompkg.ISBN(),
		BorrowDate:   now,
		DueDate:      now.AddDate(0, 0, domain.DefaultBorrowDays),
		Status:       status,
		FineAmount:   "0",
		DaysUntilDue: int64(domain.DefaultBorrowDays),
	}
}

func newTestServer(t *testing.T, borrowService Service) (*gin.Engine, tokenpkg.Maker) {
	tokenMaker, err := tokenpkg.NewPasetoMaker(randompkg.String(32))
	require.NoError(t, err)

	borrowHandler := NewHandler(borrowService)

	gin.SetMode(gin.ReleaseMode)
	server := gin.New()

	authRoutes := server.Group("/").Use(middleware.AuthMiddleware(tokenMaker))
	authRoutes.POST("/borrows", borrowHandler.Submit)
	authRoutes.GET("/borrows/:id", borrowHandler.Get)
	authRoutes.POST("/borrows/:id/return", borrowHandler.Return)
	authRoutes.POST("/borrows/:id/renew", borrowHandler.Renew)
	authRoutes.GET("/borrows/user/:userId", borrowHandler.ListByUser)

	staffRoutes := server.Group("/").Use(
		middleware.AuthMiddleware(tokenMaker),
		middleware.RequireRoles(domain.RoleLibrarian, domain.RoleAdmin),
	)
	staffRoutes.POST("/borrows/:id/approve", borrowHandler.Approve)
	staffRoutes.POST("/borrows/:id/reject", borrowHandler.Reject)
	staffRoutes.GET("/borrows/overdue", borrowHandler.ListOverdue)

	return server, tokenMaker
}

func requireBodyMatchBorrow(t *testing.T, body *bytes.Buffer, want domain.BorrowView) {
	var got struct {
		Data struct {
			Borrow domain.BorrowView `json:"borrow"`
		} `json:"data"`
	}

	require.NoError(t, json.NewDecoder(body).Decode(&got))
	require.Equal(t, want, got.Data.Borrow)
}

func TestSubmitAPI(t *testing.T) {
	memberID := randompkg.Int64Between(1, 100)
	memberEmail := randompkg.Email()
	bookID := randompkg.Int64Between(1, 100)
	testBorrow := randomBorrowView(memberID, bookID, domain.StatusPending)

	testCases := []struct {
		name          string
		requestBody   gin.H
		setupAuth     func(t *testing.T, request *http.Request, tokenMaker tokenpkg.Maker)
		buildStubs    func(borrowService *MockService)
		checkResponse func(recorder *httptest.ResponseRecorder)
	}{
		{
			name:        "NoAuthorization",
			requestBody: gin.H{"book_id": bookID},
			setupAuth: func(t *testing.T, request *http.Request, tokenMaker tokenpkg.Maker) {
			},
			buildStubs: func(borrowService *MockService) {
				borrowService.EXPECT().Submit(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusUnauthorized, recorder.Code)
			},
		},
		{
			name:        "InvalidBindBookID",
			requestBody: gin.H{"book_id": 0},
			setupAuth: func(t *testing.T, request *http.Request, tokenMaker tokenpkg.Maker) {
				middleware.AddAuthorization(t, request, tokenMaker, middleware.AuthorizationTypeBearer, memberID, memberEmail, domain.RoleUser, time.Minute)
			},
			buildStubs: func(borrowService *MockService) {
				borrowService.EXPECT().Submit(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name:        "InvalidBindBorrowDays",
			requestBody: gin.H{"book_id": bookID, "borrow_days": 0},
			setupAuth: func(t *testing.T, request *http.Request, tokenMaker tokenpkg.Maker) {
				middleware.AddAuthorization(t, request, tokenMaker, middleware.AuthorizationTypeBearer, memberID, memberEmail, domain.RoleUser, time.Minute)
			},
			buildStubs: func(borrowService *MockService) {
				borrowService.EXPECT().Submit(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name:        "BookNotFound",
			requestBody: gin.H{"book_id": bookID},
			setupAuth: func(t *testing.T, request *http.Request, tokenMaker tokenpkg.Maker) {
				middleware.AddAuthorization(t, request, tokenMaker, middleware.AuthorizationTypeBearer, memberID, memberEmail, domain.RoleUser, time.Minute)
			},
			buildStubs: func(borrowService *MockService) {
				borrowService.EXPECT().
					Submit(gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.BorrowView{}, domain.ErrBookNotFound)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusNotFound, recorder.Code)
			},
		},
		{
			name:        "NoAvailableCopies",
			requestBody: gin.H{"book_id": bookID},
			setupAuth: func(t *testing.T, request *http.Request, tokenMaker tokenpkg.Maker) {
				middleware.AddAuthorization(t, request, tokenMaker, middleware.AuthorizationTypeBearer, memberID, memberEmail, domain.RoleUser, time.Minute)
			},
			buildStubs: func(borrowService *MockService) {
				borrowService.EXPECT().
					Submit(gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.BorrowView{}, domain.ErrBookNotAvailable)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusConflict, recorder.Code)
			},
		},
		{
			name:        "BorrowLimitExceeded",
			requestBody: gin.H{"book_id": bookID},
			setupAuth: func(t *testing.T, request *http.Request, tokenMaker tokenpkg.Maker) {
				middleware.AddAuthorization(t, request, tokenMaker, middleware.AuthorizationTypeBearer, memberID, memberEmail, domain.RoleUser, time.Minute)
			},
			buildStubs: func(borrowService *MockService) {
				borrowService.EXPECT().
					Submit(gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.BorrowView{}, domain.ErrBorrowLimitExceeded)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusConflict, recorder.Code)
			},
		},
		{
			name:        "InternalError",
			requestBody: gin.H{"book_id": bookID},
			setupAuth: func(t *testing.T, request *http.Request, tokenMaker tokenpkg.Maker) {
				middleware.AddAuthorization(t, request, tokenMaker, middleware.AuthorizationTypeBearer, memberID, memberEmail, domain.RoleUser, time.Minute)
			},
			buildStubs: func(borrowService *MockService) {
				borrowService.EXPECT().
					Submit(gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.BorrowView{}, errorspkg.ErrInternal)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusInternalServerError, recorder.Code)
			},
		},
		{
			name:        "OK",
			requestBody: gin.H{"book_id": bookID},
			setupAuth: func(t *testing.T, request *http.Request, tokenMaker tokenpkg.Maker) {
				middleware.AddAuthorization(t, request, tokenMaker, middleware.AuthorizationTypeBearer, memberID, memberEmail, domain.RoleUser, time.Minute)
			},
			buildStubs: func(borrowService *MockService) {
				arg := domain.CreateBorrowParams{
					UserID: memberID,
					BookID: bookID,
				}

				borrowService.EXPECT().
					Submit(gomock.Any(), gomock.Eq(arg)).
					Times(1).
					Return(testBorrow, nil)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusCreated, recorder.Code)
				requireBodyMatchBorrow(t, recorder.Body, testBorrow)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			borrowService := NewMockService(ctrl)
			tc.buildStubs(borrowService)

			server, tokenMaker := newTestServer(t, borrowService)

			data, err := json.Marshal(tc.requestBody)
			require.NoError(t, err)

			request, err := http.NewRequest(http.MethodPost, "/borrows", bytes.NewReader(data))
			require.NoError(t, err)

			tc.setupAuth(t, request, tokenMaker)

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, request)
			tc.checkResponse(recorder)
		})
	}
}

func TestApproveAPI(t *testing.T) {
	librarianID := randompkg.Int64Between(1, 100)
	librarianEmail := randompkg.Email()
	testBorrow := randomBorrowView(randompkg.Int64Between(1, 100), randompkg.Int64Between(1, 100), domain.StatusBorrowed)

	testCases := []struct {
		name          string
		recordID      int64
		setupAuth     func(t *testing.T, request *http.Request, tokenMaker tokenpkg.Maker)
		buildStubs    func(borrowService *MockService)
		checkResponse func(recorder *httptest.ResponseRecorder)
	}{
		{
			name:     "MemberForbidden",
			recordID: testBorrow.ID,
			setupAuth: func(t *testing.T, request *http.Request, tokenMaker tokenpkg.Maker) {
				middleware.AddAuthorization(t, request, tokenMaker, middleware.AuthorizationTypeBearer, testBorrow.UserID, testBorrow.UserEmail, domain.RoleUser, time.Minute)
			},
			buildStubs: func(borrowService *MockService) {
				borrowService.EXPECT().Approve(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusForbidden, recorder.Code)
			},
		},
		{
			name:     "InvalidBindID",
			recordID: 0,
			setupAuth: func(t *testing.T, request *http.Request, tokenMaker tokenpkg.Maker) {
				middleware.AddAuthorization(t, request, tokenMaker, middleware.AuthorizationTypeBearer, librarianID, librarianEmail, domain.RoleLibrarian, time.Minute)
			},
			buildStubs: func(borrowService *MockService) {
				borrowService.EXPECT().Approve(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name:     "RecordNotFound",
			recordID: testBorrow.ID,
			setupAuth: func(t *testing.T, request *http.Request, tokenMaker tokenpkg.Maker) {
				middleware.AddAuthorization(t, request, tokenMaker, middleware.AuthorizationTypeBearer, librarianID, librarianEmail, domain.RoleLibrarian, time.Minute)
			},
			buildStubs: func(borrowService *MockService) {
				borrowService.EXPECT().
					Approve(gomock.Any(), gomock.Eq(testBorrow.ID)).
					Times(1).
					Return(domain.BorrowView{}, domain.ErrBorrowRecordNotFound)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusNotFound, recorder.Code)
			},
		},
		{
			name:     "NotPendingRequest",
			recordID: testBorrow.ID,
			setupAuth: func(t *testing.T, request *http.Request, tokenMaker tokenpkg.Maker) {
				middleware.AddAuthorization(t, request, tokenMaker, middleware.AuthorizationTypeBearer, librarianID, librarianEmail, domain.RoleLibrarian, time.Minute)
			},
			buildStubs: func(borrowService *MockService) {
				borrowService.EXPECT().
					Approve(gomock.Any(), gomock.Eq(testBorrow.ID)).
					Times(1).
					Return(domain.BorrowView{}, domain.ErrNotPendingRequest)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusConflict, recorder.Code)
			},
		},
		{
			name:     "LastCopyAlreadyTaken",
			recordID: testBorrow.ID,
			setupAuth: func(t *testing.T, request *http.Request, tokenMaker tokenpkg.Maker) {
				middleware.AddAuthorization(t, request, tokenMaker, middleware.AuthorizationTypeBearer, librarianID, librarianEmail, domain.RoleLibrarian, time.Minute)
			},
			buildStubs: func(borrowService *MockService) {
				borrowService.EXPECT().
					Approve(gomock.Any(), gomock.Eq(testBorrow.ID)).
					Times(1).
					Return(domain.BorrowView{}, domain.ErrBookNotAvailable)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusConflict, recorder.Code)
			},
		},
		{
			name:     "OK",
			recordID: testBorrow.ID,
			setupAuth: func(t *testing.T, request *http.Request, tokenMaker tokenpkg.Maker) {
				middleware.AddAuthorization(t, request, tokenMaker, middleware.AuthorizationTypeBearer, librarianID, librarianEmail, domain.RoleLibrarian, time.Minute)
			},
			buildStubs: func(borrowService *MockService) {
				borrowService.EXPECT().
					Approve(gomock.Any(), gomock.Eq(testBorrow.ID)).
					Times(1).
					Return(testBorrow, nil)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)
				requireBodyMatchBorrow(t, recorder.Body, testBorrow)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			borrowService := NewMockService(ctrl)
			tc.buildStubs(borrowService)

			server, tokenMaker := newTestServer(t, borrowService)

			url := fmt.Sprintf("/borrows/%d/approve", tc.recordID)
			request, err := http.NewRequest(http.MethodPost, url, nil)
			require.NoError(t, err)

			tc.setupAuth(t, request, tokenMaker)

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, request)
			tc.checkResponse(recorder)
		})
	}
}

func TestRejectAPI(t *testing.T) {
	librarianID := randompkg.Int64Between(1, 100)
	librarianEmail := randompkg.Email()
	testBorrow := randomBorrowView(randompkg.Int64Between(1, 100), randompkg.Int64Between(1, 100), domain.StatusRejected)
	testBorrow.RejectionReason = domain.DefaultRejectionReason

	testCases := []struct {
		name          string
		requestBody   gin.H
		buildStubs    func(borrowService *MockService)
		checkResponse func(recorder *httptest.ResponseRecorder)
	}{
		{
			name:        "OKWithoutBody",
			requestBody: nil,
			buildStubs: func(borrowService *MockService) {
				borrowService.EXPECT().
					Reject(gomock.Any(), gomock.Eq(testBorrow.ID), gomock.Eq("")).
					Times(1).
					Return(testBorrow, nil)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)
				requireBodyMatchBorrow(t, recorder.Body, testBorrow)
			},
		},
		{
			name:        "OKWithReason",
			requestBody: gin.H{"reason": "Damaged copy under repair"},
			buildStubs: func(borrowService *MockService) {
				borrowService.EXPECT().
					Reject(gomock.Any(), gomock.Eq(testBorrow.ID), gomock.Eq("Damaged copy under repair")).
					Times(1).
					Return(testBorrow, nil)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)
			},
		},
		{
			name:        "NotPendingRequest",
			requestBody: nil,
			buildStubs: func(borrowService *MockService) {
				borrowService.EXPECT().
					Reject(gomock.Any(), gomock.Eq(testBorrow.ID), gomock.Eq("")).
					Times(1).
					Return(domain.BorrowView{}, domain.ErrNotPendingRequest)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusConflict, recorder.Code)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			borrowService := NewMockService(ctrl)
			tc.buildStubs(borrowService)

			server, tokenMaker := newTestServer(t, borrowService)

			var body *bytes.Reader
			if tc.requestBody != nil {
				data, err := json.Marshal(tc.requestBody)
				require.NoError(t, err)
				body = bytes.NewReader(data)
			} else {
				body = bytes.NewReader(nil)
			}

			url := fmt.Sprintf("/borrows/%d/reject", testBorrow.ID)
			request, err := http.NewRequest(http.MethodPost, url, body)
			require.NoError(t, err)

			middleware.AddAuthorization(t, request, tokenMaker, middleware.AuthorizationTypeBearer, librarianID, librarianEmail, domain.RoleLibrarian, time.Minute)

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, request)
			tc.checkResponse(recorder)
		})
	}
}

func TestReturnAPI(t *testing.T) {
	memberID := randompkg.Int64Between(1, 100)
	memberEmail := randompkg.Email()
	testBorrow := randomBorrowView(memberID, randompkg.Int64Between(1, 100), domain.StatusReturned)

	testCases := []struct {
		name          string
		recordID      int64
		buildStubs    func(borrowService *MockService)
		checkResponse func(recorder *httptest.ResponseRecorder)
	}{
		{
			name:     "InvalidBindID",
			recordID: 0,
			buildStubs: func(borrowService *MockService) {
				borrowService.EXPECT().Return(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name:     "AlreadyReturned",
			recordID: testBorrow.ID,
			buildStubs: func(borrowService *MockService) {
				borrowService.EXPECT().
					Return(gomock.Any(), gomock.Eq(testBorrow.ID), gomock.Eq(false)).
					Times(1).
					Return(domain.BorrowView{}, domain.ErrAlreadyReturned)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusConflict, recorder.Code)
			},
		},
		{
			name:     "NotActiveBorrow",
			recordID: testBorrow.ID,
			buildStubs: func(borrowService *MockService) {
				borrowService.EXPECT().
					Return(gomock.Any(), gomock.Eq(testBorrow.ID), gomock.Eq(false)).
					Times(1).
					Return(domain.BorrowView{}, domain.ErrNotActiveBorrow)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusConflict, recorder.Code)
			},
		},
		{
			name:     "OK",
			recordID: testBorrow.ID,
			buildStubs: func(borrowService *MockService) {
				borrowService.EXPECT().
					Return(gomock.Any(), gomock.Eq(testBorrow.ID), gomock.Eq(false)).
					Times(1).
					Return(testBorrow, nil)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)
				requireBodyMatchBorrow(t, recorder.Body, testBorrow)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			borrowService := NewMockService(ctrl)
			tc.buildStubs(borrowService)

			server, tokenMaker := newTestServer(t, borrowService)

			url := fmt.Sprintf("/borrows/%d/return", tc.recordID)
			request, err := http.NewRequest(http.MethodPost, url, nil)
			require.NoError(t, err)

			middleware.AddAuthorization(t, request, tokenMaker, middleware.AuthorizationTypeBearer, memberID, memberEmail, domain.RoleUser, time.Minute)

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, request)
			tc.checkResponse(recorder)
		})
	}
}

func TestRenewAPI(t *testing.T) {
	memberID := randompkg.Int64Between(1, 100)
	memberEmail := randompkg.Email()
	testBorrow := randomBorrowView(memberID, randompkg.Int64Between(1, 100), domain.StatusBorrowed)
	additionalDays := int32(7)

	testCases := []struct {
		name          string
		requestBody   gin.H
		buildStubs    func(borrowService *MockService)
		checkResponse func(recorder *httptest.ResponseRecorder)
	}{
		{
			name:        "InvalidBindAdditionalDays",
			requestBody: gin.H{"additional_days": 0},
			buildStubs: func(borrowService *MockService) {
				borrowService.EXPECT().Renew(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name:        "NotActiveBorrow",
			requestBody: nil,
			buildStubs: func(borrowService *MockService) {
				borrowService.EXPECT().
					Renew(gomock.Any(), gomock.Eq(testBorrow.ID), gomock.Nil()).
					Times(1).
					Return(domain.BorrowView{}, domain.ErrNotActiveBorrow)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusConflict, recorder.Code)
			},
		},
		{
			name:        "OKDefaultPeriod",
			requestBody: nil,
			buildStubs: func(borrowService *MockService) {
				borrowService.EXPECT().
					Renew(gomock.Any(), gomock.Eq(testBorrow.ID), gomock.Nil()).
					Times(1).
					Return(testBorrow, nil)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)
				requireBodyMatchBorrow(t, recorder.Body, testBorrow)
			},
		},
		{
			name:        "OKCustomPeriod",
			requestBody: gin.H{"additional_days": additionalDays},
			buildStubs: func(borrowService *MockService) {
				borrowService.EXPECT().
					Renew(gomock.Any(), gomock.Eq(testBorrow.ID), gomock.Eq(&additionalDays)).
					Times(1).
					Return(testBorrow, nil)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			borrowService := NewMockService(ctrl)
			tc.buildStubs(borrowService)

			server, tokenMaker := newTestServer(t, borrowService)

			var body *bytes.Reader
			if tc.requestBody != nil {
				data, err := json.Marshal(tc.requestBody)
				require.NoError(t, err)
				body = bytes.NewReader(data)
			} else {
				body = bytes.NewReader(nil)
			}

			url := fmt.Sprintf("/borrows/%d/renew", testBorrow.ID)
			request, err := http.NewRequest(http.MethodPost, url, body)
			require.NoError(t, err)

			middleware.AddAuthorization(t, request, tokenMaker, middleware.AuthorizationTypeBearer, memberID, memberEmail, domain.RoleUser, time.Minute)

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, request)
			tc.checkResponse(recorder)
		})
	}
}

func TestGetBorrowAPI(t *testing.T) {
	memberID := randompkg.Int64Between(1, 100)
	memberEmail := randompkg.Email()
	testBorrow := randomBorrowView(memberID, randompkg.Int64Between(1, 100), domain.StatusBorrowed)

	testCases := []struct {
		name          string
		recordID      int64
		buildStubs    func(borrowService *MockService)
		checkResponse func(recorder *httptest.ResponseRecorder)
	}{
		{
			name:     "InvalidBindID",
			recordID: 0,
			buildStubs: func(borrowService *MockService) {
				borrowService.EXPECT().GetByID(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name:     "NotFound",
			recordID: testBorrow.ID,
			buildStubs: func(borrowService *MockService) {
				borrowService.EXPECT().
					GetByID(gomock.Any(), gomock.Eq(testBorrow.ID)).
					Times(1).
					Return(domain.BorrowView{}, domain.ErrBorrowRecordNotFound)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusNotFound, recorder.Code)
			},
		},
		{
			name:     "OK",
			recordID: testBorrow.ID,
			buildStubs: func(borrowService *MockService) {
				borrowService.EXPECT().
					GetByID(gomock.Any(), gomock.Eq(testBorrow.ID)).
					Times(1).
					Return(testBorrow, nil)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)
				requireBodyMatchBorrow(t, recorder.Body, testBorrow)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			borrowService := NewMockService(ctrl)
			tc.buildStubs(borrowService)

			server, tokenMaker := newTestServer(t, borrowService)

			url := fmt.Sprintf("/borrows/%d", tc.recordID)
			request, err := http.NewRequest(http.MethodGet, url, nil)
			require.NoError(t, err)

			middleware.AddAuthorization(t, request, tokenMaker, middleware.AuthorizationTypeBearer, memberID, memberEmail, domain.RoleUser, time.Minute)

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, request)
			tc.checkResponse(recorder)
		})
	}
}

func TestListByUserAPI(t *testing.T) {
	memberID := randompkg.Int64Between(1, 100)
	memberEmail := randompkg.Email()
	testBorrows := []domain.BorrowView{
		randomBorrowView(memberID, randompkg.Int64Between(1, 100), domain.StatusBorrowed),
		randomBorrowView(memberID, randompkg.Int64Between(1, 100), domain.StatusReturned),
	}

	testCases := []struct {
		name          string
		userID        int64
		buildStubs    func(borrowService *MockService)
		checkResponse func(recorder *httptest.ResponseRecorder)
	}{
		{
			name:   "InvalidBindUserID",
			userID: 0,
			buildStubs: func(borrowService *MockService) {
				borrowService.EXPECT().ListByUser(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name:   "InternalError",
			userID: memberID,
			buildStubs: func(borrowService *MockService) {
				borrowService.EXPECT().
					ListByUser(gomock.Any(), gomock.Eq(memberID)).
					Times(1).
					Return(nil, errorspkg.ErrInternal)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusInternalServerError, recorder.Code)
			},
		},
		{
			name:   "OK",
			userID: memberID,
			buildStubs: func(borrowService *MockService) {
				borrowService.EXPECT().
					ListByUser(gomock.Any(), gomock.Eq(memberID)).
					Times(1).
					Return(testBorrows, nil)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)

				var got struct {
					Data struct {
						Borrows []domain.BorrowView `json:"borrows"`
					} `json:"data"`
				}
				require.NoError(t, json.NewDecoder(recorder.Body).Decode(&got))
				require.Equal(t, testBorrows, got.Data.Borrows)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			borrowService := NewMockService(ctrl)
			tc.buildStubs(borrowService)

			server, tokenMaker := newTestServer(t, borrowService)

			url := fmt.Sprintf("/borrows/user/%d", tc.userID)
			request, err := http.NewRequest(http.MethodGet, url, nil)
			require.NoError(t, err)

			middleware.AddAuthorization(t, request, tokenMaker, middleware.AuthorizationTypeBearer, memberID, memberEmail, domain.RoleUser, time.Minute)

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, request)
			tc.checkResponse(recorder)
		})
	}
}

func TestListOverdueAPI(t *testing.T) {
	librarianID := randompkg.Int64Between(1, 100)
	librarianEmail := randompkg.Email()
	overdue := randomBorrowView(randompkg.Int64Between(1, 100), randompkg.Int64Between(1, 100), domain.StatusOverdue)
	overdue.FineAmount = "30"
	overdue.IsOverdue = true
	overdue.DaysUntilDue = 0
	overdue.DaysOverdue = 3

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	borrowService := NewMockService(ctrl)
	borrowService.EXPECT().
		ListOverdue(gomock.Any()).
		Times(1).
		Return([]domain.BorrowView{overdue}, nil)

	server, tokenMaker := newTestServer(t, borrowService)

	request, err := http.NewRequest(http.MethodGet, "/borrows/overdue", nil)
	require.NoError(t, err)

	middleware.AddAuthorization(t, request, tokenMaker, middleware.AuthorizationTypeBearer, librarianID, librarianEmail, domain.RoleLibrarian, time.Minute)

	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)

	var got struct {
		Data struct {
			Borrows []domain.BorrowView `json:"borrows"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&got))
	require.Equal(t, []domain.BorrowView{overdue}, got.Data.Borrows)
}
