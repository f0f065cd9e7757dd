// Package borrowdelivery manages delivery layer of the borrow workflow.
package borrowdelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/AdinarayanSahu/campus-reads/internal/domain"
	"github.com/AdinarayanSahu/campus-reads/internal/middleware"
	"github.com/AdinarayanSahu/campus-reads/pkg/errorspkg"
	"github.com/AdinarayanSahu/campus-reads/pkg/tokenpkg"
	"github.com/AdinarayanSahu/campus-reads/pkg/web"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Service provides service layer interface needed by borrow delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package borrowdelivery
type Service interface {
	Submit(ctx context.Context, arg domain.CreateBorrowParams) (domain.BorrowView, error)
	Approve(ctx context.Context, id int64) (domain.BorrowView, error)
	Reject(ctx context.Context, id int64, reason string) (domain.BorrowView, error)
	Return(ctx context.Context, id int64, reportDamage bool) (domain.BorrowView, error)
	Renew(ctx context.Context, id int64, additionalDays *int32) (domain.BorrowView, error)
	GetByID(ctx context.Context, id int64) (domain.BorrowView, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.BorrowView, error)
	ListActiveByUser(ctx context.Context, userID int64) ([]domain.BorrowView, error)
	ListPendingByUser(ctx context.Context, userID int64) ([]domain.BorrowView, error)
	ListByBook(ctx context.Context, bookID int64) ([]domain.BorrowView, error)
	ListAll(ctx context.Context) ([]domain.BorrowView, error)
	ListActive(ctx context.Context) ([]domain.BorrowView, error)
	ListOverdue(ctx context.Context) ([]domain.BorrowView, error)
	ListPending(ctx context.Context) ([]domain.BorrowView, error)
}

// Handler facilitates borrow workflow delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns borrow handler.
func NewHandler(bs Service) *Handler {
	return &Handler{service: bs}
}

type borrowData struct {
	Borrow domain.BorrowView `json:"borrow"`
}

type borrowsData struct {
	Borrows []domain.BorrowView `json:"borrows"`
}

// respondWorkflowError maps borrow workflow errors onto http statuses.
func respondWorkflowError(gctx *gin.Context, err error) {
	switch err {
	case domain.ErrUserNotFound,
		domain.ErrBookNotFound,
		domain.ErrBorrowRecordNotFound:
		gctx.JSON(http.StatusNotFound, web.Error(err))
	case domain.ErrBookNotAvailable,
		domain.ErrPendingRequestExists,
		domain.ErrBookAlreadyBorrowed,
		domain.ErrBorrowLimitExceeded,
		domain.ErrNotPendingRequest,
		domain.ErrAlreadyReturned,
		domain.ErrNotActiveBorrow:
		gctx.JSON(http.StatusConflict, web.Error(err))
	default:
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
	}
}

type submitRequest struct {
	BookID     int64  `json:"book_id" binding:"required,min=1"`
	BorrowDays *int32 `json:"borrow_days" binding:"omitempty,gte=1"`
}

// Submit handles http request to file a borrow request for the
// authenticated user.
func (h *Handler) Submit(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req submitRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()

		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			gctx.JSON(http.StatusBadRequest, web.Response{Error: web.GetErrorMsg(ve)})
			return
		}

		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	borrow, err := h.service.Submit(ctx, domain.CreateBorrowParams{
		UserID:     authPayload.UserID,
		BookID:     req.BookID,
		BorrowDays: req.BorrowDays,
	})
	if err != nil {
		respondWorkflowError(gctx, err)
		return
	}

	gctx.JSON(http.StatusCreated, web.Response{Data: borrowData{Borrow: borrow}})
}

type recordIDRequest struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

// Approve handles http request to grant a pending borrow request.
func (h *Handler) Approve(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req recordIDRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	borrow, err := h.service.Approve(ctx, req.ID)
	if err != nil {
		respondWorkflowError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: borrowData{Borrow: borrow}})
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

// Reject handles http request to decline a pending borrow request.
func (h *Handler) Reject(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var uri recordIDRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	// Body is optional: rejecting without a reason records the default one.
	var req rejectRequest
	if gctx.Request.ContentLength > 0 {
		if err := gctx.ShouldBindJSON(&req); err != nil {
			l.Info().Err(err).Send()
			gctx.JSON(http.StatusBadRequest, web.Error(err))

			return
		}
	}

	borrow, err := h.service.Reject(ctx, uri.ID, req.Reason)
	if err != nil {
		respondWorkflowError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: borrowData{Borrow: borrow}})
}

type returnRequest struct {
	ReportDamage bool `json:"report_damage"`
}

// Return handles http request to close an outstanding loan.
func (h *Handler) Return(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var uri recordIDRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	var req returnRequest
	if gctx.Request.ContentLength > 0 {
		if err := gctx.ShouldBindJSON(&req); err != nil {
			l.Info().Err(err).Send()
			gctx.JSON(http.StatusBadRequest, web.Error(err))

			return
		}
	}

	borrow, err := h.service.Return(ctx, uri.ID, req.ReportDamage)
	if err != nil {
		respondWorkflowError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: borrowData{Borrow: borrow}})
}

type renewRequest struct {
	AdditionalDays *int32 `json:"additional_days" binding:"omitempty,gte=1"`
}

// Renew handles http request to extend an outstanding loan.
func (h *Handler) Renew(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var uri recordIDRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	var req renewRequest
	if gctx.Request.ContentLength > 0 {
		if err := gctx.ShouldBindJSON(&req); err != nil {
			l.Info().Err(err).Send()

			var ve validator.ValidationErrors
			if errors.As(err, &ve) {
				gctx.JSON(http.StatusBadRequest, web.Response{Error: web.GetErrorMsg(ve)})
				return
			}

			gctx.JSON(http.StatusBadRequest, web.Error(err))

			return
		}
	}

	borrow, err := h.service.Renew(ctx, uri.ID, req.AdditionalDays)
	if err != nil {
		respondWorkflowError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: borrowData{Borrow: borrow}})
}

// Get handles http request to fetch one borrow record.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req recordIDRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	borrow, err := h.service.GetByID(ctx, req.ID)
	if err != nil {
		respondWorkflowError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: borrowData{Borrow: borrow}})
}

type userIDRequest struct {
	UserID int64 `uri:"userId" binding:"required,min=1"`
}

// ListByUser handles http request to list a user's borrow history.
func (h *Handler) ListByUser(gctx *gin.Context) {
	h.listForUser(gctx, h.service.ListByUser)
}

// ListActiveByUser handles http request to list a user's outstanding loans.
func (h *Handler) ListActiveByUser(gctx *gin.Context) {
	h.listForUser(gctx, h.service.ListActiveByUser)
}

// ListPendingByUser handles http request to list a user's pending requests.
func (h *Handler) ListPendingByUser(gctx *gin.Context) {
	h.listForUser(gctx, h.service.ListPendingByUser)
}

func (h *Handler) listForUser(gctx *gin.Context, list func(context.Context, int64) ([]domain.BorrowView, error)) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req userIDRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	borrows, err := list(ctx, req.UserID)
	if err != nil {
		respondWorkflowError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: borrowsData{Borrows: borrows}})
}

type bookIDRequest struct {
	BookID int64 `uri:"bookId" binding:"required,min=1"`
}

// ListByBook handles http request to list a book's lending history.
func (h *Handler) ListByBook(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req bookIDRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	borrows, err := h.service.ListByBook(ctx, req.BookID)
	if err != nil {
		respondWorkflowError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: borrowsData{Borrows: borrows}})
}

// ListAll handles http request to list every borrow record.
func (h *Handler) ListAll(gctx *gin.Context) {
	h.list(gctx, h.service.ListAll)
}

// ListActive handles http request to list all outstanding loans.
func (h *Handler) ListActive(gctx *gin.Context) {
	h.list(gctx, h.service.ListActive)
}

// ListOverdue handles http request to list loans past their due date.
func (h *Handler) ListOverdue(gctx *gin.Context) {
	h.list(gctx, h.service.ListOverdue)
}

// ListPending handles http request to list requests awaiting a decision.
func (h *Handler) ListPending(gctx *gin.Context) {
	h.list(gctx, h.service.ListPending)
}

func (h *Handler) list(gctx *gin.Context, list func(context.Context) ([]domain.BorrowView, error)) {
	ctx := gctx.Request.Context()

	borrows, err := list(ctx)
	if err != nil {
		respondWorkflowError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: borrowsData{Borrows: borrows}})
}
