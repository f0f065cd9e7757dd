// Package bookdelivery manages delivery layer of books.
package bookdelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/AdinarayanSahu/campus-reads/internal/domain"
	"github.com/AdinarayanSahu/campus-reads/pkg/errorspkg"
	"github.com/AdinarayanSahu/campus-reads/pkg/web"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Service provides service layer interface needed by book delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package bookdelivery
type Service interface {
	Create(ctx context.Context, arg domain.CreateBookParams, availableSupplied bool) (domain.Book, error)
	Get(ctx context.Context, id int64) (domain.Book, error)
	Update(ctx context.Context, id int64, arg domain.CreateBookParams) (domain.Book, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]domain.Book, error)
	SearchByTitle(ctx context.Context, title string) ([]domain.Book, error)
	SearchByAuthor(ctx context.Context, author string) ([]domain.Book, error)
	ListByCategory(ctx context.Context, category string) ([]domain.Book, error)
}

// Handler facilitates book delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns book handler.
func NewHandler(bs Service) *Handler {
	return &Handler{service: bs}
}

type bookData struct {
	Book domain.Book `json:"book"`
}

type booksData struct {
	Books []domain.Book `json:"books"`
}

type createBookRequest struct {
	Title           string `json:"title" binding:"required"`
	Author          string `json:"author" binding:"required"`
	ISBN            string `json:"isbn" binding:"required"`
	Category        string `json:"category" binding:"required"`
	TotalCopies     int32  `json:"total_copies" binding:"required,gte=1"`
	AvailableCopies *int32 `json:"available_copies" binding:"omitempty,gte=0"`
	CoverImage      string `json:"cover_image"`
}

func (req createBookRequest) params() (domain.CreateBookParams, bool) {
	arg := domain.CreateBookParams{
		Title:       req.Title,
		Author:      req.Author,
		ISBN:        req.ISBN,
		Category:    req.Category,
		TotalCopies: req.TotalCopies,
		CoverImage:  req.CoverImage,
	}

	if req.AvailableCopies == nil {
		return arg, false
	}

	arg.AvailableCopies = *req.AvailableCopies

	return arg, true
}

// Create handles http request to add a book to the catalog.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req createBookRequest
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

	arg, availableSupplied := req.params()

	book, err := h.service.Create(ctx, arg, availableSupplied)
	if err != nil {
		if err == domain.ErrISBNAlreadyExists {
			gctx.JSON(http.StatusConflict, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusCreated, web.Response{Data: bookData{Book: book}})
}

type bookIDRequest struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

// Get handles http request to get one book.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req bookIDRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	book, err := h.service.Get(ctx, req.ID)
	if err != nil {
		if err == domain.ErrBookNotFound {
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: bookData{Book: book}})
}

// Update handles http request to replace a book's catalog fields.
func (h *Handler) Update(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var uri bookIDRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	var req createBookRequest
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

	arg, _ := req.params()

	book, err := h.service.Update(ctx, uri.ID, arg)
	if err != nil {
		switch err {
		case domain.ErrBookNotFound:
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		case domain.ErrISBNAlreadyExists:
			gctx.JSON(http.StatusConflict, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: bookData{Book: book}})
}

// Delete handles http request to remove a book from the catalog.
func (h *Handler) Delete(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req bookIDRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	if err := h.service.Delete(ctx, req.ID); err != nil {
		switch err {
		case domain.ErrBookNotFound:
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		case domain.ErrBookHasBorrowHistory:
			gctx.JSON(http.StatusConflict, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: gin.H{"deleted": req.ID}})
}

type searchRequest struct {
	Title    string `form:"title"`
	Author   string `form:"author"`
	Category string `form:"category"`
}

// List handles http request to list the catalog, optionally filtered by
// title, author or category query parameters.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req searchRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	var (
		books []domain.Book
		err   error
	)

	switch {
	case req.Title != "":
		books, err = h.service.SearchByTitle(ctx, req.Title)
	case req.Author != "":
		books, err = h.service.SearchByAuthor(ctx, req.Author)
	case req.Category != "":
		books, err = h.service.ListByCategory(ctx, req.Category)
	default:
		books, err = h.service.List(ctx)
	}

	if err != nil {
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: booksData{Books: books}})
}
