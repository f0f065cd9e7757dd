// Package bookservice manages business logic layer of books.
package bookservice

import (
	"context"

	"github.com/AdinarayanSahu/campus-reads/internal/domain"
)

// Repo provides data access layer interface needed by book service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package bookservice
type Repo interface {
	Create(ctx context.Context, arg domain.CreateBookParams) (domain.Book, error)
	Get(ctx context.Context, id int64) (domain.Book, error)
	Update(ctx context.Context, id int64, arg domain.CreateBookParams) (domain.Book, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]domain.Book, error)
	SearchByTitle(ctx context.Context, title string) ([]domain.Book, error)
	SearchByAuthor(ctx context.Context, author string) ([]domain.Book, error)
	ListByCategory(ctx context.Context, category string) ([]domain.Book, error)
}

// Service facilitates book service layer logic.
type Service struct {
	repo Repo
}

// New returns book service struct to manage book business logic.
func New(br Repo) *Service {
	return &Service{repo: br}
}

// Create adds a book to the catalog. When available copies are not supplied
// the whole stock starts available.
func (s *Service) Create(ctx context.Context, arg domain.CreateBookParams, availableSupplied bool) (domain.Book, error) {
	if !availableSupplied {
		arg.AvailableCopies = arg.TotalCopies
	}

	return s.repo.Create(ctx, arg)
}

// Get returns the book with the given id.
func (s *Service) Get(ctx context.Context, id int64) (domain.Book, error) {
	return s.repo.Get(ctx, id)
}

// Update replaces the book's catalog fields and returns the changed book.
func (s *Service) Update(ctx context.Context, id int64, arg domain.CreateBookParams) (domain.Book, error) {
	return s.repo.Update(ctx, id, arg)
}

// Delete removes the book with the given id. Books with any borrow history
// cannot be deleted; the ledger is the audit trail.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// List returns all catalog books.
func (s *Service) List(ctx context.Context) ([]domain.Book, error) {
	return s.repo.List(ctx)
}

// SearchByTitle returns books whose title contains the given text.
func (s *Service) SearchByTitle(ctx context.Context, title string) ([]domain.Book, error) {
	return s.repo.SearchByTitle(ctx, title)
}

// SearchByAuthor returns books whose author contains the given text.
func (s *Service) SearchByAuthor(ctx context.Context, author string) ([]domain.Book, error) {
	return s.repo.SearchByAuthor(ctx, author)
}

// ListByCategory returns books in the given category.
func (s *Service) ListByCategory(ctx context.Context, category string) ([]domain.Book, error) {
	return s.repo.ListByCategory(ctx, category)
}
