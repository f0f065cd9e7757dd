// Package borrowservice manages business logic layer of the borrow workflow.
package borrowservice

import (
	"context"
	"sort"
	"time"

	"github.com/AdinarayanSahu/campus-reads/internal/bookdelivery"
	"github.com/AdinarayanSahu/campus-reads/internal/domain"
	"github.com/AdinarayanSahu/campus-reads/internal/userdelivery"
)

// Repo provides data access layer interface needed by borrow service layer.
// The mutating methods each run as a single transaction; see borrowrepo.
//
//go:generate mockgen -source service.go -destination service_mock.go -package borrowservice
type Repo interface {
	Submit(ctx context.Context, arg domain.CreateBorrowParams) (domain.BorrowRecord, error)
	Approve(ctx context.Context, id int64) (domain.BorrowRecord, error)
	Reject(ctx context.Context, id int64, reason string) (domain.BorrowRecord, error)
	Return(ctx context.Context, id int64) (domain.BorrowRecord, error)
	Renew(ctx context.Context, id int64, additionalDays *int32) (domain.BorrowRecord, error)
	Get(ctx context.Context, id int64) (domain.BorrowRecord, error)
	MarkOverdue(ctx context.Context, id int64, fineAmount string) (domain.BorrowRecord, error)
	ListAll(ctx context.Context) ([]domain.BorrowRecord, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.BorrowRecord, error)
	ListByBook(ctx context.Context, bookID int64) ([]domain.BorrowRecord, error)
	ListByUserAndStatuses(ctx context.Context, userID int64, statuses ...domain.BorrowStatus) ([]domain.BorrowRecord, error)
	ListByStatuses(ctx context.Context, statuses ...domain.BorrowStatus) ([]domain.BorrowRecord, error)
	ListByStatusDueBefore(ctx context.Context, status domain.BorrowStatus, due time.Time) ([]domain.BorrowRecord, error)
}

// Service facilitates borrow workflow service layer logic.
type Service struct {
	repo        Repo
	userService userdelivery.Service
	bookService bookdelivery.Service
}

// New returns borrow service struct to manage the borrow workflow.
func New(br Repo, us userdelivery.Service, bs bookdelivery.Service) *Service {
	return &Service{
		repo:        br,
		userService: us,
		bookService: bs,
	}
}

// NewBorrowView projects a borrow record with its resolved user and book
// into the read model, deriving the lateness fields for the given
// observation time. Pure function, no persistence access.
func NewBorrowView(rec domain.BorrowRecord, u domain.User, b domain.Book, now time.Time) domain.BorrowView {
	v := domain.BorrowView{
		ID:              rec.ID,
		UserID:          u.ID,
		UserName:        u.Name,
		UserEmail:       u.Email,
		BookID:          b.ID,
		BookTitle:       b.Title,
		BookAuthor:      b.Author,
		BookISBN:        b.ISBN,
		BorrowDate:      rec.BorrowDate,
		DueDate:         rec.DueDate,
		ApprovedDate:    rec.ApprovedDate,
		ReturnDate:      rec.ReturnDate,
		Status:          rec.Status,
		FineAmount:      rec.FineAmount,
		RejectionReason: rec.RejectionReason,
	}

	switch {
	case rec.ReturnDate == nil && now.Before(rec.DueDate):
		v.DaysUntilDue = domain.DaysBetween(now, rec.DueDate)
	case rec.ReturnDate == nil:
		v.IsOverdue = true
		v.DaysOverdue = domain.DaysBetween(rec.DueDate, now)
	case rec.ReturnDate.After(rec.DueDate):
		v.DaysOverdue = domain.DaysBetween(rec.DueDate, *rec.ReturnDate)
	}

	return v
}

// Submit validates the user and the book, then files a PENDING borrow
// request. Availability, duplicate requests and the per-user cap are
// enforced atomically by the repository transaction.
func (s *Service) Submit(ctx context.Context, arg domain.CreateBorrowParams) (domain.BorrowView, error) {
	user, err := s.userService.Get(ctx, arg.UserID)
	if err != nil {
		return domain.BorrowView{}, err
	}

	book, err := s.bookService.Get(ctx, arg.BookID)
	if err != nil {
		return domain.BorrowView{}, err
	}

	rec, err := s.repo.Submit(ctx, arg)
	if err != nil {
		return domain.BorrowView{}, err
	}

	return NewBorrowView(rec, user, book, time.Now()), nil
}

// Approve grants a pending request, reserving one copy of the book.
func (s *Service) Approve(ctx context.Context, id int64) (domain.BorrowView, error) {
	rec, err := s.repo.Approve(ctx, id)
	if err != nil {
		return domain.BorrowView{}, err
	}

	return s.view(ctx, rec)
}

// Reject declines a pending request. When no reason is supplied the default
// librarian message is recorded.
func (s *Service) Reject(ctx context.Context, id int64, reason string) (domain.BorrowView, error) {
	if reason == "" {
		reason = domain.DefaultRejectionReason
	}

	rec, err := s.repo.Reject(ctx, id, reason)
	if err != nil {
		return domain.BorrowView{}, err
	}

	return s.view(ctx, rec)
}

// Return closes an outstanding loan and releases its copy. reportDamage is
// accepted for wire compatibility but drives no rule yet.
func (s *Service) Return(ctx context.Context, id int64, reportDamage bool) (domain.BorrowView, error) {
	_ = reportDamage

	rec, err := s.repo.Return(ctx, id)
	if err != nil {
		return domain.BorrowView{}, err
	}

	return s.view(ctx, rec)
}

// Renew extends an outstanding loan's due date, forgiving any accrued fine.
func (s *Service) Renew(ctx context.Context, id int64, additionalDays *int32) (domain.BorrowView, error) {
	rec, err := s.repo.Renew(ctx, id, additionalDays)
	if err != nil {
		return domain.BorrowView{}, err
	}

	return s.view(ctx, rec)
}

// GetByID returns one record, refreshed for lateness before projection.
func (s *Service) GetByID(ctx context.Context, id int64) (domain.BorrowView, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.BorrowView{}, err
	}

	rec, err = s.refreshOverdue(ctx, rec)
	if err != nil {
		return domain.BorrowView{}, err
	}

	return s.view(ctx, rec)
}

// ListByUser returns the user's full borrow history.
func (s *Service) ListByUser(ctx context.Context, userID int64) ([]domain.BorrowView, error) {
	recs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.views(ctx, recs)
}

// ListActiveByUser returns the user's outstanding loans.
func (s *Service) ListActiveByUser(ctx context.Context, userID int64) ([]domain.BorrowView, error) {
	recs, err := s.repo.ListByUserAndStatuses(ctx, userID, domain.StatusBorrowed, domain.StatusOverdue)
	if err != nil {
		return nil, err
	}

	return s.views(ctx, recs)
}

// ListPendingByUser returns the user's requests awaiting a decision.
func (s *Service) ListPendingByUser(ctx context.Context, userID int64) ([]domain.BorrowView, error) {
	recs, err := s.repo.ListByUserAndStatuses(ctx, userID, domain.StatusPending)
	if err != nil {
		return nil, err
	}

	return s.views(ctx, recs)
}

// ListByBook returns the book's full lending history.
func (s *Service) ListByBook(ctx context.Context, bookID int64) ([]domain.BorrowView, error) {
	recs, err := s.repo.ListByBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	return s.views(ctx, recs)
}

// ListAll returns every borrow record.
func (s *Service) ListAll(ctx context.Context) ([]domain.BorrowView, error) {
	recs, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	return s.views(ctx, recs)
}

// ListActive returns all outstanding loans.
func (s *Service) ListActive(ctx context.Context) ([]domain.BorrowView, error) {
	recs, err := s.repo.ListByStatuses(ctx, domain.StatusBorrowed, domain.StatusOverdue)
	if err != nil {
		return nil, err
	}

	return s.views(ctx, recs)
}

// ListOverdue returns loans past their due date, upgrading freshly lapsed
// ones along the way.
func (s *Service) ListOverdue(ctx context.Context) ([]domain.BorrowView, error) {
	recs, err := s.repo.ListByStatuses(ctx, domain.StatusOverdue)
	if err != nil {
		return nil, err
	}

	lapsed, err := s.repo.ListByStatusDueBefore(ctx, domain.StatusBorrowed, time.Now())
	if err != nil {
		return nil, err
	}

	recs = append(recs, lapsed...)
	sort.Slice(recs, func(i, j int) bool {
		return recs[i].BorrowDate.After(recs[j].BorrowDate)
	})

	return s.views(ctx, recs)
}

// ListPending returns all requests awaiting a librarian decision.
func (s *Service) ListPending(ctx context.Context) ([]domain.BorrowView, error) {
	recs, err := s.repo.ListByStatuses(ctx, domain.StatusPending)
	if err != nil {
		return nil, err
	}

	return s.views(ctx, recs)
}

// refreshOverdue materializes the lazy overdue upgrade before a record is
// surfaced: reads are the only trigger for BORROWED turning OVERDUE, so the
// refreshed state is persisted right here.
func (s *Service) refreshOverdue(ctx context.Context, rec domain.BorrowRecord) (domain.BorrowRecord, error) {
	refreshed, changed := rec.RefreshOverdue(time.Now())
	if !changed {
		return refreshed, nil
	}

	return s.repo.MarkOverdue(ctx, rec.ID, refreshed.FineAmount)
}

func (s *Service) view(ctx context.Context, rec domain.BorrowRecord) (domain.BorrowView, error) {
	user, err := s.userService.Get(ctx, rec.UserID)
	if err != nil {
		return domain.BorrowView{}, err
	}

	book, err := s.bookService.Get(ctx, rec.BookID)
	if err != nil {
		return domain.BorrowView{}, err
	}

	return NewBorrowView(rec, user, book, time.Now()), nil
}

func (s *Service) views(ctx context.Context, recs []domain.BorrowRecord) ([]domain.BorrowView, error) {
	var (
		now   = time.Now()
		users = map[int64]domain.User{}
		books = map[int64]domain.Book{}
		items = make([]domain.BorrowView, 0, len(recs))
	)

	for _, rec := range recs {
		rec, err := s.refreshOverdue(ctx, rec)
		if err != nil {
			return nil, err
		}

		user, ok := users[rec.UserID]
		if !ok {
			user, err = s.userService.Get(ctx, rec.UserID)
			if err != nil {
				return nil, err
			}

			users[rec.UserID] = user
		}

		book, ok := books[rec.BookID]
		if !ok {
			book, err = s.bookService.Get(ctx, rec.BookID)
			if err != nil {
				return nil, err
			}

			books[rec.BookID] = book
		}

		items = append(items, NewBorrowView(rec, user, book, now))
	}

	return items, nil
}
