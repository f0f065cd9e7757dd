package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrBorrowRecordNotFound indicates that the borrow record is not found.
	ErrBorrowRecordNotFound = errors.New("borrow record not found")
	// ErrPendingRequestExists indicates an existing pending request for the same user and book.
	ErrPendingRequestExists = errors.New("you already have a pending request for this book")
	// ErrBookAlreadyBorrowed indicates an outstanding loan for the same user and book.
	ErrBookAlreadyBorrowed = errors.New("you have already borrowed this book")
	// ErrBorrowLimitExceeded indicates that the user reached the per-user cap of loans plus pending requests.
	ErrBorrowLimitExceeded = errors.New("maximum limit of books reached, including pending requests")
	// ErrNotPendingRequest indicates that the record is past the librarian decision step.
	ErrNotPendingRequest = errors.New("only pending requests can be approved or rejected")
	// ErrAlreadyReturned indicates that the book has already been returned.
	ErrAlreadyReturned = errors.New("book has already been returned")
	// ErrNotActiveBorrow indicates that the record does not hold an outstanding loan.
	ErrNotActiveBorrow = errors.New("only active borrows can be returned or renewed")
)

// BorrowStatus is the lifecycle state of a borrow record.
type BorrowStatus string

// Borrow record lifecycle states. StatusLost is terminal and assigned
// outside the workflow, never by it.
const (
	StatusPending  BorrowStatus = "PENDING"
	StatusBorrowed BorrowStatus = "BORROWED"
	StatusOverdue  BorrowStatus = "OVERDUE"
	StatusReturned BorrowStatus = "RETURNED"
	StatusRejected BorrowStatus = "REJECTED"
	StatusLost     BorrowStatus = "LOST"
)

// Lending policy constants.
const (
	// DefaultBorrowDays is the loan period applied when the request does not name one.
	DefaultBorrowDays = 14
	// MaxBooksPerUser caps outstanding loans plus pending requests per user.
	MaxBooksPerUser = 5
)

// FinePerDay is the fine accrued per whole day past the due date.
var FinePerDay = decimal.NewFromInt(10)

// DefaultRejectionReason is recorded when a librarian rejects without a reason.
const DefaultRejectionReason = "Request rejected by librarian"

// BorrowRecord is one ledger entry tracking a single request through its
// whole lifecycle. User and book references never change after creation.
type BorrowRecord struct {
	ID              int64        `json:"id"`
	UserID          int64        `json:"user_id"`
	BookID          int64        `json:"book_id"`
	BorrowDate      time.Time    `json:"borrow_date"`
	DueDate         time.Time    `json:"due_date"`
	ApprovedDate    *time.Time   `json:"approved_date,omitempty"`
	ReturnDate      *time.Time   `json:"return_date,omitempty"`
	Status          BorrowStatus `json:"status"`
	FineAmount      string       `json:"fine_amount"`
	RejectionReason string       `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time    `json:"created_at,omitempty"`
}

// IsActive reports whether the record holds an outstanding loan.
func (r BorrowRecord) IsActive() bool {
	return r.Status == StatusBorrowed || r.Status == StatusOverdue
}

// CreateBorrowParams is the input data for submitting a borrow request.
type CreateBorrowParams struct {
	UserID     int64  `json:"user_id"`
	BookID     int64  `json:"book_id"`
	BorrowDays *int32 `json:"borrow_days,omitempty"`
}

// DaysBetween returns the number of whole days from a to b, 0 if b is not after a.
func DaysBetween(a, b time.Time) int64 {
	if !b.After(a) {
		return 0
	}

	return int64(b.Sub(a).Hours() / 24)
}

// Fine computes the fine owed at the given time for the given due date:
// whole days past due multiplied by FinePerDay.
func Fine(dueDate, at time.Time) string {
	days := DaysBetween(dueDate, at)

	return FinePerDay.Mul(decimal.NewFromInt(days)).String()
}

// RefreshOverdue applies the lazy overdue upgrade: a BORROWED record past its
// due date becomes OVERDUE with its fine recomputed, and an OVERDUE record
// gets its fine recomputed. It reports whether the record changed so the
// caller can persist the result. The fine is monotonic in elapsed time, so
// repeating the call is safe.
func (r BorrowRecord) RefreshOverdue(now time.Time) (BorrowRecord, bool) {
	if !r.IsActive() || !now.After(r.DueDate) {
		return r, false
	}

	refreshed := r
	refreshed.Status = StatusOverdue
	refreshed.FineAmount = Fine(r.DueDate, now)

	changed := refreshed.Status != r.Status || refreshed.FineAmount != r.FineAmount

	return refreshed, changed
}

// BorrowView is the read model of a borrow record with its user and book
// resolved and lateness fields derived for the given observation time.
type BorrowView struct {
	ID              int64        `json:"id"`
	UserID          int64        `json:"user_id"`
	UserName        string       `json:"user_name"`
	UserEmail       string       `json:"user_email"`
	BookID          int64        `json:"book_id"`
	BookTitle       string       `json:"book_title"`
	BookAuthor      string       `json:"book_author"`
	BookISBN        string       `json:"book_isbn"`
	BorrowDate      time.Time    `json:"borrow_date"`
	DueDate         time.Time    `json:"due_date"`
	ApprovedDate    *time.Time   `json:"approved_date,omitempty"`
	ReturnDate      *time.Time   `json:"return_date,omitempty"`
	Status          BorrowStatus `json:"status"`
	FineAmount      string       `json:"fine_amount"`
	RejectionReason string       `json:"rejection_reason,omitempty"`
	IsOverdue       bool         `json:"is_overdue"`
	DaysUntilDue    int64        `json:"days_until_due"`
	DaysOverdue     int64        `json:"days_overdue"`
}
