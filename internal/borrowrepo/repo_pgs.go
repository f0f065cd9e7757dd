// Package borrowrepo manages repository layer of borrow records.
//
// The workflow mutations (Submit, Approve, Reject, Return, Renew) each run
// as a single database transaction. Whenever available_copies is read before
// being written, the book row is locked with SELECT ... FOR UPDATE, so two
// approvals racing for the last copy serialize and the loser observes zero
// copies instead of driving the counter negative.
package borrowrepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/AdinarayanSahu/campus-reads/internal/bookrepo"
	"github.com/AdinarayanSahu/campus-reads/internal/domain"
	"github.com/AdinarayanSahu/campus-reads/pkg/dbpkg"
	"github.com/AdinarayanSahu/campus-reads/pkg/errorspkg"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates borrow record repository layer logic.
type RepoPGS struct {
	db   dbpkg.SQLInterface
	conn *sql.DB
}

// NewRepoPGS returns borrow RepoPGS with a connection to start transactions.
func NewRepoPGS(db *sql.DB) *RepoPGS {
	return &RepoPGS{
		db:   db,
		conn: db,
	}
}

// NewTxRepoPGS returns borrow RepoPGS scoped to an already open transaction.
func NewTxRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const recordColumns = `id, user_id, book_id, borrow_date, due_date, approved_date, return_date, status, fine_amount, rejection_reason, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (domain.BorrowRecord, error) {
	var (
		rec          domain.BorrowRecord
		approvedDate sql.NullTime
		returnDate   sql.NullTime
	)

	err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.BookID,
		&rec.BorrowDate,
		&rec.DueDate,
		&approvedDate,
		&returnDate,
		&rec.Status,
		&rec.FineAmount,
		&rec.RejectionReason,
		&rec.CreatedAt,
	)
	if err != nil {
		return rec, err
	}

	if approvedDate.Valid {
		t := approvedDate.Time
		rec.ApprovedDate = &t
	}

	if returnDate.Valid {
		t := returnDate.Time
		rec.ReturnDate = &t
	}

	return rec, nil
}

const createQuery = `
INSERT INTO
    borrow_records (user_id, book_id, borrow_date, due_date, status)
VALUES
    ($1, $2, $3, $4, $5)
RETURNING ` + recordColumns

func (r *RepoPGS) create(ctx context.Context, userID, bookID int64, borrowDate, dueDate time.Time) (domain.BorrowRecord, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery, userID, bookID, borrowDate, dueDate, domain.StatusPending)

	rec, err := scanRecord(row)
	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Constraint {
			case "borrow_records_user_id_fkey":
				return rec, domain.ErrUserNotFound
			case "borrow_records_book_id_fkey":
				return rec, domain.ErrBookNotFound
			}
		}

		return rec, errorspkg.ErrInternal
	}

	return rec, nil
}

const getQuery = `
SELECT ` + recordColumns + `
FROM borrow_records
WHERE id = $1
`

// Get returns the borrow record with the given id.
func (r *RepoPGS) Get(ctx context.Context, id int64) (domain.BorrowRecord, error) {
	l := zerolog.Ctx(ctx)

	rec, err := scanRecord(r.db.QueryRowContext(ctx, getQuery, id))
	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return rec, domain.ErrBorrowRecordNotFound
		}

		return rec, errorspkg.ErrInternal
	}

	return rec, nil
}

const getForUpdateQuery = `
SELECT ` + recordColumns + `
FROM borrow_records
WHERE id = $1
FOR UPDATE
`

func (r *RepoPGS) getForUpdate(ctx context.Context, id int64) (domain.BorrowRecord, error) {
	rec, err := scanRecord(r.db.QueryRowContext(ctx, getForUpdateQuery, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return rec, domain.ErrBorrowRecordNotFound
		}

		zerolog.Ctx(ctx).Error().Err(err).Send()

		return rec, errorspkg.ErrInternal
	}

	return rec, nil
}

const getByUserBookAndStatusesQuery = `
SELECT ` + recordColumns + `
FROM borrow_records
WHERE user_id = $1 AND book_id = $2 AND status = ANY($3)
LIMIT 1
`

// GetByUserBookAndStatuses returns one record for the (user, book) pair in
// any of the given statuses, or ErrBorrowRecordNotFound.
func (r *RepoPGS) GetByUserBookAndStatuses(ctx context.Context, userID, bookID int64, statuses ...domain.BorrowStatus) (domain.BorrowRecord, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getByUserBookAndStatusesQuery, userID, bookID, pq.Array(statuses))

	rec, err := scanRecord(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return rec, domain.ErrBorrowRecordNotFound
		}

		l.Error().Err(err).Send()

		return rec, errorspkg.ErrInternal
	}

	return rec, nil
}

const countByUserAndStatusesQuery = `
SELECT count(*)
FROM borrow_records
WHERE user_id = $1 AND status = ANY($2)
`

// CountByUserAndStatuses returns how many records the user has in the given statuses.
func (r *RepoPGS) CountByUserAndStatuses(ctx context.Context, userID int64, statuses ...domain.BorrowStatus) (int64, error) {
	l := zerolog.Ctx(ctx)

	var count int64

	err := r.db.QueryRowContext(ctx, countByUserAndStatusesQuery, userID, pq.Array(statuses)).Scan(&count)
	if err != nil {
		l.Error().Err(err).Send()
		return 0, errorspkg.ErrInternal
	}

	return count, nil
}

const listByUserQuery = `
SELECT ` + recordColumns + `
FROM borrow_records
WHERE user_id = $1
ORDER BY borrow_date DESC
`

// ListByUser returns the user's full borrow history, newest first.
func (r *RepoPGS) ListByUser(ctx context.Context, userID int64) ([]domain.BorrowRecord, error) {
	return r.queryRecords(ctx, listByUserQuery, userID)
}

const listByBookQuery = `
SELECT ` + recordColumns + `
FROM borrow_records
WHERE book_id = $1
ORDER BY borrow_date DESC
`

// ListByBook returns the book's full lending history, newest first.
func (r *RepoPGS) ListByBook(ctx context.Context, bookID int64) ([]domain.BorrowRecord, error) {
	return r.queryRecords(ctx, listByBookQuery, bookID)
}

const listByUserAndStatusesQuery = `
SELECT ` + recordColumns + `
FROM borrow_records
WHERE user_id = $1 AND status = ANY($2)
ORDER BY borrow_date DESC
`

// ListByUserAndStatuses returns the user's records in the given statuses, newest first.
func (r *RepoPGS) ListByUserAndStatuses(ctx context.Context, userID int64, statuses ...domain.BorrowStatus) ([]domain.BorrowRecord, error) {
	return r.queryRecords(ctx, listByUserAndStatusesQuery, userID, pq.Array(statuses))
}

const listByStatusesQuery = `
SELECT ` + recordColumns + `
FROM borrow_records
WHERE status = ANY($1)
ORDER BY borrow_date DESC
`

// ListByStatuses returns all records in the given statuses, newest first.
func (r *RepoPGS) ListByStatuses(ctx context.Context, statuses ...domain.BorrowStatus) ([]domain.BorrowRecord, error) {
	return r.queryRecords(ctx, listByStatusesQuery, pq.Array(statuses))
}

const listAllQuery = `
SELECT ` + recordColumns + `
FROM borrow_records
ORDER BY borrow_date DESC
`

// ListAll returns every borrow record, newest first.
func (r *RepoPGS) ListAll(ctx context.Context) ([]domain.BorrowRecord, error) {
	return r.queryRecords(ctx, listAllQuery)
}

const listByStatusDueBeforeQuery = `
SELECT ` + recordColumns + `
FROM borrow_records
WHERE status = $1 AND due_date < $2
ORDER BY borrow_date DESC
`

// ListByStatusDueBefore returns records in the given status whose due date
// falls before the given time, newest first.
func (r *RepoPGS) ListByStatusDueBefore(ctx context.Context, status domain.BorrowStatus, due time.Time) ([]domain.BorrowRecord, error) {
	return r.queryRecords(ctx, listByStatusDueBeforeQuery, status, due)
}

func (r *RepoPGS) queryRecords(ctx context.Context, query string, args ...interface{}) ([]domain.BorrowRecord, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.BorrowRecord{}

	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, rec)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

const markOverdueQuery = `
UPDATE borrow_records
SET status = $2, fine_amount = $3
WHERE id = $1 AND status = ANY($4)
RETURNING ` + recordColumns

// MarkOverdue persists the lazy overdue upgrade for an active record. It is
// idempotent: marking an already OVERDUE record just rewrites the fine.
func (r *RepoPGS) MarkOverdue(ctx context.Context, id int64, fineAmount string) (domain.BorrowRecord, error) {
	l := zerolog.Ctx(ctx)

	active := pq.Array([]domain.BorrowStatus{domain.StatusBorrowed, domain.StatusOverdue})

	row := r.db.QueryRowContext(ctx, markOverdueQuery, id, domain.StatusOverdue, fineAmount, active)

	rec, err := scanRecord(row)
	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return rec, domain.ErrNotActiveBorrow
		}

		return rec, errorspkg.ErrInternal
	}

	return rec, nil
}

// beginTx starts a transaction whose rollback is deferred by the caller;
// rolling back after a successful commit is a no-op.
func (r *RepoPGS) beginTx(ctx context.Context) (*sql.Tx, func(), error) {
	l := zerolog.Ctx(ctx)

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, nil, errorspkg.ErrInternal
	}

	rollback := func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			l.Error().Err(err).Send()
		}
	}

	return tx, rollback, nil
}

// Submit creates a PENDING borrow request after re-validating availability,
// duplicate requests and the per-user cap inside one transaction. The book
// row lock serializes concurrent submissions for the same book, so two
// requests for the same (user, book) pair cannot both pass the duplicate
// check. Available copies are not reserved here; that happens at approval.
func (r *RepoPGS) Submit(ctx context.Context, arg domain.CreateBorrowParams) (domain.BorrowRecord, error) {
	l := zerolog.Ctx(ctx)

	var rec domain.BorrowRecord

	tx, rollback, err := r.beginTx(ctx)
	if err != nil {
		return rec, err
	}
	defer rollback()

	bookRepo := bookrepo.NewRepoPGS(tx)
	txRepo := NewTxRepoPGS(tx)

	book, err := bookRepo.GetForUpdate(ctx, arg.BookID)
	if err != nil {
		return rec, err
	}

	if book.AvailableCopies <= 0 {
		return rec, domain.ErrBookNotAvailable
	}

	_, err = txRepo.GetByUserBookAndStatuses(ctx, arg.UserID, arg.BookID, domain.StatusPending)
	if err == nil {
		return rec, domain.ErrPendingRequestExists
	} else if err != domain.ErrBorrowRecordNotFound {
		return rec, err
	}

	_, err = txRepo.GetByUserBookAndStatuses(ctx, arg.UserID, arg.BookID, domain.StatusBorrowed, domain.StatusOverdue)
	if err == nil {
		return rec, domain.ErrBookAlreadyBorrowed
	} else if err != domain.ErrBorrowRecordNotFound {
		return rec, err
	}

	count, err := txRepo.CountByUserAndStatuses(ctx, arg.UserID,
		domain.StatusPending, domain.StatusBorrowed, domain.StatusOverdue)
	if err != nil {
		return rec, err
	}

	if count >= domain.MaxBooksPerUser {
		return rec, domain.ErrBorrowLimitExceeded
	}

	days := int32(domain.DefaultBorrowDays)
	if arg.BorrowDays != nil {
		days = *arg.BorrowDays
	}

	now := time.Now()

	rec, err = txRepo.create(ctx, arg.UserID, arg.BookID, now, now.AddDate(0, 0, int(days)))
	if err != nil {
		return rec, err
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return domain.BorrowRecord{}, errorspkg.ErrInternal
	}

	return rec, nil
}

const approveQuery = `
UPDATE borrow_records
SET status = $2, approved_date = $3
WHERE id = $1
RETURNING ` + recordColumns

// Approve turns a PENDING request into a BORROWED loan and reserves one
// copy, all in one transaction. Availability is re-checked under the book
// row lock because copies may have been exhausted since submission.
func (r *RepoPGS) Approve(ctx context.Context, id int64) (domain.BorrowRecord, error) {
	l := zerolog.Ctx(ctx)

	var rec domain.BorrowRecord

	tx, rollback, err := r.beginTx(ctx)
	if err != nil {
		return rec, err
	}
	defer rollback()

	txRepo := NewTxRepoPGS(tx)

	current, err := txRepo.getForUpdate(ctx, id)
	if err != nil {
		return rec, err
	}

	if current.Status != domain.StatusPending {
		return rec, domain.ErrNotPendingRequest
	}

	bookRepo := bookrepo.NewRepoPGS(tx)

	book, err := bookRepo.GetForUpdate(ctx, current.BookID)
	if err != nil {
		return rec, err
	}

	if book.AvailableCopies <= 0 {
		return rec, domain.ErrBookNotAvailable
	}

	if _, err := bookRepo.AddAvailableCopies(ctx, -1, current.BookID); err != nil {
		return rec, err
	}

	rec, err = scanRecord(tx.QueryRowContext(ctx, approveQuery, id, domain.StatusBorrowed, time.Now()))
	if err != nil {
		l.Error().Err(err).Send()
		return rec, errorspkg.ErrInternal
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return domain.BorrowRecord{}, errorspkg.ErrInternal
	}

	return rec, nil
}

const rejectQuery = `
UPDATE borrow_records
SET status = $2, rejection_reason = $3
WHERE id = $1
RETURNING ` + recordColumns

// Reject turns a PENDING request into REJECTED with the given reason.
// Copy counters are untouched because pending requests reserve nothing.
func (r *RepoPGS) Reject(ctx context.Context, id int64, reason string) (domain.BorrowRecord, error) {
	l := zerolog.Ctx(ctx)

	var rec domain.BorrowRecord

	tx, rollback, err := r.beginTx(ctx)
	if err != nil {
		return rec, err
	}
	defer rollback()

	current, err := NewTxRepoPGS(tx).getForUpdate(ctx, id)
	if err != nil {
		return rec, err
	}

	if current.Status != domain.StatusPending {
		return rec, domain.ErrNotPendingRequest
	}

	rec, err = scanRecord(tx.QueryRowContext(ctx, rejectQuery, id, domain.StatusRejected, reason))
	if err != nil {
		l.Error().Err(err).Send()
		return rec, errorspkg.ErrInternal
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return domain.BorrowRecord{}, errorspkg.ErrInternal
	}

	return rec, nil
}

const returnQuery = `
UPDATE borrow_records
SET status = $2, return_date = $3, fine_amount = $4
WHERE id = $1
RETURNING ` + recordColumns

// Return closes an outstanding loan: fixes the fine if the return is late,
// marks the record RETURNED and releases the copy, all in one transaction.
func (r *RepoPGS) Return(ctx context.Context, id int64) (domain.BorrowRecord, error) {
	l := zerolog.Ctx(ctx)

	var rec domain.BorrowRecord

	tx, rollback, err := r.beginTx(ctx)
	if err != nil {
		return rec, err
	}
	defer rollback()

	current, err := NewTxRepoPGS(tx).getForUpdate(ctx, id)
	if err != nil {
		return rec, err
	}

	if current.Status == domain.StatusReturned {
		return rec, domain.ErrAlreadyReturned
	}

	if !current.IsActive() {
		return rec, domain.ErrNotActiveBorrow
	}

	now := time.Now()

	fineAmount := current.FineAmount
	if now.After(current.DueDate) {
		fineAmount = domain.Fine(current.DueDate, now)
	}

	rec, err = scanRecord(tx.QueryRowContext(ctx, returnQuery, id, domain.StatusReturned, now, fineAmount))
	if err != nil {
		l.Error().Err(err).Send()
		return rec, errorspkg.ErrInternal
	}

	if _, err := bookrepo.NewRepoPGS(tx).AddAvailableCopies(ctx, 1, current.BookID); err != nil {
		return domain.BorrowRecord{}, err
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return domain.BorrowRecord{}, errorspkg.ErrInternal
	}

	return rec, nil
}

const renewQuery = `
UPDATE borrow_records
SET status = $2, due_date = $3, fine_amount = $4
WHERE id = $1
RETURNING ` + recordColumns

// Renew extends an outstanding loan's due date. An OVERDUE loan goes back to
// BORROWED with its accrued fine forgiven in exchange for the fresh due date.
func (r *RepoPGS) Renew(ctx context.Context, id int64, additionalDays *int32) (domain.BorrowRecord, error) {
	l := zerolog.Ctx(ctx)

	var rec domain.BorrowRecord

	tx, rollback, err := r.beginTx(ctx)
	if err != nil {
		return rec, err
	}
	defer rollback()

	current, err := NewTxRepoPGS(tx).getForUpdate(ctx, id)
	if err != nil {
		return rec, err
	}

	if !current.IsActive() {
		return rec, domain.ErrNotActiveBorrow
	}

	days := int32(domain.DefaultBorrowDays)
	if additionalDays != nil {
		days = *additionalDays
	}

	status := current.Status
	fineAmount := current.FineAmount

	if status == domain.StatusOverdue {
		status = domain.StatusBorrowed
		fineAmount = "0"
	}

	dueDate := current.DueDate.AddDate(0, 0, int(days))

	rec, err = scanRecord(tx.QueryRowContext(ctx, renewQuery, id, status, dueDate, fineAmount))
	if err != nil {
		l.Error().Err(err).Send()
		return rec, errorspkg.ErrInternal
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return domain.BorrowRecord{}, errorspkg.ErrInternal
	}

	return rec, nil
}
