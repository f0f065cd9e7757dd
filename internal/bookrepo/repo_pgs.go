// Package bookrepo manages repository layer of books.
package bookrepo

import (
	"context"
	"database/sql"

	"github.com/AdinarayanSahu/campus-reads/internal/domain"
	"github.com/AdinarayanSahu/campus-reads/pkg/dbpkg"
	"github.com/AdinarayanSahu/campus-reads/pkg/errorspkg"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates book repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns book RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const bookColumns = `id, title, author, isbn, category, total_copies, available_copies, cover_image, created_at`

func scanBook(row *sql.Row) (domain.Book, error) {
	var b domain.Book

	err := row.Scan(
		&b.ID,
		&b.Title,
		&b.Author,
		&b.ISBN,
		&b.Category,
		&b.TotalCopies,
		&b.AvailableCopies,
		&b.CoverImage,
		&b.CreatedAt,
	)

	return b, err
}

const createQuery = `
INSERT INTO
    books (title, author, isbn, category, total_copies, available_copies, cover_image)
VALUES
    ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + bookColumns

// Create adds the book to the catalog and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateBookParams) (domain.Book, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery,
		arg.Title,
		arg.Author,
		arg.ISBN,
		arg.Category,
		arg.TotalCopies,
		arg.AvailableCopies,
		arg.CoverImage,
	)

	b, err := scanBook(row)
	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Constraint {
			case "books_isbn_key":
				return b, domain.ErrISBNAlreadyExists
			case "books_available_copies_check":
				return b, domain.ErrBookNotAvailable
			}
		}

		return b, errorspkg.ErrInternal
	}

	return b, nil
}

const getQuery = `
SELECT ` + bookColumns + `
FROM books
WHERE id = $1
`

// Get returns the book with the given id.
func (r *RepoPGS) Get(ctx context.Context, id int64) (domain.Book, error) {
	l := zerolog.Ctx(ctx)

	b, err := scanBook(r.db.QueryRowContext(ctx, getQuery, id))
	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return b, domain.ErrBookNotFound
		}

		return b, errorspkg.ErrInternal
	}

	return b, nil
}

const getForUpdateQuery = `
SELECT ` + bookColumns + `
FROM books
WHERE id = $1
FOR UPDATE
`

// GetForUpdate returns the book with the given id holding a row lock until
// the surrounding transaction ends. It serializes every read-check-write of
// available_copies.
func (r *RepoPGS) GetForUpdate(ctx context.Context, id int64) (domain.Book, error) {
	l := zerolog.Ctx(ctx)

	b, err := scanBook(r.db.QueryRowContext(ctx, getForUpdateQuery, id))
	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return b, domain.ErrBookNotFound
		}

		return b, errorspkg.ErrInternal
	}

	return b, nil
}

const addAvailableCopiesQuery = `
UPDATE books
SET available_copies = available_copies + $1
WHERE id = $2
RETURNING ` + bookColumns

// AddAvailableCopies changes the book's available copy counter by delta and
// returns the changed book. The books_available_copies_check constraint
// backstops the counter staying within [0, total_copies].
func (r *RepoPGS) AddAvailableCopies(ctx context.Context, delta int32, id int64) (domain.Book, error) {
	l := zerolog.Ctx(ctx)

	b, err := scanBook(r.db.QueryRowContext(ctx, addAvailableCopiesQuery, delta, id))
	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return b, domain.ErrBookNotFound
		}

		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Constraint == "books_available_copies_check" {
				return b, domain.ErrBookNotAvailable
			}
		}

		return b, errorspkg.ErrInternal
	}

	return b, nil
}

const updateQuery = `
UPDATE books
SET title = $2,
    author = $3,
    isbn = $4,
    category = $5,
    total_copies = $6,
    available_copies = $7,
    cover_image = $8
WHERE id = $1
RETURNING ` + bookColumns

// Update replaces the book's catalog fields and returns the changed book.
func (r *RepoPGS) Update(ctx context.Context, id int64, arg domain.CreateBookParams) (domain.Book, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, updateQuery,
		id,
		arg.Title,
		arg.Author,
		arg.ISBN,
		arg.Category,
		arg.TotalCopies,
		arg.AvailableCopies,
		arg.CoverImage,
	)

	b, err := scanBook(row)
	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return b, domain.ErrBookNotFound
		}

		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Constraint {
			case "books_isbn_key":
				return b, domain.ErrISBNAlreadyExists
			case "books_available_copies_check":
				return b, domain.ErrBookNotAvailable
			}
		}

		return b, errorspkg.ErrInternal
	}

	return b, nil
}

const deleteQuery = `
DELETE FROM books
WHERE id = $1
`

// Delete removes the book with the given id. Borrow records reference books
// with ON DELETE RESTRICT, so any lending history blocks the delete.
func (r *RepoPGS) Delete(ctx context.Context, id int64) error {
	l := zerolog.Ctx(ctx)

	res, err := r.db.ExecContext(ctx, deleteQuery, id)
	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Constraint == "borrow_records_book_id_fkey" {
				return domain.ErrBookHasBorrowHistory
			}
		}

		return errorspkg.ErrInternal
	}

	n, err := res.RowsAffected()
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	if n == 0 {
		return domain.ErrBookNotFound
	}

	return nil
}

const listQuery = `
SELECT ` + bookColumns + `
FROM books
ORDER BY id
`

// List returns all catalog books.
func (r *RepoPGS) List(ctx context.Context) ([]domain.Book, error) {
	return r.queryBooks(ctx, listQuery)
}

const searchByTitleQuery = `
SELECT ` + bookColumns + `
FROM books
WHERE title ILIKE '%' || $1 || '%'
ORDER BY id
`

// SearchByTitle returns books whose title contains the given text, case insensitively.
func (r *RepoPGS) SearchByTitle(ctx context.Context, title string) ([]domain.Book, error) {
	return r.queryBooks(ctx, searchByTitleQuery, title)
}

const searchByAuthorQuery = `
SELECT ` + bookColumns + `
FROM books
WHERE author ILIKE '%' || $1 || '%'
ORDER BY id
`

// SearchByAuthor returns books whose author contains the given text, case insensitively.
func (r *RepoPGS) SearchByAuthor(ctx context.Context, author string) ([]domain.Book, error) {
	return r.queryBooks(ctx, searchByAuthorQuery, author)
}

const listByCategoryQuery = `
SELECT ` + bookColumns + `
FROM books
WHERE category = $1
ORDER BY id
`

// ListByCategory returns books in the given category.
func (r *RepoPGS) ListByCategory(ctx context.Context, category string) ([]domain.Book, error) {
	return r.queryBooks(ctx, listByCategoryQuery, category)
}

func (r *RepoPGS) queryBooks(ctx context.Context, query string, args ...interface{}) ([]domain.Book, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Book{}

	for rows.Next() {
		var b domain.Book
		if err := rows.Scan(
			&b.ID,
			&b.Title,
			&b.Author,
			&b.ISBN,
			&b.Category,
			&b.TotalCopies,
			&b.AvailableCopies,
			&b.CoverImage,
			&b.CreatedAt,
		); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, b)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}
