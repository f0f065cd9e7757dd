package domain

import (
	"errors"
	"time"
)

var (
	// ErrBookNotFound indicates that the book is not found.
	ErrBookNotFound = errors.New("book not found")
	// ErrISBNAlreadyExists indicates that a book with the given ISBN already exists.
	ErrISBNAlreadyExists = errors.New("book with this ISBN already exists")
	// ErrBookNotAvailable indicates that the book has no copies left to lend.
	ErrBookNotAvailable = errors.New("book is not available for borrowing")
	// ErrBookHasBorrowHistory indicates that the book cannot be deleted while borrow records reference it.
	ErrBookHasBorrowHistory = errors.New("book has borrow records")
)

// Book holds catalog data for a title and its physical copies.
//
// AvailableCopies counts copies not tied to an outstanding loan and always
// stays within [0, TotalCopies]; the borrow workflow is the only writer.
type Book struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	ISBN            string    `json:"isbn"`
	Category        string    `json:"category"`
	TotalCopies     int32     `json:"total_copies"`
	AvailableCopies int32     `json:"available_copies"`
	CoverImage      string    `json:"cover_image,omitempty"`
	CreatedAt       time.Time `json:"created_at,omitempty"`
}

// CreateBookParams is the input data to add a book to the catalog.
type CreateBookParams struct {
	Title           string `json:"title"`
	Author          string `json:"author"`
	ISBN            string `json:"isbn"`
	Category        string `json:"category"`
	TotalCopies     int32  `json:"total_copies"`
	AvailableCopies int32  `json:"available_copies"`
	CoverImage      string `json:"cover_image"`
}
